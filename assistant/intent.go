package assistant

import (
	"errors"
	"fmt"
)

// Intent is the classified category of a user request.
type Intent string

const (
	IntentLatestNews         Intent = "latest_news"
	IntentLowRiskStrategy    Intent = "low_risk_strategy"
	IntentMiddleRiskStrategy Intent = "middle_risk_strategy"
	IntentHighRiskStrategy   Intent = "high_risk_strategy"
	IntentChat               Intent = "chat"
)

// ErrUnknownIntent marks classifier output that is not one of the five
// taxonomy values.
var ErrUnknownIntent = errors.New("unknown intent type")

// ParseIntent validates a raw classifier value against the closed taxonomy.
func ParseIntent(value string) (Intent, error) {
	switch Intent(value) {
	case IntentLatestNews, IntentLowRiskStrategy, IntentMiddleRiskStrategy, IntentHighRiskStrategy, IntentChat:
		return Intent(value), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownIntent, value)
	}
}
