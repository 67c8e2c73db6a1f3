package llm

import (
	"context"
	"fmt"
)

// maxCompletionTokens caps generation on every completer call.
const maxCompletionTokens = 10000

// Usage reports locally counted token lengths. Input covers the system prompt
// plus the user prompt, output covers the raw response. Observability only,
// nothing enforces these numbers.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Completer binds a Client to a fixed system prompt and sampling temperature.
type Completer struct {
	client       Client
	systemPrompt string
	temperature  float32
	counter      TokenCounter
}

// NewCompleter constructs a Completer. counter may be nil, in which case token
// usage is reported as zero.
func NewCompleter(client Client, systemPrompt string, temperature float32, counter TokenCounter) *Completer {
	return &Completer{
		client:       client,
		systemPrompt: systemPrompt,
		temperature:  temperature,
		counter:      counter,
	}
}

// CompleteJSON sends the system+user exchange with the response constrained to
// a valid JSON object.
func (c *Completer) CompleteJSON(ctx context.Context, userPrompt string) (string, Usage, error) {
	return c.complete(ctx, userPrompt, true)
}

// CompleteText sends the system+user exchange without the JSON constraint.
func (c *Completer) CompleteText(ctx context.Context, userPrompt string) (string, Usage, error) {
	return c.complete(ctx, userPrompt, false)
}

func (c *Completer) complete(ctx context.Context, userPrompt string, jsonMode bool) (string, Usage, error) {
	usage := Usage{InputTokens: c.count(c.systemPrompt + userPrompt)}

	messages := []Message{
		{Role: RoleSystem, Content: c.systemPrompt},
		{Role: RoleUser, Content: userPrompt},
	}

	response, err := c.client.Generate(ctx, messages, GenerateOptions{
		Temperature: c.temperature,
		MaxTokens:   maxCompletionTokens,
		JSONMode:    jsonMode,
	})
	if err != nil {
		return "", usage, fmt.Errorf("invoke model: %w", err)
	}

	usage.OutputTokens = c.count(response)
	return response, usage, nil
}

func (c *Completer) count(text string) int {
	if c.counter == nil {
		return 0
	}
	return c.counter.Count(text)
}
