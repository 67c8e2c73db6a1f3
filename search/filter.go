package search

import "strings"

// Terms whose presence in a free-text date marks the item as too fresh for the
// digest. This is a substring heuristic, not a date parse: "Jan 5, 2024"
// passes, "3 days ago" does not, and a missing date passes.
var excludedDateTerms = []string{"day", "days", "week", "weeks"}

// IsRecent reports whether a news item with the given free-text date field
// should be kept.
func IsRecent(date string) bool {
	lowered := strings.ToLower(date)
	for _, term := range excludedDateTerms {
		if strings.Contains(lowered, term) {
			return false
		}
	}
	return true
}
