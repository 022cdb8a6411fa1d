package session

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// SanitizeInput strips any HTML from user-typed text (search queries, player
// path segments) before it is matched or echoed back.
func SanitizeInput(input string) string {
	cleaned := policy.Sanitize(input)
	cleaned = strings.TrimSpace(cleaned)
	return cleaned
}
