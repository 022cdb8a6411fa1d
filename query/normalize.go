package query

import "strings"

// foldName is the single definition of name equality: names match
// case-insensitively after trimming. Every comparison in this package goes
// through it so the policy cannot drift between call sites.
func foldName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
