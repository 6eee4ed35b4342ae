// Package checkin holds the check-in rules both event tracks share.
package checkin

import "strings"

// CodeMatches compares a submitted code against the stored one, ignoring case and
// surrounding whitespace. An event without a stored code accepts nothing.
func CodeMatches(stored, submitted string) bool {
	stored = strings.TrimSpace(stored)
	if stored == "" {
		return false
	}
	return strings.EqualFold(stored, strings.TrimSpace(submitted))
}
