package world

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns the case-folded form of s used for every name lookup.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// HasFoldPrefix reports whether name starts with fragment, ignoring case.
// An empty fragment never matches.
func HasFoldPrefix(name, fragment string) bool {
	if fragment == "" {
		return false
	}
	return strings.HasPrefix(Fold(name), Fold(fragment))
}
