// Package textnorm canonicalizes raw page text before pattern matching.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	reNonPrintable = regexp.MustCompile(`[^\x20-\x7E]`)
	reWhitespace   = regexp.MustCompile(`\s+`)
	reSplitDigits  = regexp.MustCompile(`(\d)\s+(\d)`)
)

// Normalize strips non-printable bytes, collapses whitespace runs to a single
// space, and rejoins digit groups that scanning split apart ("0 36000 29145 2"
// becomes "036000291452"). The rejoin repeats until stable so the result is
// idempotent. Digits separated by any non-whitespace character stay separate.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reNonPrintable.ReplaceAllString(s, " ")
	s = reWhitespace.ReplaceAllString(s, " ")
	for {
		merged := reSplitDigits.ReplaceAllString(s, "$1$2")
		if merged == s {
			break
		}
		s = merged
	}
	return strings.TrimSpace(s)
}

// CollapseUpper uppercases a value and collapses inner whitespace to single
// spaces. Used to canonicalize style/size/color values before comparison.
func CollapseUpper(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}
