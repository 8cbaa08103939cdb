// Package upc validates and extracts UPC-A and EAN-13 codes.
package upc

import (
	"regexp"
	"strings"

	"github.com/garment-labs/labelaudit/internal/textnorm"
)

// Candidate codes are an optional EAN/UPC label followed by a run of digits
// that may contain scanning-induced spaces.
var (
	reCandidate = regexp.MustCompile(`(?i)(?:EAN/?UPC|EAN|UPC)?\s*([0-9][0-9\s]{10,15})`)
	reNonDigit  = regexp.MustCompile(`\D`)
)

// IsValid reports whether code is a 12-digit UPC-A or 13-digit EAN-13 number
// with a correct mod-10 check digit. Any other length or non-digit content is
// simply invalid. UPC-A weights even body indexes by 3; EAN-13 weights odd
// body indexes by 3.
func IsValid(code string) bool {
	if len(code) != 12 && len(code) != 13 {
		return false
	}
	digits := make([]int, len(code))
	for i, r := range code {
		if r < '0' || r > '9' {
			return false
		}
		digits[i] = int(r - '0')
	}

	body := digits[:len(digits)-1]
	check := digits[len(digits)-1]

	oddWeighted := len(code) == 13
	sum := 0
	for i, d := range body {
		if (i%2 == 1) == oddWeighted {
			sum += d * 3
		} else {
			sum += d
		}
	}
	return (10-sum%10)%10 == check
}

// Candidate searches text for the first number-shaped token and returns its
// digits when they form a 12- or 13-digit code, without checksum validation.
// Returns "" when nothing number-shaped is found.
func Candidate(text string) string {
	normalized := textnorm.Normalize(text)
	m := reCandidate.FindStringSubmatch(normalized)
	if m == nil {
		return ""
	}
	digits := strings.Join(strings.Fields(m[1]), "")
	if len(digits) == 12 || len(digits) == 13 {
		return digits
	}
	return ""
}

// FirstValid returns the first candidate code that also passes the checksum,
// or "" when the text holds no checksum-valid code.
func FirstValid(text string) string {
	candidate := Candidate(text)
	if candidate == "" {
		return ""
	}
	if IsValid(candidate) {
		return candidate
	}
	return ""
}

// Digits strips every non-digit character. Used to canonicalize UPC values
// from spreadsheets and extracted items before comparison.
func Digits(s string) string {
	return reNonDigit.ReplaceAllString(s, "")
}
