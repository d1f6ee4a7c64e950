package pure_utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

var multiSpaceRegex = regexp.MustCompile(`\s+`)

// NormalizeAddress trims the value and collapses every whitespace run to a single space.
// Case is preserved.
func NormalizeAddress(s string) string {
	return multiSpaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

func NormalizeCity(s string) string {
	return NormalizeAddress(s)
}

func NormalizeState(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeZip keeps the digits of the value and returns at most the first five of them.
// "12345-6789" becomes "12345", "abc123-4" becomes "1234".
func NormalizeZip(s string) string {
	var b strings.Builder
	for _, r := range s {
		if b.Len() == 5 {
			break
		}
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FoldCase returns the unicode case folded form of s, for case insensitive comparisons.
func FoldCase(s string) string {
	return cases.Fold().String(s)
}
