package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize lowercases text, drops non-printable runes and collapses
// whitespace runs into a single space.
func Normalize(text string) string {
	text = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, text)
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.ToLower(strings.TrimSpace(text))
}

// FirstKeyword returns the first keyword (in the order given) that is
// contained in text. text is expected to already be lowercased.
func FirstKeyword(text string, keywords []string) (string, bool) {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return k, true
		}
	}
	return "", false
}

// ContainsAny is FirstKeyword without the keyword.
func ContainsAny(text string, keywords ...string) bool {
	_, ok := FirstKeyword(text, keywords)
	return ok
}
