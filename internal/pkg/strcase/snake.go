// Package strcase converts Go identifiers to the snake_case used in JSON.
package strcase

import (
	"strings"
	"unicode"
)

// ToLowerSnake converts s to lower snake_case, keeping initialisms together
// (SeedID becomes seed_id, HTTPServer becomes http_server).
func ToLowerSnake(s string) string {
	runes := []rune(s)

	var b strings.Builder
	b.Grow(len(s) + 4)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && wordBoundary(runes, i) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

// wordBoundary reports whether the upper case rune at i starts a new word:
// after a lower case letter or digit, or as the last capital of an initialism
// that is followed by a lower case letter.
func wordBoundary(runes []rune, i int) bool {
	prev := runes[i-1]
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}
	return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
