// Package casing converts dotted Go field paths such as "DB.PasswordFile"
// into the names used by configuration sources.
package casing

import (
	"strings"
	"unicode"
)

// ToSnake converts a dotted path to snake case. Dots become underscores and
// acronyms stay together: "HTTPPort" becomes "http_port".
func ToSnake(s string) string {
	r := []rune(s)

	var b strings.Builder
	b.Grow(len(s) + 4)

	for i, char := range r {
		if char == '.' {
			b.WriteRune('_')
			continue
		}

		atStart := i == 0 || r[i-1] == '.'
		atEnd := i == len(r)-1 || r[i+1] == '.'

		if !atStart && !atEnd && unicode.IsUpper(char) {
			prevUpper := unicode.IsUpper(r[i-1])
			nextUpper := unicode.IsUpper(r[i+1])

			// Start of a word, or last capital of an acronym followed by a word.
			if !prevUpper || !nextUpper {
				b.WriteRune('_')
			}
		}

		b.WriteRune(unicode.ToLower(char))
	}

	return b.String()
}

// ToScreamingSnake is ToSnake in upper case, as used for environment variables.
func ToScreamingSnake(s string) string {
	return strings.ToUpper(ToSnake(s))
}

// ToKebab is ToSnake with hyphens, as used for command line flags.
func ToKebab(s string) string {
	return strings.ReplaceAll(ToSnake(s), "_", "-")
}
