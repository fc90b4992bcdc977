// Package normalize holds the small string canonicalization rules shared by
// the ingest pipeline, the form validators and the HTTP handlers.
package normalize

import (
	"strings"
	"unicode"

	"github.com/dalemusser/waffle/pantry/text"
)

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name and collapses inner runs of whitespace.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FullName joins first and last name with a single space.
// Either part may be empty.
func FullName(first, last string) string {
	return Name(first + " " + last)
}

// Status lowercases and trims a status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Role lowercases and trims a role value.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a query string value. Case is preserved.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Slug turns a display name into a dotted, ASCII-only local part:
// "Fatima El Alami" -> "fatima.el.alami". Accents are folded first.
func Slug(name string) string {
	folded := text.Fold(Name(name))
	var b strings.Builder
	lastDot := true
	for _, r := range folded {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(unicode.ToLower(r))
			lastDot = false
		case unicode.IsSpace(r) || r == '-' || r == '.' || r == '_':
			if !lastDot {
				b.WriteByte('.')
				lastDot = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), ".")
}
