// Package corpus reads raw training text and prepares it for vocabulary
// initialization: lower-cased, whitespace-collapsed, split into sentences.
package corpus

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var lower = cases.Lower(language.Und)

// Normalize prepares raw corpus text for training.
// It composes Unicode to NFC, lower-cases, and collapses every run of
// whitespace (including line breaks) into a single space.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = lower.String(s)

	return strings.Join(strings.Fields(s), " ")
}
