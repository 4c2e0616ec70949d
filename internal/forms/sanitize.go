// Package forms implements the landing page's form pipeline: input
// sanitization, per-field validators, field state tracking, debounced
// re-validation, and the submission orchestrator.
package forms

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

// stripMarkup removes every HTML element from free-text input. Policies are
// safe for concurrent use, so one shared instance is enough.
var stripMarkup = bluemonday.StrictPolicy()

// Sanitize normalizes raw field input: Unicode NFC normalization, removal of
// ASCII control characters (0x00-0x1F, 0x7F), and whitespace trimming. Every
// validator operates on sanitized input, and the sanitized value is reported
// in ValidationResult.Value regardless of validity.
func Sanitize(raw string) string {
	normalized := norm.NFC.String(raw)

	var b strings.Builder
	b.Grow(len(normalized))
	for _, r := range normalized {
		if r < 0x20 || r == 0x7F {
			continue
		}
		b.WriteRune(r)
	}

	return strings.TrimSpace(b.String())
}

// SanitizeMessage sanitizes free-text input that may contain pasted markup.
// Tags are stripped entirely; entity escaping introduced by the policy is
// undone so plain text like "you & me" survives unchanged.
func SanitizeMessage(raw string) string {
	stripped := stripMarkup.Sanitize(raw)

	return Sanitize(html.UnescapeString(stripped))
}
