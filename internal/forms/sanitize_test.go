package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  Jordan Lee  ", "Jordan Lee"},
		{"strips control characters", "Jor\x00dan\x1fLee\x7f", "JordanLee"},
		{"tabs and newlines removed", "line\tone\nline two", "lineoneline two"},
		{"only whitespace", "   \t\n  ", ""},
		{"only control characters", "\x00\x01\x02\x1f\x7f", ""},
		{"empty stays empty", "", ""},
		{"interior spaces kept", "Jordan  Lee", "Jordan  Lee"},
		{"unicode survives", "  Zoë Müller  ", "Zoë Müller"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.input))
		})
	}
}

func TestSanitizeMessageStripsMarkup(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "We are interested in your curriculum.", "We are interested in your curriculum."},
		{"tags removed", "Hello <script>alert(1)</script>there", "Hello there"},
		{"formatting tags removed", "<b>bold</b> and <i>italic</i>", "bold and italic"},
		{"entities survive round-trip", "you & me < them", "you & me < them"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeMessage(tt.input))
		})
	}
}
