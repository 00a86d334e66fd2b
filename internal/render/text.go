package render

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// PlainText prepares user-authored text for literal display in a terminal.
// Escape sequences are stripped and remaining control characters other than
// newline and tab are dropped, so input can never restyle or move the cursor.
func PlainText(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")

	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n', r == '\t':
			return r
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, s)
}
