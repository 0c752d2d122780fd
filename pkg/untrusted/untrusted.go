// Package untrusted normalizes user-supplied free text before it is embedded
// in a generation prompt. User text is constraint data, never instructions;
// every call site that puts free text into a prompt must go through Wrap.
package untrusted

import (
	"strings"
	"unicode"
)

// DefaultMaxChars caps wrapped text to keep prompts bounded.
const DefaultMaxChars = 1200

// Sanitize trims, strips control and zero-width characters, and caps length.
func Sanitize(raw string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case unicode.IsControl(r):
			// drop null bytes and other control characters
		case r == '\u200b' || r == '\u200c' || r == '\u200d' || r == '\ufeff':
			// drop zero-width characters used to smuggle hidden text
		default:
			b.WriteRune(r)
		}
	}

	s := strings.TrimSpace(b.String())
	if len(s) <= maxChars {
		return s
	}

	// Cut on a rune boundary, then trim a possibly split word
	runes := []rune(s)
	if len(runes) > maxChars {
		runes = runes[:maxChars]
	}
	return strings.TrimRight(string(runes), " \t\n")
}

// Escape prevents text from closing the delimiter tags used by Wrap.
func Escape(raw string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(raw)
}

// Wrap sanitizes and escapes text, then encloses it in a labeled block that
// the prompt explicitly declares to be data rather than instructions.
func Wrap(label, raw string, maxChars int) string {
	cleaned := Escape(Sanitize(raw, maxChars))
	return "<" + label + ">\n" + cleaned + "\n</" + label + ">"
}
