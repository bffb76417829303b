package compose

import (
	"strings"
	"unicode"
)

// Ellipsis terminates truncated labels.
const Ellipsis = "…"

// MaskLast4 replaces every letter and digit except the last four with '*'.
// Separators keep their positions: "4111 1111 1111 1111" becomes
// "**** **** **** 1111".
func MaskLast4(s string) string {
	runes := []rune(s)
	keep := 0
	for i := len(runes) - 1; i >= 0; i-- {
		if !unicode.IsLetter(runes[i]) && !unicode.IsDigit(runes[i]) {
			continue
		}
		if keep < 4 {
			keep++
			continue
		}
		runes[i] = '*'
	}
	return string(runes)
}

// TruncateToWidth shortens text until measure reports it fits in maxWidth,
// ending it with Ellipsis. It returns "" when not even the ellipsis fits.
func TruncateToWidth(text string, maxWidth float64, measure func(string) float64) string {
	if measure(text) <= maxWidth {
		return text
	}
	runes := []rune(text)
	for n := len(runes) - 1; n > 0; n-- {
		candidate := strings.TrimRightFunc(string(runes[:n]), unicode.IsSpace) + Ellipsis
		if measure(candidate) <= maxWidth {
			return candidate
		}
	}
	if measure(Ellipsis) <= maxWidth {
		return Ellipsis
	}
	return ""
}
