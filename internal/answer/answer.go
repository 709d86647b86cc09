// Package answer normalizes user input before comparison.
package answer

import "strings"

var punctStripper = strings.NewReplacer(
	".", "",
	",", "",
	`"`, "",
	"?", "",
	"'", "",
)

// Normalize lowercases s, strips . , " ? ' and trims surrounding space.
func Normalize(s string) string {
	return strings.TrimSpace(punctStripper.Replace(strings.ToLower(s)))
}

// NormalizeWord lowercases and trims a failed word.
func NormalizeWord(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

// Equal reports whether got matches want after normalization.
func Equal(got, want string) bool {
	return Normalize(got) == Normalize(want)
}

// Lines splits a free-text block into trimmed, non-empty lines.
func Lines(block string) []string {
	raw := strings.Split(strings.ReplaceAll(block, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
