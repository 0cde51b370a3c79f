package layout

import (
	"strings"

	"packslip/internal/domain"
)

// MatchPhrase returns the first phrase contained in the line's lowercased
// text, or "" when none is.
func MatchPhrase(line domain.Line, phrases []string) string {
	text := strings.ToLower(line.Text())
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" && strings.Contains(text, p) {
			return p
		}
	}
	return ""
}

// FindHeader scans lines top-to-bottom and returns the index of the first
// line containing any header phrase. It is a first match, not a best match.
func FindHeader(lines []domain.Line, phrases []string) (int, bool) {
	for i := range lines {
		if MatchPhrase(lines[i], phrases) != "" {
			return i, true
		}
	}
	return -1, false
}
