package parser

import (
	"regexp"
	"strings"

	"packslip/internal/domain"
)

// MinIdentifierLength is the shortest string accepted as an identifier.
const MinIdentifierLength = 4

var identifierPattern = regexp.MustCompile(`^[A-Z0-9-]+$`)

// codeNoise is stripped from code cells after joining.
var codeNoise = strings.NewReplacer("|", "", ",", "")

// ValidIdentifier reports whether s has the shape of a marketplace identifier:
// uppercase alphanumerics and hyphens, at least MinIdentifierLength long.
func ValidIdentifier(s string) bool {
	return len(s) >= MinIdentifierLength && identifierPattern.MatchString(s)
}

// AssembleCode joins code fragments with no separator, then strips whitespace
// and noise characters.
func AssembleCode(parts []string) string {
	joined := codeNoise.Replace(strings.Join(parts, ""))
	return strings.Join(strings.Fields(joined), "")
}

// AssembleText joins free-text fragments with single spaces and collapses
// repeated whitespace.
func AssembleText(parts []string) string {
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// Assemble applies the assembly mode of the column.
func Assemble(key domain.ColumnKey, parts []string) string {
	if key.IsCode() {
		return AssembleCode(parts)
	}
	return AssembleText(parts)
}
