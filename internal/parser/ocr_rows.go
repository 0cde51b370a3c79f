package parser

import (
	"strings"
	"unicode"

	"packslip/internal/domain"
)

// OCRLines splits OCR output into trimmed, non-empty lines.
func OCRLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// ExtractOCRRows recovers rows from plain OCR text. OCR carries no geometry,
// so a row is any line after the header phrase holding a word with the shape
// of an identifier. Purely numeric words are never taken as identifiers.
func ExtractOCRRows(text string, p *Profile) []RawRow {
	lines := OCRLines(text)
	start := 0
	var stops []string
	if p != nil {
		stops = p.StopPhrases
		for i, l := range lines {
			if containsAny(l, p.HeaderPhrases) {
				start = i + 1
				break
			}
		}
	}

	var rows []RawRow
	for i := start; i < len(lines); i++ {
		line := lines[i]
		if containsAny(line, stops) {
			break
		}
		var id string
		var rest, desc []string
		for _, f := range strings.Fields(line) {
			code := AssembleCode([]string{f})
			if id == "" && ValidIdentifier(code) && hasLetter(code) {
				id = code
				continue
			}
			rest = append(rest, f)
			if !isNumeric(f) {
				desc = append(desc, f)
			}
		}
		if id == "" {
			continue
		}
		rows = append(rows, RawRow{
			LineIndex: i,
			Cells: map[domain.ColumnKey]string{
				domain.ColumnIdentifierPrimary: id,
				domain.ColumnDescription:       AssembleText(desc),
			},
			RawLineText: line,
			RowText:     line,
			OCRText:     strings.Join(rest, " "),
		})
	}
	return rows
}

func containsAny(s string, phrases []string) bool {
	ls := strings.ToLower(s)
	for _, p := range phrases {
		if p != "" && strings.Contains(ls, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

func hasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

func isNumeric(s string) bool {
	s = strings.Trim(s, ".,:;()")
	return s != "" && strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) }) < 0
}
