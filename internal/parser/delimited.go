package parser

import (
	"strings"

	"packslip/internal/domain"
	"packslip/internal/layout"
)

// DefaultSeparator is used when a delimited profile names none.
const DefaultSeparator = "|"

// DelimitedTable extracts rows from layouts whose cells are separated by an
// explicit character. Columns are mapped by position from the header cells.
type DelimitedTable struct{}

func (DelimitedTable) Format() Format { return FormatDelimitedTable }

type pendingRow struct {
	lineIndex int
	rawLine   string
	parts     map[domain.ColumnKey][]string
	text      []string
	window    []string
}

func (DelimitedTable) ExtractRows(in ExtractInput) (*Extraction, error) {
	sep := DefaultSeparator
	var groups []layout.ColumnGroup
	var stops []string
	if in.Profile != nil {
		if in.Profile.Separator != "" {
			sep = in.Profile.Separator
		}
		groups = in.Profile.Columns
		stops = in.Profile.StopPhrases
	}

	header := in.Lines[in.HeaderIndex].Text()
	if !strings.Contains(header, sep) {
		return nil, NewStructuralMiss(domain.MissNoColumnBands, "header line has no "+sep+" separator")
	}
	keys := mapHeaderCells(splitCells(header, sep), groups)
	hasPrimary, mapped := false, false
	for _, k := range keys {
		if k != "" {
			mapped = true
		}
		if k == domain.ColumnIdentifierPrimary {
			hasPrimary = true
		}
	}
	if !mapped {
		return nil, NewStructuralMiss(domain.MissNoColumnBands, "no header cell matched a column")
	}

	hasQty := false
	for _, k := range keys {
		if k == domain.ColumnQuantity {
			hasQty = true
		}
	}

	ext := &Extraction{}
	var rows []*pendingRow
	for i := in.HeaderIndex + 1; i < len(in.Lines); i++ {
		line := in.Lines[i]
		if len(stops) > 0 && layout.MatchPhrase(line, stops) != "" {
			break
		}
		text := line.Text()
		var current *pendingRow
		if len(rows) > 0 {
			current = rows[len(rows)-1]
		}

		if !strings.Contains(text, sep) {
			// Wrapped free text with no cells continues the description.
			if current != nil {
				current.text = append(current.text, text)
				current.window = append(current.window, text)
				current.parts[domain.ColumnDescription] = append(current.parts[domain.ColumnDescription], text)
				ext.ContinuationLines++
			}
			continue
		}

		cells := splitCells(text, sep)
		parts := make(map[domain.ColumnKey][]string)
		var window []string
		for ci, cell := range cells {
			if ci >= len(keys) || keys[ci] == "" {
				window = append(window, cell)
				continue
			}
			if cell != "" {
				parts[keys[ci]] = append(parts[keys[ci]], cell)
			}
			if !keys[ci].IsCode() {
				window = append(window, cell)
			}
		}

		if hasPrimary && len(parts[domain.ColumnIdentifierPrimary]) == 0 {
			if current != nil {
				for k, v := range parts {
					current.parts[k] = append(current.parts[k], v...)
				}
				current.text = append(current.text, text)
				current.window = append(current.window, window...)
				ext.ContinuationLines++
			}
			continue
		}

		rows = append(rows, &pendingRow{
			lineIndex: i,
			rawLine:   text,
			parts:     parts,
			text:      []string{text},
			window:    window,
		})
	}

	for _, r := range rows {
		cells := make(map[domain.ColumnKey]string)
		for _, k := range keys {
			if k != "" {
				cells[k] = Assemble(k, r.parts[k])
			}
		}
		validateCodes(cells, r.lineIndex, ext)
		ext.Rows = append(ext.Rows, RawRow{
			LineIndex:         r.lineIndex,
			Cells:             cells,
			RawLineText:       r.rawLine,
			RowText:           strings.Join(r.text, " "),
			Window:            AssembleText(r.window),
			HasQuantityColumn: hasQty,
		})
	}
	return ext, nil
}

// splitCells splits a line on sep and trims every cell. Empty cells are
// kept so positions stay aligned with the header.
func splitCells(text, sep string) []string {
	raw := strings.Split(text, sep)
	cells := make([]string, len(raw))
	for i, c := range raw {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

// mapHeaderCells assigns a column key to each header cell. Groups are tried
// in order and a cell is claimed by the first group with a keyword it
// contains.
func mapHeaderCells(cells []string, groups []layout.ColumnGroup) []domain.ColumnKey {
	keys := make([]domain.ColumnKey, len(cells))
	used := make(map[domain.ColumnKey]bool)
	for _, g := range groups {
		if used[g.Key] {
			continue
		}
	cells:
		for ci, cell := range cells {
			if keys[ci] != "" {
				continue
			}
			lc := strings.ToLower(cell)
			for _, kw := range g.Keywords {
				if kw != "" && strings.Contains(lc, strings.ToLower(kw)) {
					keys[ci] = g.Key
					used[g.Key] = true
					break cells
				}
			}
		}
	}
	return keys
}
