package parser

import (
	"sort"
	"strings"

	"packslip/internal/domain"
	"packslip/internal/layout"
)

// PositionalBand extracts rows from layouts with no separators, relying
// purely on column bands and vertical row bands.
type PositionalBand struct{}

func (PositionalBand) Format() Format { return FormatPositionalBand }

// rowGroup is a data line plus the continuation lines that follow it.
type rowGroup struct {
	data int
	cont []int
}

type placedToken struct {
	tok  domain.Token
	rank int
	key  domain.ColumnKey
}

func (PositionalBand) ExtractRows(in ExtractInput) (*Extraction, error) {
	if len(in.Bands) == 0 {
		return nil, NewStructuralMiss(domain.MissNoColumnBands, "no header keyword matched a column")
	}

	ext := &Extraction{}
	groups := groupRows(in, ext)
	if len(groups) == 0 {
		return ext, nil
	}

	tol := in.Tolerances
	centers := make([]float64, len(groups))
	for i, g := range groups {
		centers[i] = in.Lines[g.data].AnchorY
	}
	hasQty := layout.HasBand(in.Bands, domain.ColumnQuantity)

	for i, g := range groups {
		prev := centers[i] - tol.BoundaryPad
		if i > 0 {
			prev = centers[i-1]
		}
		next := centers[i] + tol.BoundaryPad
		if i < len(groups)-1 {
			next = centers[i+1]
		}
		top := (prev + centers[i]) / 2
		bottom := (centers[i] + next) / 2

		lineIdx := append([]int{g.data}, g.cont...)
		var inBand, wrapped []placedToken
		filled := make(map[domain.ColumnKey]bool)
		var rowText, window []string

		for rank, li := range lineIdx {
			for _, t := range in.Lines[li].Tokens {
				rowText = append(rowText, t.Text)
				band, ok := layout.BandFor(in.Bands, t.X)
				if !ok || !band.Key.IsCode() {
					window = append(window, t.Text)
				}
				if !ok {
					continue
				}
				pt := placedToken{tok: t, rank: rank, key: band.Key}
				cy := t.CenterY()
				switch {
				case cy >= top-tol.RowEpsilon && cy <= bottom+tol.RowEpsilon:
					inBand = append(inBand, pt)
					filled[band.Key] = true
				case cy > bottom+tol.RowEpsilon && cy <= bottom+tol.WrapTolerance:
					wrapped = append(wrapped, pt)
				}
			}
		}

		union := inBand
		for _, pt := range wrapped {
			if filled[pt.key] {
				union = append(union, pt)
			}
		}
		sort.SliceStable(union, func(a, b int) bool {
			if union[a].rank != union[b].rank {
				return union[a].rank < union[b].rank
			}
			return union[a].tok.X < union[b].tok.X
		})

		parts := make(map[domain.ColumnKey][]string)
		for _, pt := range union {
			parts[pt.key] = append(parts[pt.key], pt.tok.Text)
		}
		cells := make(map[domain.ColumnKey]string, len(in.Bands))
		for _, b := range in.Bands {
			cells[b.Key] = Assemble(b.Key, parts[b.Key])
		}
		validateCodes(cells, g.data, ext)

		ext.Rows = append(ext.Rows, RawRow{
			LineIndex:         g.data,
			Cells:             cells,
			RawLineText:       in.Lines[g.data].Text(),
			RowText:           strings.Join(rowText, " "),
			Window:            strings.Join(window, " "),
			HasQuantityColumn: hasQty,
		})
	}
	return ext, nil
}

// groupRows splits the lines below the header into data lines and their
// continuation lines. When a primary identifier band exists, a line with no
// token in it (noise characters aside) continues the previous data row. The table ends at the first
// line matching a profile stop phrase.
func groupRows(in ExtractInput, ext *Extraction) []rowGroup {
	hasPrimary := layout.HasBand(in.Bands, domain.ColumnIdentifierPrimary)
	var stops []string
	if in.Profile != nil {
		stops = in.Profile.StopPhrases
	}

	var groups []rowGroup
	for i := in.HeaderIndex + 1; i < len(in.Lines); i++ {
		line := in.Lines[i]
		if len(stops) > 0 && layout.MatchPhrase(line, stops) != "" {
			break
		}
		if isDataLine(line, in.Bands, hasPrimary) {
			groups = append(groups, rowGroup{data: i})
			continue
		}
		if len(groups) > 0 {
			last := &groups[len(groups)-1]
			last.cont = append(last.cont, i)
			ext.ContinuationLines++
		}
	}
	return groups
}

func isDataLine(line domain.Line, bands []domain.ColumnBand, hasPrimary bool) bool {
	for _, t := range line.Tokens {
		band, ok := layout.BandFor(bands, t.X)
		if !ok {
			continue
		}
		if !hasPrimary {
			return true
		}
		if band.Key == domain.ColumnIdentifierPrimary && AssembleCode([]string{t.Text}) != "" {
			return true
		}
	}
	return false
}
