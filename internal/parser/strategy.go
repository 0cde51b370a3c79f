package parser

import (
	"fmt"

	"packslip/internal/domain"
)

// Format selects a row extraction strategy.
type Format string

const (
	FormatPositionalBand Format = "positional_band"
	FormatDelimitedTable Format = "delimited_table"
)

// Tolerances are the vertical slack constants used by row banding.
type Tolerances struct {
	// RowEpsilon widens each row band on both sides.
	RowEpsilon float64
	// WrapTolerance is how far below a row band a token may sit and still be
	// merged into that row as wrapped text. It must exceed RowEpsilon.
	WrapTolerance float64
	// BoundaryPad places synthetic lines above the first and below the last
	// data line.
	BoundaryPad float64
}

// DefaultTolerances returns the built-in tolerances.
func DefaultTolerances() Tolerances {
	return Tolerances{RowEpsilon: 2, WrapTolerance: 12, BoundaryPad: 10}
}

// ExtractInput is everything a strategy needs to extract one page's rows.
type ExtractInput struct {
	PageNumber int
	// Lines holds every line of the page; HeaderIndex points at the header.
	Lines       []domain.Line
	HeaderIndex int
	Bands       []domain.ColumnBand
	Profile     *Profile
	Tolerances  Tolerances
}

// RawRow is one data row before quantity and identifier resolution.
type RawRow struct {
	// LineIndex is the index of the row's data line in ExtractInput.Lines.
	LineIndex   int
	Cells       map[domain.ColumnKey]string
	RawLineText string
	// RowText is the text of every line merged into the row.
	RowText string
	// Window is RowText without identifier cells, for proximity search.
	Window string
	// HasQuantityColumn is true when the layout has a quantity column.
	HasQuantityColumn bool
	// OCRText is set only on rows recovered from OCR text.
	OCRText string
}

// Extraction is the structured result of one strategy run.
type Extraction struct {
	Rows              []RawRow
	Rejected          []domain.CellRejection
	ContinuationLines int
}

// Strategy extracts data rows from the lines below a header.
type Strategy interface {
	Format() Format
	ExtractRows(in ExtractInput) (*Extraction, error)
}

// ForFormat returns the strategy for a format. The set is closed.
func ForFormat(f Format) (Strategy, error) {
	switch f {
	case FormatPositionalBand:
		return PositionalBand{}, nil
	case FormatDelimitedTable:
		return DelimitedTable{}, nil
	default:
		return nil, fmt.Errorf("unknown row format: %q", f)
	}
}

// validateCodes blanks identifier cells that fail the shape predicate and
// records a rejection for each.
func validateCodes(cells map[domain.ColumnKey]string, lineIndex int, ext *Extraction) {
	for _, key := range []domain.ColumnKey{domain.ColumnIdentifierPrimary, domain.ColumnIdentifierSecondary} {
		v, ok := cells[key]
		if !ok || v == "" || ValidIdentifier(v) {
			continue
		}
		ext.Rejected = append(ext.Rejected, domain.CellRejection{LineIndex: lineIndex, Column: key, Value: v})
		cells[key] = ""
	}
}
