// Package quantity turns the text around a parsed row into a positive line
// quantity tagged with where it came from.
package quantity

import (
	"regexp"
	"strconv"
	"strings"

	"packslip/internal/domain"
)

// Proximity bounds: only small integers are believed when guessing from
// surrounding text.
const (
	ProximityMin = 1
	ProximityMax = 99
)

var (
	labelRe   = regexp.MustCompile(`(?i)\b(?:quantity|qty)\s*[:.]?\s*(-?\d+)`)
	integerRe = regexp.MustCompile(`-?\d+`)
	wordRe    = regexp.MustCompile(`\S+`)
)

// RowContext is the text a resolver may inspect for one row.
type RowContext struct {
	// LabelText is searched for an explicit "qty: N" label.
	LabelText string
	// ColumnText is the assembled quantity cell.
	ColumnText string
	// HasColumn is true when the layout has a quantity column.
	HasColumn bool
	// Window is the row text with identifier cells removed.
	Window string
	// OCRText is set only for rows recovered from OCR output.
	OCRText string
}

// Resolve runs the fallback chain and always returns a quantity in
// [1, domain.MaxQuantity].
func Resolve(rc RowContext) domain.Quantity {
	if v, ok := FromLabel(rc.LabelText); ok {
		return domain.Quantity{Value: v, Source: domain.QuantitySourceExplicitLabel, Confidence: domain.ConfidenceHigh}
	}
	if rc.HasColumn {
		if v, ok := FromColumn(rc.ColumnText); ok {
			return domain.Quantity{Value: v, Source: domain.QuantitySourceColumn, Confidence: domain.ConfidenceHigh}
		}
	}
	if v, ok := FromProximity(rc.Window); ok {
		return domain.Quantity{Value: v, Source: domain.QuantitySourceProximity, Confidence: domain.ConfidenceMedium}
	}
	if rc.OCRText != "" {
		if v, ok := FromLabel(rc.OCRText); ok {
			return domain.Quantity{Value: v, Source: domain.QuantitySourceOCR, Confidence: domain.ConfidenceLow}
		}
		if v, ok := FromProximity(rc.OCRText); ok {
			return domain.Quantity{Value: v, Source: domain.QuantitySourceOCR, Confidence: domain.ConfidenceLow}
		}
	}
	return domain.Quantity{Value: 1, Source: domain.QuantitySourceDefaultGuess, Confidence: domain.ConfidenceLow}
}

// FromLabel returns the number following the first "quantity" or "qty" label.
func FromLabel(text string) (int, bool) {
	m := labelRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return positive(m[1])
}

// FromColumn parses the first integer substring of a quantity cell.
func FromColumn(text string) (int, bool) {
	m := integerRe.FindString(text)
	if m == "" {
		return 0, false
	}
	return positive(m)
}

// FromProximity returns the last standalone integer in [ProximityMin,
// ProximityMax]. Numbers glued to letters (sizes, codes) are ignored.
func FromProximity(text string) (int, bool) {
	words := wordRe.FindAllString(text, -1)
	for i := len(words) - 1; i >= 0; i-- {
		w := strings.Trim(words[i], ".,;:()[]|x×")
		if w == "" {
			continue
		}
		n, err := strconv.Atoi(w)
		if err != nil {
			continue
		}
		if n >= ProximityMin && n <= ProximityMax {
			return n, true
		}
	}
	return 0, false
}

// positive accepts 1..domain.MaxQuantity.
func positive(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > domain.MaxQuantity {
		return 0, false
	}
	return n, true
}
