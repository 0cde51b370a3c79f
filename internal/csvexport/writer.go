package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"packslip/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the pick-list header row.
var columns = []string{
	"Platform",
	"SKU",
	"Resolved",
	"Description",
	"Total Quantity",
	"Order Count",
	"Order IDs",
}

// Writer wraps csv.Writer for exporting pick lists as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WritePickList writes one row per aggregate.
func (w *Writer) WritePickList(aggs []domain.PickListAggregate) error {
	for i := range aggs {
		if err := w.csv.Write(aggregateToRow(&aggs[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// aggregateToRow converts one aggregate to a row. Unresolved buckets show
// their display SKU and are flagged in the Resolved column.
func aggregateToRow(a *domain.PickListAggregate) []string {
	sku := a.DisplaySKU
	resolved := "No"
	if a.CanonicalSKU != nil {
		sku = *a.CanonicalSKU
		resolved = "Yes"
	}
	return []string{
		string(a.Platform),
		sku,
		resolved,
		a.Description,
		strconv.Itoa(a.TotalQuantity),
		strconv.Itoa(len(a.ContributingOrderIDs)),
		strings.Join(a.ContributingOrderIDs, " "),
	}
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: picklist_{sanitized_scope}_{YYYY-MM-DD}.{ext}
func BuildFilename(scope, ext string) string {
	name := "picklist"
	if sanitized := SanitizeFilename(scope); sanitized != "" {
		name += "_" + sanitized
	}
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", name, date, ext)
}
