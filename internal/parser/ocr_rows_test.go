package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"packslip/internal/domain"
	"packslip/internal/parser"
)

func TestExtractOCRRows(t *testing.T) {
	text := `Flipkart shipping label
Order ID: OD1234567
SKU ID  Description  QTY
ABC-123-L  Blue Shirt  2

110001 560001
XYZ-99 Cap 1
Total Qty 3
LATE-1 Ghost 4`

	p, err := parser.DefaultProfiles().Get(parser.PlatformFlipkart)
	require.NoError(t, err)

	rows := parser.ExtractOCRRows(text, p)

	require.Len(t, rows, 2)
	assert.Equal(t, "ABC-123-L", rows[0].Cells[domain.ColumnIdentifierPrimary])
	assert.Equal(t, "Blue Shirt", rows[0].Cells[domain.ColumnDescription])
	assert.Equal(t, "Blue Shirt 2", rows[0].OCRText)
	assert.Equal(t, "XYZ-99", rows[1].Cells[domain.ColumnIdentifierPrimary])
	assert.Equal(t, "Cap 1", rows[1].OCRText)
	assert.Equal(t, 3, rows[0].LineIndex)
}

func TestOCRLines_DropsBlankLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, parser.OCRLines("  a \n\n\t\nb"))
}
