package parser_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"packslip/internal/domain"
	"packslip/internal/layout"
	"packslip/internal/parser"
)

func textLines(texts ...string) []domain.Line {
	lines := make([]domain.Line, len(texts))
	for i, s := range texts {
		lines[i] = domain.Line{AnchorY: float64(i * 10), Tokens: []domain.Token{tok(s, 10, float64(i*10))}}
	}
	return lines
}

func meesho(t *testing.T) *parser.Profile {
	t.Helper()
	p, err := parser.DefaultProfiles().Get(parser.PlatformMeesho)
	require.NoError(t, err)
	return p
}

func TestDelimitedTable_RowsContinuationsAndStop(t *testing.T) {
	lines := textLines(
		"Meesho Supplier Label",
		"SKU | Product Name | Qty | Order No.",
		"ABC-123-L | Blue Shirt | 2 | 1234567890",
		" | (Large) |  | ",
		"XYZ-99 | Cap | 1 | 1234567891",
		"Cotton",
		"Total | 3",
		"LATE-1 | Ghost | 9 | 1234567892",
	)

	ext, err := parser.DelimitedTable{}.ExtractRows(parser.ExtractInput{
		PageNumber:  1,
		Lines:       lines,
		HeaderIndex: 1,
		Profile:     meesho(t),
		Tolerances:  parser.DefaultTolerances(),
	})
	require.NoError(t, err)

	require.Len(t, ext.Rows, 2)
	assert.Equal(t, 2, ext.ContinuationLines)

	r := ext.Rows[0]
	assert.Equal(t, 2, r.LineIndex)
	assert.Equal(t, "ABC-123-L", r.Cells[domain.ColumnIdentifierPrimary])
	assert.Equal(t, "1234567890", r.Cells[domain.ColumnIdentifierSecondary])
	assert.Equal(t, "Blue Shirt (Large)", r.Cells[domain.ColumnDescription])
	assert.Equal(t, "2", r.Cells[domain.ColumnQuantity])
	assert.True(t, r.HasQuantityColumn)
	assert.NotContains(t, r.Window, "ABC-123-L")

	r = ext.Rows[1]
	assert.Equal(t, "XYZ-99", r.Cells[domain.ColumnIdentifierPrimary])
	assert.Equal(t, "Cap Cotton", r.Cells[domain.ColumnDescription])
}

func TestDelimitedTable_RejectsBadSecondaryButKeepsRow(t *testing.T) {
	lines := textLines(
		"SKU | Product | Qty | Order No",
		"ABC-123 | Mug | 1 | 12_3",
	)

	ext, err := parser.DelimitedTable{}.ExtractRows(parser.ExtractInput{
		Lines:   lines,
		Profile: meesho(t),
	})
	require.NoError(t, err)

	require.Len(t, ext.Rows, 1)
	assert.Equal(t, "ABC-123", ext.Rows[0].Cells[domain.ColumnIdentifierPrimary])
	assert.Equal(t, "", ext.Rows[0].Cells[domain.ColumnIdentifierSecondary])
	require.Len(t, ext.Rejected, 1)
	assert.Equal(t, domain.ColumnIdentifierSecondary, ext.Rejected[0].Column)
}

func TestDelimitedTable_HeaderWithoutSeparator(t *testing.T) {
	_, err := parser.DelimitedTable{}.ExtractRows(parser.ExtractInput{
		Lines:   textLines("SKU Product Qty"),
		Profile: meesho(t),
	})

	var miss *parser.StructuralMissError
	require.True(t, errors.As(err, &miss))
	assert.Equal(t, domain.MissNoColumnBands, miss.Miss.Reason)
}

func TestDelimitedTable_NoMappedColumns(t *testing.T) {
	p := &parser.Profile{
		Platform:      "x",
		Format:        parser.FormatDelimitedTable,
		HeaderPhrases: []string{"a"},
		Columns:       []layout.ColumnGroup{{Key: domain.ColumnQuantity, Keywords: []string{"qty"}}},
	}
	_, err := parser.DelimitedTable{}.ExtractRows(parser.ExtractInput{
		Lines:   textLines("a | b | c"),
		Profile: p,
	})

	var miss *parser.StructuralMissError
	assert.True(t, errors.As(err, &miss))
}
