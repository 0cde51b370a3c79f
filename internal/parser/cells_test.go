package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"packslip/internal/domain"
	"packslip/internal/parser"
)

func TestValidIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"ABC-123-L", true},
		{"SKU1", true},
		{"1234", true},
		{"ABC", false},
		{"abc-123-l", false},
		{"ABC 123", false},
		{"ABC_123", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parser.ValidIdentifier(tt.in))
		})
	}
}

func TestAssembleCode_JoinsWithoutSeparatorAndStripsNoise(t *testing.T) {
	assert.Equal(t, "ABC-123-L", parser.AssembleCode([]string{"ABC-", "123", "-L"}))
	assert.Equal(t, "ABC123", parser.AssembleCode([]string{"|ABC", " 1 2,3 |"}))
	assert.Equal(t, "", parser.AssembleCode([]string{"|", ","}))
}

func TestAssembleText_CollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "Blue Cotton Shirt", parser.AssembleText([]string{"Blue ", "  Cotton", "Shirt\t"}))
	assert.Equal(t, "", parser.AssembleText(nil))
}

func TestAssemble_ModeFollowsColumn(t *testing.T) {
	parts := []string{"AB", "12"}
	assert.Equal(t, "AB12", parser.Assemble(domain.ColumnIdentifierPrimary, parts))
	assert.Equal(t, "AB12", parser.Assemble(domain.ColumnIdentifierSecondary, parts))
	assert.Equal(t, "AB 12", parser.Assemble(domain.ColumnDescription, parts))
	assert.Equal(t, "AB 12", parser.Assemble(domain.ColumnQuantity, parts))
}

func TestForFormat(t *testing.T) {
	s, err := parser.ForFormat(parser.FormatPositionalBand)
	assert.NoError(t, err)
	assert.Equal(t, parser.FormatPositionalBand, s.Format())

	s, err = parser.ForFormat(parser.FormatDelimitedTable)
	assert.NoError(t, err)
	assert.Equal(t, parser.FormatDelimitedTable, s.Format())

	_, err = parser.ForFormat("csv")
	assert.Error(t, err)
}
