package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"packslip/internal/domain"
	"packslip/internal/layout"
)

func line(texts ...string) domain.Line {
	l := domain.Line{}
	for i, s := range texts {
		l.Tokens = append(l.Tokens, tok(s, float64(i*50), 0))
	}
	return l
}

func TestFindHeader_FirstMatchWins(t *testing.T) {
	lines := []domain.Line{
		line("Ship", "To:", "Someone"),
		line("SKU", "Description", "Qty"),
		line("Order", "Qty", "Summary"),
	}

	idx, ok := layout.FindHeader(lines, []string{"qty"})
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestFindHeader_CaseInsensitiveAndPhraseAcrossTokens(t *testing.T) {
	lines := []domain.Line{
		line("Invoice"),
		line("SKU", "ID", "Product"),
	}

	idx, ok := layout.FindHeader(lines, []string{"sku id"})
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, "sku id", layout.MatchPhrase(lines[1], []string{"missing", "SKU ID"}))
}

func TestFindHeader_NoMatch(t *testing.T) {
	idx, ok := layout.FindHeader([]domain.Line{line("nothing", "here")}, []string{"qty"})
	assert.False(t, ok)
	assert.Equal(t, -1, idx)
}
