package textlayer

import (
	"testing"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"packslip/internal/textlayer/pdftest"
)

func glyphs(s string, x, y, size float64) []pdf.Text {
	out := make([]pdf.Text, 0, len(s))
	for _, r := range s {
		out = append(out, pdf.Text{S: string(r), X: x, Y: y, W: size * 0.5, FontSize: size})
		x += size * 0.5
	}
	return out
}

func TestGlyphsToTokens_MergesWordsAndFlipsY(t *testing.T) {
	var texts []pdf.Text
	texts = append(texts, glyphs("SKU", 20, 700, 10)...)
	texts = append(texts, pdf.Text{S: " ", X: 35, Y: 700, W: 5, FontSize: 10})
	texts = append(texts, glyphs("Qty", 300, 700, 10)...)
	texts = append(texts, glyphs("AB-12", 20, 680, 10)...)

	tokens := glyphsToTokens(texts, 792)

	require.Len(t, tokens, 3)
	assert.Equal(t, "SKU", tokens[0].Text)
	assert.Equal(t, "Qty", tokens[1].Text)
	assert.Equal(t, "AB-12", tokens[2].Text)
	assert.InDelta(t, 82, tokens[0].Y, 0.001)
	assert.InDelta(t, 102, tokens[2].Y, 0.001)
	assert.InDelta(t, 15, tokens[0].Width, 0.001)
	assert.Equal(t, 10.0, tokens[0].Height)
}

func TestGlyphsToTokens_GapSplitsWords(t *testing.T) {
	texts := append(glyphs("AB", 20, 100, 10), glyphs("CD", 40, 100, 10)...)

	tokens := glyphsToTokens(texts, 0)

	require.Len(t, tokens, 2)
	assert.Equal(t, "AB", tokens[0].Text)
	assert.Equal(t, "CD", tokens[1].Text)
	assert.InDelta(t, 0, tokens[0].Y, 0.001)
}

func TestPDF_ReadsPositionedText(t *testing.T) {
	data := pdftest.Build(pdftest.Text("AB-1234", 72, 700))

	doc, err := NewPDF().Open(data, "application/pdf")
	require.NoError(t, err)
	require.Equal(t, 1, doc.NumPages())

	raw, tokens, err := doc.Page(1)
	require.NoError(t, err)
	assert.Equal(t, "AB-1234", raw)
	require.Len(t, tokens, 1)
	assert.InDelta(t, 72, tokens[0].X, 0.001)
	assert.InDelta(t, 80, tokens[0].Y, 0.001)
}

func TestPDF_MalformedPageIsAnErrorAndReleasesReader(t *testing.T) {
	data := pdftest.Build(pdftest.BadTj, pdftest.Text("AB-1234", 72, 700))

	doc, err := NewPDF().Open(data, "application/pdf")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)

		_, _, err := doc.Page(1)
		assert.ErrorContains(t, err, "bad Tj operator")

		raw, _, err := doc.Page(2)
		assert.NoError(t, err)
		assert.Equal(t, "AB-1234", raw)
		assert.Equal(t, 2, doc.NumPages())
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("reader still locked after a malformed page")
	}
}

func TestPDF_OpenRejectsGarbage(t *testing.T) {
	_, err := NewPDF().Open([]byte("%PDF-1.4\nnot really a pdf"), "application/pdf")
	assert.Error(t, err)
}
