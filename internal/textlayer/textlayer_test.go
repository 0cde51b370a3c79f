package textlayer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"packslip/internal/domain"
	"packslip/internal/textlayer"
)

func TestMux_ImageIsSingleEmptyPage(t *testing.T) {
	doc, err := textlayer.NewMux().Open([]byte{0x89, 'P', 'N', 'G'}, "image/png")
	require.NoError(t, err)

	assert.Equal(t, 1, doc.NumPages())
	raw, tokens, err := doc.Page(1)
	require.NoError(t, err)
	assert.Empty(t, raw)
	assert.Empty(t, tokens)

	_, _, err = doc.Page(2)
	assert.Error(t, err)
}

func TestMux_UnsupportedContentType(t *testing.T) {
	_, err := textlayer.NewMux().Open([]byte("a,b"), "text/csv")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestMux_InvalidPDF(t *testing.T) {
	_, err := textlayer.NewMux().Open([]byte("not a pdf"), "application/pdf; charset=binary")
	assert.Error(t, err)
}
