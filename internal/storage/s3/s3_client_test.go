package s3

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"packslip/internal/domain"
)

func TestDocumentKey(t *testing.T) {
	id := uuid.MustParse("7b0c3f4e-8a1d-4c55-9e0b-2f6d1a9c3e11")
	assert.Equal(t, "documents/7b0c3f4e-8a1d-4c55-9e0b-2f6d1a9c3e11/labels.pdf", DocumentKey(id, "labels.pdf"))
	assert.Equal(t, "documents/7b0c3f4e-8a1d-4c55-9e0b-2f6d1a9c3e11/slip.pdf", DocumentKey(id, "../../etc/slip.pdf"))
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, "attachment; filename=labels.pdf", ContentDisposition("labels.pdf"))
	assert.Equal(t, `attachment; filename="flipkart labels.pdf"`, ContentDisposition("flipkart labels.pdf"))
}

func TestReadBounded(t *testing.T) {
	data, err := readBounded(strings.NewReader("12345"), 5)
	require.NoError(t, err)
	assert.Equal(t, "12345", string(data))

	_, err = readBounded(strings.NewReader("123456"), 5)
	assert.True(t, errors.Is(err, domain.ErrFileTooLarge))

	data, err = readBounded(strings.NewReader("123456"), 0)
	require.NoError(t, err)
	assert.Len(t, data, 6)
}
