package ocr_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"packslip/internal/ocr"
	"packslip/internal/port"
	"packslip/mocks"
)

var input = port.RecognizeInput{Data: []byte("img"), ContentType: "image/png", PageNumber: 1}

func TestFallbackRecognizer_FirstSucceeds(t *testing.T) {
	e1 := new(mocks.MockRecognizer)
	e2 := new(mocks.MockRecognizer)
	e1.On("Recognize", mock.Anything, input).Return("SKU ABC-123", nil)

	fr := ocr.NewFallbackRecognizer([]port.Recognizer{e1, e2}, []string{"tesseract", "remote"})
	text, err := fr.Recognize(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "SKU ABC-123", text)
	e2.AssertNotCalled(t, "Recognize", mock.Anything, mock.Anything)
}

func TestFallbackRecognizer_UnavailableOpensCircuit(t *testing.T) {
	e1 := new(mocks.MockRecognizer)
	e2 := new(mocks.MockRecognizer)
	e1.On("Recognize", mock.Anything, input).
		Return("", ocr.NewUnavailableError("tesseract", errors.New("no tessdata"), time.Minute)).Once()
	e2.On("Recognize", mock.Anything, input).Return("text", nil)

	fr := ocr.NewFallbackRecognizer([]port.Recognizer{e1, e2}, []string{"tesseract", "remote"})

	for i := 0; i < 2; i++ {
		text, err := fr.Recognize(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, "text", text)
	}
	e1.AssertNumberOfCalls(t, "Recognize", 1)
	e2.AssertNumberOfCalls(t, "Recognize", 2)
}

func TestFallbackRecognizer_AllUnavailable(t *testing.T) {
	e1 := new(mocks.MockRecognizer)
	e1.On("Recognize", mock.Anything, input).
		Return("", ocr.NewUnavailableError("tesseract", errors.New("down"), 30*time.Second))

	fr := ocr.NewFallbackRecognizer([]port.Recognizer{e1}, []string{"tesseract"})
	_, err := fr.Recognize(context.Background(), input)

	var unErr *ocr.UnavailableError
	require.True(t, errors.As(err, &unErr))
	assert.Equal(t, "all", unErr.Engine)

	_, err = fr.Recognize(context.Background(), input)
	require.True(t, errors.As(err, &unErr))
	e1.AssertNumberOfCalls(t, "Recognize", 1)
}

func TestFallbackRecognizer_GenericErrorDoesNotOpenCircuit(t *testing.T) {
	e1 := new(mocks.MockRecognizer)
	e1.On("Recognize", mock.Anything, input).Return("", ocr.ErrUnsupportedInput)

	fr := ocr.NewFallbackRecognizer([]port.Recognizer{e1}, []string{"tesseract"})
	for i := 0; i < 2; i++ {
		_, err := fr.Recognize(context.Background(), input)
		assert.ErrorIs(t, err, ocr.ErrUnsupportedInput)
	}
	e1.AssertNumberOfCalls(t, "Recognize", 2)
}

func TestNewUnavailableError_DefaultCooldown(t *testing.T) {
	err := ocr.NewUnavailableError("x", errors.New("boom"), 0)
	assert.Equal(t, ocr.DefaultCooldown, err.RetryAfter)
	assert.Contains(t, err.Error(), "boom")
}
