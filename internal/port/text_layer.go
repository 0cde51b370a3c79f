package port

import (
	"context"

	"packslip/internal/domain"
)

// TextDocument is an opened document whose pages can be read independently.
// Page must be safe to call from multiple goroutines.
type TextDocument interface {
	NumPages() int
	// Page returns the raw text and positioned tokens of a 1-indexed page.
	Page(pageNumber int) (rawText string, tokens []domain.Token, err error)
}

// TextLayer decodes document bytes into positioned text. The parsing core
// never decodes document formats itself.
type TextLayer interface {
	Open(data []byte, contentType string) (TextDocument, error)
}

// RecognizeInput carries the data for one OCR call.
type RecognizeInput struct {
	Data        []byte
	ContentType string
	PageNumber  int
}

// Recognizer is the optional OCR collaborator. It returns plain text.
type Recognizer interface {
	Recognize(ctx context.Context, input RecognizeInput) (string, error)
}
