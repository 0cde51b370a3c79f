// Package tesseract recognizes text in page images with a local Tesseract
// install through gosseract.
package tesseract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/otiai10/gosseract/v2"

	"packslip/internal/ocr"
	"packslip/internal/port"
)

// Recognizer implements port.Recognizer for image input. PDF pages are not
// rasterized here.
type Recognizer struct {
	languages []string
	cooldown  time.Duration
}

// New creates a Recognizer. Languages default to English.
func New(languages []string, cooldown time.Duration) *Recognizer {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Recognizer{languages: languages, cooldown: cooldown}
}

func (r *Recognizer) Recognize(ctx context.Context, input port.RecognizeInput) (string, error) {
	if !strings.HasPrefix(input.ContentType, "image/") {
		return "", fmt.Errorf("tesseract: %s: %w", input.ContentType, ocr.ErrUnsupportedInput)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(r.languages...); err != nil {
		return "", ocr.NewUnavailableError("tesseract", err, r.cooldown)
	}
	if err := client.SetImageFromBytes(input.Data); err != nil {
		return "", fmt.Errorf("tesseract: failed to set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", ocr.NewUnavailableError("tesseract", err, r.cooldown)
	}
	return text, nil
}
