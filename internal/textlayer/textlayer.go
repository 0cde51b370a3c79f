// Package textlayer adapts document decoders to port.TextLayer.
package textlayer

import (
	"fmt"
	"strings"

	"packslip/internal/domain"
	"packslip/internal/port"
)

// Mux picks a decoder by content type.
type Mux struct {
	pdf   port.TextLayer
	image port.TextLayer
}

// NewMux returns a Mux serving PDFs with the ledongthuc decoder and images
// as text-less single pages.
func NewMux() *Mux {
	return &Mux{pdf: NewPDF(), image: Image{}}
}

func (m *Mux) Open(data []byte, contentType string) (port.TextDocument, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	switch {
	case ct == "application/pdf":
		return m.pdf.Open(data, ct)
	case strings.HasPrefix(ct, "image/"):
		return m.image.Open(data, ct)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, contentType)
	}
}

// Image exposes an image as one page with no text layer, so every page goes
// to OCR.
type Image struct{}

func (Image) Open(data []byte, _ string) (port.TextDocument, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	return imageDoc{}, nil
}

type imageDoc struct{}

func (imageDoc) NumPages() int { return 1 }

func (imageDoc) Page(n int) (string, []domain.Token, error) {
	if n != 1 {
		return "", nil, fmt.Errorf("page %d out of range", n)
	}
	return "", nil, nil
}
