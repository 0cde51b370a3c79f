package service_test

import (
	"strings"

	"packslip/internal/domain"
	"packslip/internal/port"
)

// pdfHeader makes http.DetectContentType report application/pdf.
var pdfHeader = []byte("%PDF-1.4\n%fake\n")

type stubDoc struct {
	tokens []domain.Token
}

func (d *stubDoc) NumPages() int { return 1 }

func (d *stubDoc) Page(int) (string, []domain.Token, error) {
	parts := make([]string, len(d.tokens))
	for i, t := range d.tokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " "), d.tokens, nil
}

type stubLayer struct {
	doc *stubDoc
	err error
}

func (l *stubLayer) Open([]byte, string) (port.TextDocument, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.doc, nil
}

func tok(text string, x, y float64) domain.Token {
	return domain.Token{Text: text, X: x, Y: y, Width: float64(len(text)) * 5, Height: 4}
}

// amazonSlip is one Amazon page with two lines of the same order.
func amazonSlip() *stubDoc {
	return &stubDoc{tokens: []domain.Token{
		tok("Amazon.in", 20, 20),
		tok("Order", 20, 50), tok("ID:", 60, 50), tok("403-1234567-7654321", 90, 50),
		tok("SKU", 20, 100), tok("Description", 120, 100), tok("Qty", 320, 100),
		tok("MUG-01", 20, 120), tok("Coffee", 120, 120), tok("mug", 160, 120), tok("2", 320, 120),
		tok("CAP-09", 20, 140), tok("Cap", 120, 140), tok("1", 320, 140),
	}}
}

func strPtr(s string) *string { return &s }
