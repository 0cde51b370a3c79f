package textlayer

import (
	"bytes"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"

	"packslip/internal/domain"
	"packslip/internal/port"
)

// WordGapRatio is the horizontal gap, as a fraction of the font size, above
// which two glyphs start separate words.
const WordGapRatio = 0.25

// PDF decodes PDF text layers with github.com/ledongthuc/pdf.
type PDF struct{}

// NewPDF creates a PDF text layer.
func NewPDF() PDF { return PDF{} }

// Open parses the cross-reference table. The reader panics on some malformed
// input, so every call into it is guarded.
func (PDF) Open(data []byte, _ string) (doc port.TextDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("textlayer.PDF: malformed document: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("textlayer.PDF: %w", err)
	}
	return &pdfDoc{r: r}, nil
}

type pdfDoc struct {
	// The reader resolves objects lazily and is not safe for concurrent use.
	mu sync.Mutex
	r  *pdf.Reader
}

// NumPages returns zero when the page tree cannot be read.
func (d *pdfDoc) NumPages() (n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("textlayer.PDF: unreadable page tree: %v", r)
			n = 0
		}
	}()
	return d.r.NumPage()
}

func (d *pdfDoc) Page(n int) (string, []domain.Token, error) {
	texts, height, err := d.content(n)
	if err != nil {
		return "", nil, err
	}

	tokens := glyphsToTokens(texts, height)
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " "), tokens, nil
}

// content decodes one page's content stream under the reader lock. A panic
// in the decoder becomes an error for that page only.
func (d *pdfDoc) content(n int) (texts []pdf.Text, height float64, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			texts, height = nil, 0
			err = fmt.Errorf("textlayer.PDF: page %d: malformed content: %v", n, r)
		}
	}()

	p := d.r.Page(n)
	if p.V.IsNull() {
		return nil, 0, fmt.Errorf("textlayer.PDF: page %d not found", n)
	}
	texts = p.Content().Text
	height = p.V.Key("MediaBox").Index(3).Float64()
	return texts, height, nil
}

// glyphsToTokens merges the per-glyph runs of a content stream into word
// tokens and flips the y axis so it grows downwards. pageHeight may be zero,
// in which case the highest glyph top stands in for it.
func glyphsToTokens(texts []pdf.Text, pageHeight float64) []domain.Token {
	if pageHeight <= 0 {
		for _, t := range texts {
			pageHeight = math.Max(pageHeight, t.Y+t.FontSize)
		}
	}

	var tokens []domain.Token
	var cur *domain.Token
	var curEnd, curBase, curSize float64
	flush := func() {
		if cur != nil && strings.TrimSpace(cur.Text) != "" {
			tokens = append(tokens, *cur)
		}
		cur = nil
	}

	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			flush()
			continue
		}
		size := t.FontSize
		if size <= 0 {
			size = 1
		}
		sameLine := cur != nil && math.Abs(t.Y-curBase) <= curSize/2
		adjacent := sameLine && t.X-curEnd <= curSize*WordGapRatio && t.X >= cur.X
		if !adjacent {
			flush()
			cur = &domain.Token{
				Text:   t.S,
				X:      t.X,
				Y:      pageHeight - t.Y - size,
				Height: size,
			}
			curBase, curSize = t.Y, size
		} else {
			cur.Text += t.S
		}
		curEnd = t.X + t.W
		cur.Width = curEnd - cur.X
	}
	flush()

	sort.SliceStable(tokens, func(i, j int) bool {
		if tokens[i].Y != tokens[j].Y {
			return tokens[i].Y < tokens[j].Y
		}
		return tokens[i].X < tokens[j].X
	})
	return tokens
}
