package domain

import "strings"

// Token is a single positioned text fragment from a page's text layer.
// Y grows downwards from the top of the page.
type Token struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CenterY returns the vertical center of the token.
func (t Token) CenterY() float64 {
	return t.Y + t.Height/2
}

// Page is one page of a shipment document as seen by the parser.
type Page struct {
	PageNumber int     `json:"page_number"`
	RawText    string  `json:"raw_text"`
	Tokens     []Token `json:"tokens"`
	OCRText    string  `json:"ocr_text,omitempty"`
}

// Line is a group of tokens sharing an inferred vertical band, ordered by x.
type Line struct {
	AnchorY float64 `json:"anchor_y"`
	Tokens  []Token `json:"tokens"`
}

// Text joins the line's tokens with single spaces.
func (l Line) Text() string {
	parts := make([]string, 0, len(l.Tokens))
	for _, t := range l.Tokens {
		parts = append(parts, t.Text)
	}
	return strings.Join(parts, " ")
}

// ColumnBand is a horizontal x-range associated with one semantic column.
type ColumnBand struct {
	Key     ColumnKey `json:"key"`
	CenterX float64   `json:"center_x"`
	MinX    float64   `json:"min_x"`
	MaxX    float64   `json:"max_x"`
}

// Contains reports whether x falls inside the band (inclusive).
func (b ColumnBand) Contains(x float64) bool {
	return x >= b.MinX && x <= b.MaxX
}
