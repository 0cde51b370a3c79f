package domain

// Structural miss reasons.
const (
	MissNoHeader      = "no_header"
	MissNoColumnBands = "no_column_bands"
	MissNoTokens      = "no_tokens"
)

// StructuralMiss explains why a page produced no table.
type StructuralMiss struct {
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// CellRejection records an assembled cell that failed its shape predicate.
type CellRejection struct {
	LineIndex int       `json:"line_index"`
	Column    ColumnKey `json:"column"`
	Value     string    `json:"value"`
}

// HeaderInfo describes the detected header line.
type HeaderInfo struct {
	LineIndex int     `json:"line_index"`
	Text      string  `json:"text"`
	Y         float64 `json:"y"`
	Phrase    string  `json:"phrase"`
}

// PageDiagnostic is the intermediate state of one page parse.
type PageDiagnostic struct {
	PageNumber    int             `json:"page_number"`
	RawText       string          `json:"raw_text"`
	TokenCount    int             `json:"token_count"`
	UsedOCR       bool            `json:"used_ocr"`
	OCRText       string          `json:"ocr_text,omitempty"`
	Header        *HeaderInfo     `json:"header,omitempty"`
	Bands         []ColumnBand    `json:"bands"`
	Rows          []ParsedRow     `json:"rows"`
	Miss          *StructuralMiss `json:"structural_miss,omitempty"`
	RejectedCells []CellRejection `json:"rejected_cells,omitempty"`
	SkippedLines  int             `json:"continuation_lines"`
	Warnings      []string        `json:"warnings,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// DocumentDiagnostic is the serializable export of a whole document parse.
type DocumentDiagnostic struct {
	FileRef  string           `json:"file_ref"`
	Platform Platform         `json:"platform"`
	Format   string           `json:"format"`
	Pages    []PageDiagnostic `json:"pages"`
	Errors   []string         `json:"errors,omitempty"`
}

// Rows returns every row of the document in page order.
func (d *DocumentDiagnostic) Rows() []ParsedRow {
	var rows []ParsedRow
	for i := range d.Pages {
		rows = append(rows, d.Pages[i].Rows...)
	}
	return rows
}
