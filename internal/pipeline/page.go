package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode"

	"packslip/internal/domain"
	"packslip/internal/layout"
	"packslip/internal/parser"
	"packslip/internal/port"
	"packslip/internal/quantity"
)

type pageJob struct {
	number   int
	doc      port.TextDocument
	input    ParseInput
	profile  *parser.Profile
	strategy parser.Strategy
}

type pageResult struct {
	diag domain.PageDiagnostic
	rows []domain.ParsedRow
	// lastOrderID is the bottom-most order id printed on the page.
	lastOrderID string
}

// processPage parses one page. It never fails: errors and panics become the
// page diagnostic's Error and the page contributes no rows.
func (p *Pipeline) processPage(ctx context.Context, job pageJob) (res pageResult) {
	res.diag = domain.PageDiagnostic{PageNumber: job.number, Bands: []domain.ColumnBand{}}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("pipeline.processPage: panic on %s page %d: %v", job.input.FileRef, job.number, r)
			res = pageResult{diag: domain.PageDiagnostic{
				PageNumber: job.number,
				Bands:      []domain.ColumnBand{},
				Error:      fmt.Sprintf("panic: %v", r),
			}}
		}
	}()

	raw, tokens, err := job.doc.Page(job.number)
	if err != nil {
		res.diag.Error = err.Error()
		return res
	}
	res.diag.RawText = raw
	res.diag.TokenCount = len(tokens)

	lines := layout.ClusterLines(tokens, p.cfg.YTolerance)
	if len(tokens) == 0 {
		if p.recognizer != nil {
			return p.processOCR(ctx, job, res)
		}
		res.diag.Miss = &domain.StructuralMiss{Reason: domain.MissNoTokens, Detail: "text layer produced no tokens"}
		return res
	}

	idx, ok := layout.FindHeader(lines, job.profile.HeaderPhrases)
	if !ok {
		if p.recognizer != nil && !hasIdentifierToken(tokens) {
			return p.processOCR(ctx, job, res)
		}
		res.diag.Miss = &domain.StructuralMiss{Reason: domain.MissNoHeader, Detail: "no line contains a header phrase"}
		res.lastOrderID = lastOrderID(lineTexts(lines), job.profile)
		return res
	}
	header := lines[idx]
	res.diag.Header = &domain.HeaderInfo{
		LineIndex: idx,
		Text:      header.Text(),
		Y:         header.AnchorY,
		Phrase:    layout.MatchPhrase(header, job.profile.HeaderPhrases),
	}

	if job.profile.Format == parser.FormatPositionalBand {
		res.diag.Bands = layout.DeriveBands(header, job.profile.Columns, p.cfg.EdgeMargin)
	}

	ext, err := job.strategy.ExtractRows(parser.ExtractInput{
		PageNumber:  job.number,
		Lines:       lines,
		HeaderIndex: idx,
		Bands:       res.diag.Bands,
		Profile:     job.profile,
		Tolerances:  p.cfg.Tolerances,
	})
	texts := lineTexts(lines)
	res.lastOrderID = lastOrderID(texts, job.profile)
	if err != nil {
		var miss *parser.StructuralMissError
		if errors.As(err, &miss) {
			m := miss.Miss
			res.diag.Miss = &m
			return res
		}
		res.diag.Error = err.Error()
		return res
	}
	res.diag.RejectedCells = ext.Rejected
	res.diag.SkippedLines = ext.ContinuationLines

	for _, raw := range ext.Rows {
		row, ok := buildRow(raw, job, texts, domain.RowSourceTextLayer, &res.diag)
		if ok {
			res.rows = append(res.rows, row)
		}
	}
	return res
}

// processOCR recovers rows from recognizer text when the text layer gave no
// usable signal.
func (p *Pipeline) processOCR(ctx context.Context, job pageJob, res pageResult) pageResult {
	res.diag.UsedOCR = true
	text, err := p.recognizer.Recognize(ctx, port.RecognizeInput{
		Data:        job.input.Data,
		ContentType: job.input.ContentType,
		PageNumber:  job.number,
	})
	if err != nil {
		res.diag.Error = fmt.Sprintf("ocr: %v", err)
		return res
	}
	res.diag.OCRText = text

	texts := parser.OCRLines(text)
	res.lastOrderID = lastOrderID(texts, job.profile)
	raws := parser.ExtractOCRRows(text, job.profile)
	if len(raws) == 0 {
		res.diag.Miss = &domain.StructuralMiss{Reason: domain.MissNoHeader, Detail: "ocr text has no identifier rows"}
		return res
	}
	for _, raw := range raws {
		row, ok := buildRow(raw, job, texts, domain.RowSourceOCR, &res.diag)
		if ok {
			res.rows = append(res.rows, row)
		}
	}
	return res
}

// buildRow resolves quantity and page-local order id for one raw row. Rows
// whose primary identifier did not survive validation are dropped with a
// warning.
func buildRow(raw parser.RawRow, job pageJob, texts []string, source domain.RowSource, diag *domain.PageDiagnostic) (domain.ParsedRow, bool) {
	id := raw.Cells[domain.ColumnIdentifierPrimary]
	if id == "" {
		diag.Warnings = append(diag.Warnings, fmt.Sprintf("line %d dropped: no valid identifier", raw.LineIndex))
		return domain.ParsedRow{}, false
	}

	var rc quantity.RowContext
	if source == domain.RowSourceOCR {
		rc = quantity.RowContext{OCRText: raw.OCRText}
	} else {
		rc = quantity.RowContext{
			LabelText:  raw.Window,
			ColumnText: raw.Cells[domain.ColumnQuantity],
			HasColumn:  raw.HasQuantityColumn,
			Window:     raw.Window,
		}
	}
	q := quantity.Resolve(rc)

	return domain.ParsedRow{
		OrderID:               orderIDFor(raw, job.profile, texts),
		MarketplaceIdentifier: id,
		Description:           raw.Cells[domain.ColumnDescription],
		Quantity:              q.Value,
		QuantitySource:        q.Source,
		QuantityConfidence:    q.Confidence,
		RawLineText:           raw.RawLineText,
		PageNumber:            job.number,
		Source:                source,
	}, true
}

// orderIDFor takes the order id from the secondary column when the profile
// says so, then from the nearest line at or above the row, then from the
// first match anywhere on the page.
func orderIDFor(raw parser.RawRow, profile *parser.Profile, texts []string) string {
	if profile.OrderIDFromColumn {
		if v := raw.Cells[domain.ColumnIdentifierSecondary]; v != "" {
			return v
		}
	}
	for i := raw.LineIndex; i >= 0 && i < len(texts); i-- {
		if id := profile.FindOrderID(texts[i]); id != "" {
			return id
		}
	}
	for _, t := range texts {
		if id := profile.FindOrderID(t); id != "" {
			return id
		}
	}
	return ""
}

func lastOrderID(texts []string, profile *parser.Profile) string {
	for i := len(texts) - 1; i >= 0; i-- {
		if id := profile.FindOrderID(texts[i]); id != "" {
			return id
		}
	}
	return ""
}

func lineTexts(lines []domain.Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text()
	}
	return out
}

// hasIdentifierToken reports whether any token could be an identifier.
func hasIdentifierToken(tokens []domain.Token) bool {
	for _, t := range tokens {
		code := parser.AssembleCode([]string{t.Text})
		if parser.ValidIdentifier(code) && strings.IndexFunc(code, unicode.IsLetter) >= 0 {
			return true
		}
	}
	return false
}
