// Package pipeline turns document bytes into parsed rows and a per-page
// diagnostic export. Pages are processed in parallel and reassembled in
// page order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"

	"golang.org/x/sync/errgroup"

	"packslip/internal/domain"
	"packslip/internal/layout"
	"packslip/internal/parser"
	"packslip/internal/port"
)

// Config holds the geometric tuning constants of a parse.
type Config struct {
	// PageWorkers bounds page parallelism. Zero means runtime.NumCPU().
	PageWorkers int
	YTolerance  float64
	EdgeMargin  float64
	Tolerances  parser.Tolerances
}

// DefaultConfig returns the built-in tuning.
func DefaultConfig() Config {
	return Config{
		PageWorkers: runtime.NumCPU(),
		YTolerance:  layout.DefaultYTolerance,
		EdgeMargin:  layout.DefaultEdgeMargin,
		Tolerances:  parser.DefaultTolerances(),
	}
}

// Pipeline parses shipment documents. It holds no per-document state and is
// safe for concurrent use.
type Pipeline struct {
	textLayer  port.TextLayer
	recognizer port.Recognizer
	profiles   *parser.Profiles
	cfg        Config
}

// New creates a Pipeline. recognizer may be nil, in which case OCR is never
// attempted.
func New(textLayer port.TextLayer, recognizer port.Recognizer, profiles *parser.Profiles, cfg Config) *Pipeline {
	if cfg.PageWorkers <= 0 {
		cfg.PageWorkers = runtime.NumCPU()
	}
	if profiles == nil {
		profiles = parser.DefaultProfiles()
	}
	return &Pipeline{
		textLayer:  textLayer,
		recognizer: recognizer,
		profiles:   profiles,
		cfg:        cfg,
	}
}

// Profiles returns the registry the pipeline parses with.
func (p *Pipeline) Profiles() *parser.Profiles {
	return p.profiles
}

// ParseInput is one document to parse.
type ParseInput struct {
	Data        []byte
	ContentType string
	// Platform selects the profile. Empty means detect from the first page.
	Platform domain.Platform
	// FileRef identifies the document in diagnostics and fallback order ids.
	FileRef string
}

// ParseResult is the outcome of a parse. Rows are in page order.
type ParseResult struct {
	Profile    *parser.Profile
	Rows       []domain.ParsedRow
	Diagnostic *domain.DocumentDiagnostic
}

// Parse extracts every row of a document. Page failures are isolated into the
// diagnostic; only unreadable documents, unknown platforms and cancellation
// are returned as errors.
func (p *Pipeline) Parse(ctx context.Context, in ParseInput) (*ParseResult, error) {
	doc, numPages, err := p.open(in)
	if err != nil {
		return nil, err
	}

	profile, err := p.resolveProfile(ctx, doc, in)
	if err != nil {
		return nil, err
	}
	strategy, err := parser.ForFormat(profile.Format)
	if err != nil {
		return nil, err
	}

	results := make([]pageResult, numPages)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.PageWorkers)
	for i := 0; i < numPages; i++ {
		job := pageJob{
			number:   i + 1,
			doc:      doc,
			input:    in,
			profile:  profile,
			strategy: strategy,
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[job.number-1] = p.processPage(gctx, job)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	diag := &domain.DocumentDiagnostic{
		FileRef:  in.FileRef,
		Platform: profile.Platform,
		Format:   string(profile.Format),
		Pages:    make([]domain.PageDiagnostic, 0, numPages),
	}
	assignOrderIDs(results, in.FileRef)
	var rows []domain.ParsedRow
	for i := range results {
		r := &results[i]
		r.diag.Rows = r.rows
		if r.diag.Rows == nil {
			r.diag.Rows = []domain.ParsedRow{}
		}
		if r.diag.Error != "" {
			diag.Errors = append(diag.Errors, fmt.Sprintf("page %d: %s", r.diag.PageNumber, r.diag.Error))
		}
		diag.Pages = append(diag.Pages, r.diag)
		rows = append(rows, r.rows...)
	}

	log.Printf("pipeline.Parse: %s platform=%s pages=%d rows=%d page_errors=%d",
		in.FileRef, profile.Platform, numPages, len(rows), len(diag.Errors))
	return &ParseResult{Profile: profile, Rows: rows, Diagnostic: diag}, nil
}

// open reads the document's page count. Panics from the text layer are
// reported as an unreadable document.
func (p *Pipeline) open(in ParseInput) (doc port.TextDocument, numPages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("pipeline.open: panic on %s: %v", in.FileRef, r)
			doc, numPages = nil, 0
			err = fmt.Errorf("%w: panic: %v", domain.ErrUnreadableDocument, r)
		}
	}()

	doc, err = p.textLayer.Open(in.Data, in.ContentType)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrUnreadableDocument, err)
	}
	numPages = doc.NumPages()
	if numPages == 0 {
		return nil, 0, fmt.Errorf("%w: document has no pages", domain.ErrUnreadableDocument)
	}
	return doc, numPages, nil
}

// resolveProfile returns the requested profile, or detects one from the
// first page's text. OCR text is tried when the text layer yields nothing.
// A panic while reading page 1 makes the document unreadable.
func (p *Pipeline) resolveProfile(ctx context.Context, doc port.TextDocument, in ParseInput) (prof *parser.Profile, err error) {
	if in.Platform != "" {
		return p.profiles.Get(in.Platform)
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("pipeline.resolveProfile: panic on %s page 1: %v", in.FileRef, r)
			prof = nil
			err = fmt.Errorf("%w: page 1: panic: %v", domain.ErrUnreadableDocument, r)
		}
	}()

	raw, _, err := doc.Page(1)
	if err == nil {
		if prof, ok := p.profiles.Detect(raw); ok {
			return prof, nil
		}
	}
	if p.recognizer != nil {
		text, ocrErr := p.recognizer.Recognize(ctx, port.RecognizeInput{Data: in.Data, ContentType: in.ContentType, PageNumber: 1})
		if ocrErr == nil {
			if prof, ok := p.profiles.Detect(text); ok {
				return prof, nil
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: page 1: %v", domain.ErrUnreadableDocument, err)
	}
	return nil, fmt.Errorf("%w: no profile keyword found on page 1", domain.ErrUnknownPlatform)
}

// assignOrderIDs fills order ids the page itself could not supply. The last
// order id seen on earlier pages carries forward; with none, rows fall back
// to the document reference.
func assignOrderIDs(results []pageResult, fileRef string) {
	carry := ""
	for i := range results {
		r := &results[i]
		fallback := 0
		for j := range r.rows {
			if r.rows[j].OrderID != "" {
				continue
			}
			if carry != "" {
				r.rows[j].OrderID = carry
				continue
			}
			r.rows[j].OrderID = "doc:" + fileRef
			fallback++
		}
		if fallback > 0 {
			r.diag.Warnings = append(r.diag.Warnings,
				fmt.Sprintf("%d rows have no order id; using document reference", fallback))
		}
		if r.lastOrderID != "" {
			carry = r.lastOrderID
		}
	}
}

// IsPermanent reports whether a parse error will fail again on retry.
func IsPermanent(err error) bool {
	return errors.Is(err, domain.ErrUnreadableDocument) || errors.Is(err, domain.ErrUnknownPlatform)
}
