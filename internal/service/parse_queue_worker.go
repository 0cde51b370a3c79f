package service

import (
	"context"
	"log"
	"sync"
	"time"

	"packslip/internal/port"
)

// ParseQueueConfig holds settings for the parse queue worker.
type ParseQueueConfig struct {
	PollInterval time.Duration
	MaxRetries   int
	Concurrency  int
}

// ParseQueueWorker polls for queued documents and parses a bounded number of
// them at once.
type ParseQueueWorker struct {
	docRepo    port.DocumentRepository
	docService DocumentService
	cfg        ParseQueueConfig
	wg         sync.WaitGroup
}

// NewParseQueueWorker creates a new ParseQueueWorker.
func NewParseQueueWorker(docRepo port.DocumentRepository, docService DocumentService, cfg ParseQueueConfig) *ParseQueueWorker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &ParseQueueWorker{
		docRepo:    docRepo,
		docService: docService,
		cfg:        cfg,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight parse goroutines have finished.
func (w *ParseQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("parseQueueWorker: started (poll=%s, concurrency=%d, maxRetries=%d)",
		w.cfg.PollInterval, w.cfg.Concurrency, w.cfg.MaxRetries)

	for {
		select {
		case <-ctx.Done():
			log.Printf("parseQueueWorker: shutting down, waiting for in-flight parses...")
			w.wg.Wait()
			log.Printf("parseQueueWorker: shutdown complete")
			return
		case <-ticker.C:
			w.poll(ctx, sem)
		}
	}
}

func (w *ParseQueueWorker) poll(ctx context.Context, sem chan struct{}) {
	available := w.cfg.Concurrency - len(sem)
	if available <= 0 {
		return
	}

	docs, err := w.docRepo.ClaimQueued(ctx, available)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("parseQueueWorker: ClaimQueued error: %v", err)
		}
		return
	}

	for i := range docs {
		doc := docs[i]
		doc.ParseAttempts++

		sem <- struct{}{}
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			defer func() { <-sem }()

			// In-flight parses finish even when the poll context is canceled.
			parseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			log.Printf("parseQueueWorker: dispatching document %s (attempt %d)", doc.ID, doc.ParseAttempts)
			w.docService.ParseDocument(parseCtx, &doc, w.cfg.MaxRetries)
		}()
	}
}
