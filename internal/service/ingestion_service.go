package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"packslip/internal/domain"
	"packslip/internal/parser"
	"packslip/internal/port"
)

// IngestInput is one batch of parsed rows with their identifier resolutions.
// Resolutions[i] belongs to Rows[i].
type IngestInput struct {
	Platform    domain.Platform
	Rows        []domain.ParsedRow
	Resolutions []domain.Resolution
	FileRef     string
	DocumentID  *uuid.UUID
}

// IngestionService turns parsed rows into order queue entries.
type IngestionService interface {
	Ingest(ctx context.Context, input IngestInput) (*domain.IngestResult, error)
}

type ingestionService struct {
	queueRepo port.OrderQueueRepository
	profiles  *parser.Profiles
}

// NewIngestionService creates a new IngestionService implementation.
func NewIngestionService(queueRepo port.OrderQueueRepository, profiles *parser.Profiles) IngestionService {
	if profiles == nil {
		profiles = parser.DefaultProfiles()
	}
	return &ingestionService{queueRepo: queueRepo, profiles: profiles}
}

// Ingest inserts every row that is not already queued. Re-ingesting the same
// rows only increases DuplicatesSkipped. A dedup key repeated inside the
// batch is counted once in RepeatedInBatch per extra occurrence and never
// reaches the store. The batch is validated up front so a bad row never
// leaves a partial insert behind; a store error midway leaves the rows
// before it, which a retry skips as duplicates.
func (s *ingestionService) Ingest(ctx context.Context, input IngestInput) (*domain.IngestResult, error) {
	if len(input.Rows) != len(input.Resolutions) {
		return nil, fmt.Errorf("ingestionService.Ingest: %d rows but %d resolutions", len(input.Rows), len(input.Resolutions))
	}
	for i := range input.Rows {
		row := &input.Rows[i]
		if row.MarketplaceIdentifier == "" || row.OrderID == "" {
			return nil, fmt.Errorf("ingestionService.Ingest: row %d: %w", i, domain.ErrInvalidIdentifier)
		}
		if row.Quantity <= 0 || row.Quantity > domain.MaxQuantity {
			return nil, fmt.Errorf("ingestionService.Ingest: row %d: quantity %d out of range 1..%d", i, row.Quantity, domain.MaxQuantity)
		}
	}

	displayFallback := false
	if p, err := s.profiles.Get(input.Platform); err == nil {
		displayFallback = p.DisplaySKUFallback
	}

	result := &domain.IngestResult{}
	seen := make(map[domain.DedupKey]bool, len(input.Rows))
	for i := range input.Rows {
		entry := s.buildEntry(&input, i, displayFallback)
		if seen[entry.Key()] {
			result.RepeatedInBatch++
			continue
		}
		seen[entry.Key()] = true
		inserted, err := s.queueRepo.InsertIfAbsent(ctx, entry)
		if err != nil {
			return result, fmt.Errorf("ingestionService.Ingest: inserting order %s/%s: %w",
				entry.OrderID, entry.MarketplaceIdentifier, err)
		}
		if !inserted {
			result.DuplicatesSkipped++
			continue
		}
		result.Inserted++
		if entry.IsUnresolved() {
			result.UnresolvedCount++
		}
	}

	log.Printf("ingestionService.Ingest: %s from %s: inserted=%d duplicates=%d repeated=%d unresolved=%d",
		input.Platform, input.FileRef, result.Inserted, result.DuplicatesSkipped, result.RepeatedInBatch, result.UnresolvedCount)
	return result, nil
}

func (s *ingestionService) buildEntry(input *IngestInput, i int, displayFallback bool) *domain.OrderQueueEntry {
	row := input.Rows[i]
	res := input.Resolutions[i]

	entry := &domain.OrderQueueEntry{
		ID:                    uuid.New(),
		Platform:              input.Platform,
		OrderID:               row.OrderID,
		MarketplaceIdentifier: row.MarketplaceIdentifier,
		Description:           row.Description,
		Quantity:              row.Quantity,
		QuantitySource:        row.QuantitySource,
		QuantityConfidence:    row.QuantityConfidence,
		WorkflowStatus:        domain.WorkflowPending,
		DocumentID:            input.DocumentID,
		SourceFileRef:         input.FileRef,
		PageNumber:            row.PageNumber,
	}
	if res.IsResolved() {
		sku := res.CanonicalSKU
		pid := res.ProductID
		entry.CanonicalSKU = &sku
		entry.ProductID = &pid
		entry.DisplaySKU = sku
	} else if displayFallback {
		entry.DisplaySKU = row.MarketplaceIdentifier
	}
	return entry
}
