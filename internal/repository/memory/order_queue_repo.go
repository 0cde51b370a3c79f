// Package memory holds in-process repositories for tests and local tools.
// They honour the same atomicity contracts as the PostgreSQL ones.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"packslip/internal/domain"
	"packslip/internal/port"
)

// OrderQueueRepo is an in-memory port.OrderQueueRepository.
type OrderQueueRepo struct {
	mu      sync.Mutex
	entries []*domain.OrderQueueEntry
	// active indexes non-archived entries by dedup key.
	active map[domain.DedupKey]*domain.OrderQueueEntry
}

// NewOrderQueueRepo creates an empty OrderQueueRepo.
func NewOrderQueueRepo() *OrderQueueRepo {
	return &OrderQueueRepo{active: make(map[domain.DedupKey]*domain.OrderQueueEntry)}
}

var _ port.OrderQueueRepository = (*OrderQueueRepo)(nil)

func (r *OrderQueueRepo) InsertIfAbsent(_ context.Context, e *domain.OrderQueueEntry) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := e.Key()
	if _, exists := r.active[key]; exists {
		return false, nil
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.WorkflowStatus == "" {
		e.WorkflowStatus = domain.WorkflowPending
	}
	stored := *e
	r.entries = append(r.entries, &stored)
	if stored.WorkflowStatus.IsActive() {
		r.active[key] = &stored
	}
	return true, nil
}

func (r *OrderQueueRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.OrderQueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.find(id)
	if e == nil {
		return nil, domain.ErrOrderEntryNotFound
	}
	out := *e
	return &out, nil
}

func (r *OrderQueueRepo) List(_ context.Context, f domain.OrderQueueFilter, offset, limit int) ([]domain.OrderQueueEntry, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []domain.OrderQueueEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if f.Platform != "" && e.Platform != f.Platform {
			continue
		}
		if f.Status != "" && e.WorkflowStatus != f.Status {
			continue
		}
		if f.DocumentID != nil && (e.DocumentID == nil || *e.DocumentID != *f.DocumentID) {
			continue
		}
		if f.UnresolvedOnly && !e.IsUnresolved() {
			continue
		}
		matched = append(matched, *e)
	}
	return page(matched, offset, limit), len(matched), nil
}

func (r *OrderQueueRepo) ListActive(_ context.Context, platform domain.Platform) ([]domain.OrderQueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.OrderQueueEntry
	for _, e := range r.entries {
		if e.WorkflowStatus.IsActive() && (platform == "" || e.Platform == platform) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *OrderQueueRepo) TransitionStatus(_ context.Context, id uuid.UUID, from, to domain.WorkflowStatus) (*domain.OrderQueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.find(id)
	if e == nil {
		return nil, domain.ErrOrderEntryNotFound
	}
	if e.WorkflowStatus != from {
		return nil, domain.ErrInvalidTransition
	}
	e.WorkflowStatus = to
	e.UpdatedAt = time.Now().UTC()
	if !to.IsActive() {
		delete(r.active, e.Key())
	}
	out := *e
	return &out, nil
}

func (r *OrderQueueRepo) ListUnresolved(_ context.Context, platform domain.Platform, identifier string, limit int) ([]domain.OrderQueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.OrderQueueEntry
	for _, e := range r.entries {
		if len(out) >= limit {
			break
		}
		if e.IsUnresolved() && e.WorkflowStatus.IsActive() &&
			e.Platform == platform && e.MarketplaceIdentifier == identifier {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *OrderQueueRepo) SetResolution(_ context.Context, id uuid.UUID, canonicalSKU string, productID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.find(id)
	if e == nil || !e.IsUnresolved() {
		return false, nil
	}
	sku := canonicalSKU
	pid := productID
	e.CanonicalSKU = &sku
	e.ProductID = &pid
	e.DisplaySKU = sku
	e.UpdatedAt = time.Now().UTC()
	return true, nil
}

// Len returns the number of stored entries, archived included.
func (r *OrderQueueRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *OrderQueueRepo) find(id uuid.UUID) *domain.OrderQueueEntry {
	for _, e := range r.entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

// sortByCreated orders documents newest first.
func sortByCreated(docs []domain.ShipmentDocument) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
}
