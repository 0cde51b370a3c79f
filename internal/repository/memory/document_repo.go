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

// DocumentRepo is an in-memory port.DocumentRepository.
type DocumentRepo struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*domain.ShipmentDocument
}

// NewDocumentRepo creates an empty DocumentRepo.
func NewDocumentRepo() *DocumentRepo {
	return &DocumentRepo{docs: make(map[uuid.UUID]*domain.ShipmentDocument)}
}

var _ port.DocumentRepository = (*DocumentRepo)(nil)

func (r *DocumentRepo) Create(_ context.Context, doc *domain.ShipmentDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	stored := *doc
	r.docs[doc.ID] = &stored
	return nil
}

func (r *DocumentRepo) GetByID(_ context.Context, docID uuid.UUID) (*domain.ShipmentDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[docID]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	out := *d
	return &out, nil
}

func (r *DocumentRepo) List(_ context.Context, offset, limit int) ([]domain.ShipmentDocument, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]domain.ShipmentDocument, 0, len(r.docs))
	for _, d := range r.docs {
		all = append(all, *d)
	}
	sortByCreated(all)
	return page(all, offset, limit), len(all), nil
}

func (r *DocumentRepo) UpdateParseResult(_ context.Context, doc *domain.ShipmentDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[doc.ID]; !ok {
		return domain.ErrDocumentNotFound
	}
	doc.UpdatedAt = time.Now().UTC()
	stored := *doc
	r.docs[doc.ID] = &stored
	return nil
}

func (r *DocumentRepo) ClaimQueued(_ context.Context, limit int) ([]domain.ShipmentDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var queued []*domain.ShipmentDocument
	for _, d := range r.docs {
		if d.ParseStatus == domain.ParseStatusQueued {
			queued = append(queued, d)
		}
	}
	sort.SliceStable(queued, func(i, j int) bool { return queued[i].CreatedAt.Before(queued[j].CreatedAt) })
	if len(queued) > limit {
		queued = queued[:limit]
	}
	out := make([]domain.ShipmentDocument, 0, len(queued))
	for _, d := range queued {
		d.ParseStatus = domain.ParseStatusProcessing
		d.UpdatedAt = time.Now().UTC()
		out = append(out, *d)
	}
	return out, nil
}

func (r *DocumentRepo) ClaimByID(_ context.Context, docID uuid.UUID) (*domain.ShipmentDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[docID]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	if d.ParseStatus != domain.ParseStatusQueued {
		return nil, domain.ErrDocumentBusy
	}
	d.ParseStatus = domain.ParseStatusProcessing
	d.UpdatedAt = time.Now().UTC()
	out := *d
	return &out, nil
}
