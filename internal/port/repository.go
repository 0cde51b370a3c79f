package port

import (
	"context"

	"github.com/google/uuid"

	"packslip/internal/domain"
)

// DocumentRepository defines the contract for shipment document persistence.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.ShipmentDocument) error
	GetByID(ctx context.Context, docID uuid.UUID) (*domain.ShipmentDocument, error)
	List(ctx context.Context, offset, limit int) ([]domain.ShipmentDocument, int, error)
	UpdateParseResult(ctx context.Context, doc *domain.ShipmentDocument) error
	// ClaimQueued atomically moves up to limit queued documents to processing
	// and returns them. Concurrent callers never receive the same document.
	ClaimQueued(ctx context.Context, limit int) ([]domain.ShipmentDocument, error)
	// ClaimByID moves one queued document to processing. It returns
	// domain.ErrDocumentBusy when the document is not queued.
	ClaimByID(ctx context.Context, docID uuid.UUID) (*domain.ShipmentDocument, error)
}

// CatalogRepository exposes exact-match lookups over canonical products and
// their marketplace aliases. Lookups never normalize their input.
type CatalogRepository interface {
	FindAlias(ctx context.Context, platform domain.Platform, alias string) (*domain.ProductAlias, error)
	GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error)
	ListProducts(ctx context.Context, offset, limit int) ([]domain.Product, int, error)
	CreateProduct(ctx context.Context, product *domain.Product) error
	CreateAlias(ctx context.Context, alias *domain.ProductAlias) error
}

// OrderQueueRepository defines the contract for order queue persistence.
type OrderQueueRepository interface {
	// InsertIfAbsent inserts the entry unless a non-archived entry with the
	// same dedup key exists. The check and insert are a single atomic step.
	InsertIfAbsent(ctx context.Context, entry *domain.OrderQueueEntry) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.OrderQueueEntry, error)
	List(ctx context.Context, filter domain.OrderQueueFilter, offset, limit int) ([]domain.OrderQueueEntry, int, error)
	// ListActive returns pending and listed entries. An empty platform means all.
	ListActive(ctx context.Context, platform domain.Platform) ([]domain.OrderQueueEntry, error)
	// TransitionStatus moves an entry from one status to the next only if it
	// is still in the expected status.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.WorkflowStatus) (*domain.OrderQueueEntry, error)
	ListUnresolved(ctx context.Context, platform domain.Platform, identifier string, limit int) ([]domain.OrderQueueEntry, error)
	// SetResolution fills in the canonical SKU of an entry that is still unresolved.
	SetResolution(ctx context.Context, id uuid.UUID, canonicalSKU string, productID uuid.UUID) (bool, error)
}

// StatsRepository computes aggregate counts. An empty platform means all.
type StatsRepository interface {
	GetStats(ctx context.Context, platform domain.Platform) (*domain.Stats, error)
}
