package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MaxQuantity is the largest quantity believed for one order line. Larger
// numbers in a quantity position are pincodes, phone numbers or amounts.
const MaxQuantity = 9999

// Quantity is a resolved line quantity with its provenance.
type Quantity struct {
	Value      int            `json:"value"`
	Source     QuantitySource `json:"source"`
	Confidence Confidence     `json:"confidence"`
}

// ParsedRow is one detected data row of a shipment document.
type ParsedRow struct {
	OrderID               string         `json:"order_id"`
	MarketplaceIdentifier string         `json:"marketplace_identifier"`
	Description           string         `json:"description"`
	Quantity              int            `json:"quantity"`
	QuantitySource        QuantitySource `json:"quantity_source"`
	QuantityConfidence    Confidence     `json:"quantity_confidence"`
	RawLineText           string         `json:"raw_line_text"`
	PageNumber            int            `json:"page_number"`
	Source                RowSource      `json:"source"`
}

// Resolution is the outcome of strict identifier lookup. A resolved value
// always comes from an exact string match in the alias or product tables.
type Resolution struct {
	Status       ResolutionStatus `json:"status"`
	CanonicalSKU string           `json:"canonical_sku,omitempty"`
	ProductID    uuid.UUID        `json:"product_id,omitempty"`
	MatchedBy    MatchSource      `json:"matched_by,omitempty"`
}

// Resolved builds a resolved outcome.
func Resolved(canonicalSKU string, productID uuid.UUID, matchedBy MatchSource) Resolution {
	return Resolution{
		Status:       ResolutionResolved,
		CanonicalSKU: canonicalSKU,
		ProductID:    productID,
		MatchedBy:    matchedBy,
	}
}

// Unresolved builds an unresolved outcome.
func Unresolved() Resolution {
	return Resolution{Status: ResolutionUnresolved}
}

// IsResolved reports whether the lookup matched.
func (r Resolution) IsResolved() bool {
	return r.Status == ResolutionResolved
}

// Product is a canonical catalog product.
type Product struct {
	ID        uuid.UUID `db:"id" json:"id"`
	SKU       string    `db:"sku" json:"sku"`
	Barcode   *string   `db:"barcode" json:"barcode"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ProductAlias maps a marketplace-specific identifier to a canonical product.
type ProductAlias struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Platform   Platform  `db:"platform" json:"platform"`
	AliasValue string    `db:"alias_value" json:"alias_value"`
	ProductID  uuid.UUID `db:"product_id" json:"product_id"`
	ProductSKU string    `db:"product_sku" json:"product_sku"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// OrderQueueEntry is one ingested order line awaiting fulfilment.
type OrderQueueEntry struct {
	ID                    uuid.UUID      `db:"id" json:"id"`
	Platform              Platform       `db:"platform" json:"platform"`
	OrderID               string         `db:"order_id" json:"order_id"`
	MarketplaceIdentifier string         `db:"marketplace_identifier" json:"marketplace_identifier"`
	CanonicalSKU          *string        `db:"canonical_sku" json:"canonical_sku"`
	ProductID             *uuid.UUID     `db:"product_id" json:"product_id"`
	DisplaySKU            string         `db:"display_sku" json:"display_sku"`
	Description           string         `db:"description" json:"description"`
	Quantity              int            `db:"quantity" json:"quantity"`
	QuantitySource        QuantitySource `db:"quantity_source" json:"quantity_source"`
	QuantityConfidence    Confidence     `db:"quantity_confidence" json:"quantity_confidence"`
	WorkflowStatus        WorkflowStatus `db:"workflow_status" json:"workflow_status"`
	DocumentID            *uuid.UUID     `db:"document_id" json:"document_id"`
	SourceFileRef         string         `db:"source_file_ref" json:"source_file_ref"`
	PageNumber            int            `db:"page_number" json:"page_number"`
	CreatedAt             time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at" json:"updated_at"`
}

// DedupKey identifies a logically unique order line.
type DedupKey struct {
	OrderID               string
	MarketplaceIdentifier string
	Platform              Platform
}

// Key returns the entry's dedup key.
func (e *OrderQueueEntry) Key() DedupKey {
	return DedupKey{
		OrderID:               e.OrderID,
		MarketplaceIdentifier: e.MarketplaceIdentifier,
		Platform:              e.Platform,
	}
}

// IsUnresolved reports whether the entry still needs manual mapping.
func (e *OrderQueueEntry) IsUnresolved() bool {
	return e.CanonicalSKU == nil
}

// OrderQueueFilter narrows order queue listings.
type OrderQueueFilter struct {
	Platform       Platform
	Status         WorkflowStatus
	UnresolvedOnly bool
	DocumentID     *uuid.UUID
}

// PickListAggregate is a quantity bucket of the pick list.
type PickListAggregate struct {
	BucketKey            string   `json:"bucket_key"`
	CanonicalSKU         *string  `json:"canonical_sku"`
	DisplaySKU           string   `json:"display_sku"`
	Description          string   `json:"description"`
	TotalQuantity        int      `json:"total_quantity"`
	ContributingOrderIDs []string `json:"contributing_order_ids"`
	Platform             Platform `json:"platform"`
}

// IngestResult summarises one ingestion call. RepeatedInBatch counts rows
// whose dedup key already appeared earlier in the same call; they are not
// DuplicatesSkipped.
type IngestResult struct {
	Inserted          int `json:"inserted"`
	DuplicatesSkipped int `json:"duplicates_skipped"`
	RepeatedInBatch   int `json:"repeated_in_batch"`
	UnresolvedCount   int `json:"unresolved_count"`
}

// ShipmentDocument is an uploaded marketplace document and its parse state.
type ShipmentDocument struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	Platform          Platform        `db:"platform" json:"platform"`
	OriginalName      string          `db:"original_name" json:"original_name"`
	FileType          FileType        `db:"file_type" json:"file_type"`
	FileSize          int64           `db:"file_size" json:"file_size"`
	ContentType       string          `db:"content_type" json:"content_type"`
	S3Bucket          string          `db:"s3_bucket" json:"s3_bucket"`
	S3Key             string          `db:"s3_key" json:"s3_key"`
	ParseStatus       ParseStatus     `db:"parse_status" json:"parse_status"`
	ParseAttempts     int             `db:"parse_attempts" json:"parse_attempts"`
	ParseError        string          `db:"parse_error" json:"parse_error"`
	RowsExtracted     int             `db:"rows_extracted" json:"rows_extracted"`
	Inserted          int             `db:"inserted" json:"inserted"`
	DuplicatesSkipped int             `db:"duplicates_skipped" json:"duplicates_skipped"`
	UnresolvedCount   int             `db:"unresolved_count" json:"unresolved_count"`
	Diagnostics       json.RawMessage `db:"diagnostics" json:"-"`
	ParsedAt          *time.Time      `db:"parsed_at" json:"parsed_at"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// FileRef is the reference stored on queue entries created from this document.
func (d *ShipmentDocument) FileRef() string {
	return "s3://" + d.S3Bucket + "/" + d.S3Key
}

// MappingSession carries "apply this mapping to the next N entries" state
// between calls. It is a value: Apply returns the next state.
type MappingSession struct {
	Platform              Platform  `json:"platform"`
	MarketplaceIdentifier string    `json:"marketplace_identifier"`
	CanonicalSKU          string    `json:"canonical_sku"`
	ProductID             uuid.UUID `json:"product_id"`
	Remaining             int       `json:"remaining"`
}

// Applies reports whether the session should map the given entry.
func (s MappingSession) Applies(e *OrderQueueEntry) bool {
	return s.Remaining > 0 &&
		e.Platform == s.Platform &&
		e.MarketplaceIdentifier == s.MarketplaceIdentifier &&
		e.IsUnresolved()
}

// Apply consumes one use of the session.
func (s MappingSession) Apply() MappingSession {
	if s.Remaining > 0 {
		s.Remaining--
	}
	return s
}

// Stats holds aggregate counts for documents and the order queue.
// OrdersUnresolved and ActiveQuantity cover pending and listed entries only.
type Stats struct {
	TotalDocuments    int `db:"total_documents" json:"total_documents"`
	ParsingQueued     int `db:"parsing_queued" json:"parsing_queued"`
	ParsingProcessing int `db:"parsing_processing" json:"parsing_processing"`
	ParsingCompleted  int `db:"parsing_completed" json:"parsing_completed"`
	ParsingFailed     int `db:"parsing_failed" json:"parsing_failed"`
	OrdersPending     int `db:"orders_pending" json:"orders_pending"`
	OrdersListed      int `db:"orders_listed" json:"orders_listed"`
	OrdersArchived    int `db:"orders_archived" json:"orders_archived"`
	OrdersUnresolved  int `db:"orders_unresolved" json:"orders_unresolved"`
	ActiveQuantity    int `db:"active_quantity" json:"active_quantity"`
}
