package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"packslip/internal/domain"
	"packslip/internal/port"
)

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *domain.ShipmentDocument) error {
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if len(doc.Diagnostics) == 0 {
		doc.Diagnostics = json.RawMessage("{}")
	}

	query := `INSERT INTO shipment_documents (
		id, platform, original_name, file_type, file_size, content_type,
		s3_bucket, s3_key, parse_status, parse_attempts, parse_error,
		rows_extracted, inserted, duplicates_skipped, unresolved_count,
		diagnostics, parsed_at, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9, $10, $11,
		$12, $13, $14, $15,
		$16, $17, $18, $19
	)`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.Platform, doc.OriginalName, doc.FileType, doc.FileSize, doc.ContentType,
		doc.S3Bucket, doc.S3Key, doc.ParseStatus, doc.ParseAttempts, doc.ParseError,
		doc.RowsExtracted, doc.Inserted, doc.DuplicatesSkipped, doc.UnresolvedCount,
		doc.Diagnostics, doc.ParsedAt, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("documentRepo.Create: %w", err)
	}
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, docID uuid.UUID) (*domain.ShipmentDocument, error) {
	var doc domain.ShipmentDocument
	err := r.db.GetContext(ctx, &doc, "SELECT * FROM shipment_documents WHERE id = $1", docID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) List(ctx context.Context, offset, limit int) ([]domain.ShipmentDocument, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM shipment_documents"); err != nil {
		return nil, 0, fmt.Errorf("documentRepo.List count: %w", err)
	}

	var docs []domain.ShipmentDocument
	err := r.db.SelectContext(ctx, &docs,
		`SELECT * FROM shipment_documents ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.List: %w", err)
	}
	return docs, total, nil
}

func (r *documentRepo) UpdateParseResult(ctx context.Context, doc *domain.ShipmentDocument) error {
	doc.UpdatedAt = time.Now().UTC()
	if len(doc.Diagnostics) == 0 {
		doc.Diagnostics = json.RawMessage("{}")
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE shipment_documents SET
			platform = $1, parse_status = $2, parse_attempts = $3, parse_error = $4,
			rows_extracted = $5, inserted = $6, duplicates_skipped = $7, unresolved_count = $8,
			diagnostics = $9, parsed_at = $10, updated_at = $11
		 WHERE id = $12`,
		doc.Platform, doc.ParseStatus, doc.ParseAttempts, doc.ParseError,
		doc.RowsExtracted, doc.Inserted, doc.DuplicatesSkipped, doc.UnresolvedCount,
		doc.Diagnostics, doc.ParsedAt, doc.UpdatedAt,
		doc.ID)
	if err != nil {
		return fmt.Errorf("documentRepo.UpdateParseResult: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("documentRepo.UpdateParseResult: rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// ClaimQueued uses FOR UPDATE SKIP LOCKED so that concurrent workers never
// claim the same document.
func (r *documentRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.ShipmentDocument, error) {
	var docs []domain.ShipmentDocument
	err := r.db.SelectContext(ctx, &docs,
		`UPDATE shipment_documents SET parse_status = $1, updated_at = NOW()
		 WHERE id IN (
			SELECT id FROM shipment_documents
			WHERE parse_status = $2
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING *`,
		domain.ParseStatusProcessing, domain.ParseStatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.ClaimQueued: %w", err)
	}
	return docs, nil
}

func (r *documentRepo) ClaimByID(ctx context.Context, docID uuid.UUID) (*domain.ShipmentDocument, error) {
	var doc domain.ShipmentDocument
	err := r.db.GetContext(ctx, &doc,
		`UPDATE shipment_documents SET parse_status = $1, updated_at = NOW()
		 WHERE id = $2 AND parse_status = $3
		 RETURNING *`,
		domain.ParseStatusProcessing, docID, domain.ParseStatusQueued)
	if err == nil {
		return &doc, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("documentRepo.ClaimByID: %w", err)
	}
	if _, getErr := r.GetByID(ctx, docID); getErr != nil {
		return nil, getErr
	}
	return nil, domain.ErrDocumentBusy
}
