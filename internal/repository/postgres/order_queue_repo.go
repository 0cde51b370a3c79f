package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"packslip/internal/domain"
	"packslip/internal/port"
)

type orderQueueRepo struct {
	db *sqlx.DB
}

// NewOrderQueueRepo creates a new PostgreSQL-backed OrderQueueRepository.
func NewOrderQueueRepo(db *sqlx.DB) port.OrderQueueRepository {
	return &orderQueueRepo{db: db}
}

// InsertIfAbsent relies on the partial unique index over non-archived dedup
// keys, so the duplicate check and the insert are one statement.
func (r *orderQueueRepo) InsertIfAbsent(ctx context.Context, e *domain.OrderQueueEntry) (bool, error) {
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	if e.WorkflowStatus == "" {
		e.WorkflowStatus = domain.WorkflowPending
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO order_queue_entries (
			id, platform, order_id, marketplace_identifier, canonical_sku, product_id,
			display_sku, description, quantity, quantity_source, quantity_confidence,
			workflow_status, document_id, source_file_ref, page_number, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17
		)
		ON CONFLICT (order_id, marketplace_identifier, platform) WHERE workflow_status <> 'archived'
		DO NOTHING`,
		e.ID, e.Platform, e.OrderID, e.MarketplaceIdentifier, e.CanonicalSKU, e.ProductID,
		e.DisplaySKU, e.Description, e.Quantity, e.QuantitySource, e.QuantityConfidence,
		e.WorkflowStatus, e.DocumentID, e.SourceFileRef, e.PageNumber, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("orderQueueRepo.InsertIfAbsent: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("orderQueueRepo.InsertIfAbsent: rows affected: %w", err)
	}
	return rows == 1, nil
}

func (r *orderQueueRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.OrderQueueEntry, error) {
	var e domain.OrderQueueEntry
	err := r.db.GetContext(ctx, &e, "SELECT * FROM order_queue_entries WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderEntryNotFound
		}
		return nil, fmt.Errorf("orderQueueRepo.GetByID: %w", err)
	}
	return &e, nil
}

func (r *orderQueueRepo) List(ctx context.Context, filter domain.OrderQueueFilter, offset, limit int) ([]domain.OrderQueueEntry, int, error) {
	var conds []string
	var args []interface{}
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Platform != "" {
		add("platform = $%d", filter.Platform)
	}
	if filter.Status != "" {
		add("workflow_status = $%d", filter.Status)
	}
	if filter.DocumentID != nil {
		add("document_id = $%d", *filter.DocumentID)
	}
	if filter.UnresolvedOnly {
		conds = append(conds, "canonical_sku IS NULL")
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM order_queue_entries"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("orderQueueRepo.List count: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf("SELECT * FROM order_queue_entries%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args))
	var entries []domain.OrderQueueEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("orderQueueRepo.List: %w", err)
	}
	return entries, total, nil
}

func (r *orderQueueRepo) ListActive(ctx context.Context, platform domain.Platform) ([]domain.OrderQueueEntry, error) {
	query := `SELECT * FROM order_queue_entries WHERE workflow_status IN ('pending', 'listed')`
	var args []interface{}
	if platform != "" {
		query += " AND platform = $1"
		args = append(args, platform)
	}
	query += " ORDER BY created_at, id"

	var entries []domain.OrderQueueEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("orderQueueRepo.ListActive: %w", err)
	}
	return entries, nil
}

func (r *orderQueueRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.WorkflowStatus) (*domain.OrderQueueEntry, error) {
	var e domain.OrderQueueEntry
	err := r.db.GetContext(ctx, &e,
		`UPDATE order_queue_entries SET workflow_status = $1, updated_at = $2
		 WHERE id = $3 AND workflow_status = $4
		 RETURNING *`,
		to, time.Now().UTC(), id, from)
	if err == nil {
		return &e, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("orderQueueRepo.TransitionStatus: %w", err)
	}
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, domain.ErrInvalidTransition
}

func (r *orderQueueRepo) ListUnresolved(ctx context.Context, platform domain.Platform, identifier string, limit int) ([]domain.OrderQueueEntry, error) {
	var entries []domain.OrderQueueEntry
	err := r.db.SelectContext(ctx, &entries,
		`SELECT * FROM order_queue_entries
		 WHERE canonical_sku IS NULL AND workflow_status <> 'archived'
		   AND platform = $1 AND marketplace_identifier = $2
		 ORDER BY created_at, id
		 LIMIT $3`,
		platform, identifier, limit)
	if err != nil {
		return nil, fmt.Errorf("orderQueueRepo.ListUnresolved: %w", err)
	}
	return entries, nil
}

func (r *orderQueueRepo) SetResolution(ctx context.Context, id uuid.UUID, canonicalSKU string, productID uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE order_queue_entries
		 SET canonical_sku = $1, product_id = $2, display_sku = $1, updated_at = $3
		 WHERE id = $4 AND canonical_sku IS NULL`,
		canonicalSKU, productID, time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("orderQueueRepo.SetResolution: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("orderQueueRepo.SetResolution: rows affected: %w", err)
	}
	return rows == 1, nil
}
