package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"packslip/internal/domain"
	"packslip/internal/port"
)

type statsRepo struct {
	db *sqlx.DB
}

// NewStatsRepo creates a new PostgreSQL-backed StatsRepository.
func NewStatsRepo(db *sqlx.DB) port.StatsRepository {
	return &statsRepo{db: db}
}

const docStatsQuery = `SELECT
	COUNT(*) AS total_documents,
	COUNT(CASE WHEN parse_status = 'queued' THEN 1 END) AS parsing_queued,
	COUNT(CASE WHEN parse_status = 'processing' THEN 1 END) AS parsing_processing,
	COUNT(CASE WHEN parse_status = 'completed' THEN 1 END) AS parsing_completed,
	COUNT(CASE WHEN parse_status = 'failed' THEN 1 END) AS parsing_failed
FROM shipment_documents WHERE ($1 = '' OR platform = $1)`

const orderStatsQuery = `SELECT
	COUNT(CASE WHEN workflow_status = 'pending' THEN 1 END) AS orders_pending,
	COUNT(CASE WHEN workflow_status = 'listed' THEN 1 END) AS orders_listed,
	COUNT(CASE WHEN workflow_status = 'archived' THEN 1 END) AS orders_archived,
	COUNT(CASE WHEN workflow_status <> 'archived' AND canonical_sku IS NULL THEN 1 END) AS orders_unresolved,
	COALESCE(SUM(CASE WHEN workflow_status <> 'archived' THEN quantity END), 0) AS active_quantity
FROM order_queue_entries WHERE ($1 = '' OR platform = $1)`

func (r *statsRepo) GetStats(ctx context.Context, platform domain.Platform) (*domain.Stats, error) {
	var stats domain.Stats
	if err := r.db.GetContext(ctx, &stats, docStatsQuery, string(platform)); err != nil {
		return nil, fmt.Errorf("statsRepo.GetStats docs: %w", err)
	}

	var orders struct {
		OrdersPending    int `db:"orders_pending"`
		OrdersListed     int `db:"orders_listed"`
		OrdersArchived   int `db:"orders_archived"`
		OrdersUnresolved int `db:"orders_unresolved"`
		ActiveQuantity   int `db:"active_quantity"`
	}
	if err := r.db.GetContext(ctx, &orders, orderStatsQuery, string(platform)); err != nil {
		return nil, fmt.Errorf("statsRepo.GetStats orders: %w", err)
	}
	stats.OrdersPending = orders.OrdersPending
	stats.OrdersListed = orders.OrdersListed
	stats.OrdersArchived = orders.OrdersArchived
	stats.OrdersUnresolved = orders.OrdersUnresolved
	stats.ActiveQuantity = orders.ActiveQuantity

	return &stats, nil
}
