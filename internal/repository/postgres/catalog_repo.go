package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"packslip/internal/domain"
	"packslip/internal/port"
)

type catalogRepo struct {
	db *sqlx.DB
}

// NewCatalogRepo creates a new PostgreSQL-backed CatalogRepository.
func NewCatalogRepo(db *sqlx.DB) port.CatalogRepository {
	return &catalogRepo{db: db}
}

func (r *catalogRepo) FindAlias(ctx context.Context, platform domain.Platform, alias string) (*domain.ProductAlias, error) {
	var a domain.ProductAlias
	err := r.db.GetContext(ctx, &a,
		`SELECT a.id, a.platform, a.alias_value, a.product_id, p.sku AS product_sku, a.created_at
		 FROM product_aliases a
		 JOIN products p ON p.id = a.product_id
		 WHERE a.platform = $1 AND a.alias_value = $2`,
		platform, alias)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("catalogRepo.FindAlias: %w", err)
	}
	return &a, nil
}

func (r *catalogRepo) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return r.getProduct(ctx, "catalogRepo.GetProductBySKU", "SELECT * FROM products WHERE sku = $1", sku)
}

func (r *catalogRepo) GetProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	return r.getProduct(ctx, "catalogRepo.GetProductByBarcode", "SELECT * FROM products WHERE barcode = $1", barcode)
}

func (r *catalogRepo) getProduct(ctx context.Context, op, query string, arg string) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.GetContext(ctx, &p, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

func (r *catalogRepo) ListProducts(ctx context.Context, offset, limit int) ([]domain.Product, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM products"); err != nil {
		return nil, 0, fmt.Errorf("catalogRepo.ListProducts count: %w", err)
	}

	var products []domain.Product
	err := r.db.SelectContext(ctx, &products,
		"SELECT * FROM products ORDER BY sku LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("catalogRepo.ListProducts: %w", err)
	}
	return products, total, nil
}

func (r *catalogRepo) CreateProduct(ctx context.Context, product *domain.Product) error {
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO products (id, sku, barcode, name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		product.ID, product.SKU, product.Barcode, product.Name, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrDuplicateProduct
		}
		return fmt.Errorf("catalogRepo.CreateProduct: %w", err)
	}
	return nil
}

func (r *catalogRepo) CreateAlias(ctx context.Context, alias *domain.ProductAlias) error {
	alias.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO product_aliases (id, platform, alias_value, product_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		alias.ID, alias.Platform, alias.AliasValue, alias.ProductID, alias.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrDuplicateAlias
		}
		if strings.Contains(err.Error(), "foreign key") {
			return domain.ErrProductNotFound
		}
		return fmt.Errorf("catalogRepo.CreateAlias: %w", err)
	}
	return nil
}
