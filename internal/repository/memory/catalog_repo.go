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

type aliasKey struct {
	platform domain.Platform
	value    string
}

// CatalogRepo is an in-memory port.CatalogRepository. Lookups are plain map
// hits on the stored strings.
type CatalogRepo struct {
	mu        sync.RWMutex
	bySKU     map[string]*domain.Product
	byBarcode map[string]*domain.Product
	byID      map[uuid.UUID]*domain.Product
	aliases   map[aliasKey]*domain.ProductAlias
}

// NewCatalogRepo creates an empty CatalogRepo.
func NewCatalogRepo() *CatalogRepo {
	return &CatalogRepo{
		bySKU:     make(map[string]*domain.Product),
		byBarcode: make(map[string]*domain.Product),
		byID:      make(map[uuid.UUID]*domain.Product),
		aliases:   make(map[aliasKey]*domain.ProductAlias),
	}
}

var _ port.CatalogRepository = (*CatalogRepo)(nil)

func (r *CatalogRepo) FindAlias(_ context.Context, platform domain.Platform, alias string) (*domain.ProductAlias, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.aliases[aliasKey{platform, alias}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *a
	return &out, nil
}

func (r *CatalogRepo) GetProductBySKU(_ context.Context, sku string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyProduct(r.bySKU[sku])
}

func (r *CatalogRepo) GetProductByBarcode(_ context.Context, barcode string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyProduct(r.byBarcode[barcode])
}

func (r *CatalogRepo) ListProducts(_ context.Context, offset, limit int) ([]domain.Product, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]domain.Product, 0, len(r.bySKU))
	for _, p := range r.bySKU {
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SKU < all[j].SKU })
	return page(all, offset, limit), len(all), nil
}

func (r *CatalogRepo) CreateProduct(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.bySKU[product.SKU]; exists {
		return domain.ErrDuplicateProduct
	}
	if product.Barcode != nil {
		if _, exists := r.byBarcode[*product.Barcode]; exists {
			return domain.ErrDuplicateProduct
		}
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	stored := *product
	r.bySKU[stored.SKU] = &stored
	r.byID[stored.ID] = &stored
	if stored.Barcode != nil {
		r.byBarcode[*stored.Barcode] = &stored
	}
	return nil
}

func (r *CatalogRepo) CreateAlias(_ context.Context, alias *domain.ProductAlias) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[alias.ProductID]
	if !ok {
		return domain.ErrProductNotFound
	}
	key := aliasKey{alias.Platform, alias.AliasValue}
	if _, exists := r.aliases[key]; exists {
		return domain.ErrDuplicateAlias
	}
	if alias.ID == uuid.Nil {
		alias.ID = uuid.New()
	}
	alias.CreatedAt = time.Now().UTC()
	alias.ProductSKU = p.SKU
	stored := *alias
	r.aliases[key] = &stored
	return nil
}

func copyProduct(p *domain.Product) (*domain.Product, error) {
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	out := *p
	return &out, nil
}
