package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"packslip/internal/domain"
	"packslip/internal/identifier"
	"packslip/internal/port"
)

// CreateProductInput is the DTO for adding a canonical product.
type CreateProductInput struct {
	SKU     string
	Barcode string
	Name    string
}

// CreateAliasInput is the DTO for mapping a marketplace identifier to a product.
type CreateAliasInput struct {
	Platform   domain.Platform
	AliasValue string
	SKU        string
}

// ApplyMappingInput asks for an alias plus re-resolution of up to Limit
// unresolved queue entries carrying the same identifier.
type ApplyMappingInput struct {
	Platform              domain.Platform
	MarketplaceIdentifier string
	SKU                   string
	Limit                 int
}

// MappingResult reports what one mapping step changed. Session is the state
// to pass to the next ContinueMapping call.
type MappingResult struct {
	Session domain.MappingSession `json:"session"`
	Updated int                   `json:"updated"`
}

// CatalogService defines the product catalog contract.
type CatalogService interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error)
	ListProducts(ctx context.Context, offset, limit int) ([]domain.Product, int, error)
	CreateAlias(ctx context.Context, input CreateAliasInput) (*domain.ProductAlias, error)
	Resolve(ctx context.Context, platform domain.Platform, marketplaceIdentifier string) (domain.Resolution, error)
	ApplyMapping(ctx context.Context, input ApplyMappingInput) (*MappingResult, error)
	ContinueMapping(ctx context.Context, session domain.MappingSession) (*MappingResult, error)
}

type catalogService struct {
	catalogRepo port.CatalogRepository
	queueRepo   port.OrderQueueRepository
	resolver    *identifier.Resolver
}

// NewCatalogService creates a new CatalogService implementation.
func NewCatalogService(catalogRepo port.CatalogRepository, queueRepo port.OrderQueueRepository) CatalogService {
	return &catalogService{
		catalogRepo: catalogRepo,
		queueRepo:   queueRepo,
		resolver:    identifier.NewResolver(catalogRepo),
	}
}

// CreateProduct stores the product exactly as given. Identifiers are never
// trimmed or case folded, here or at lookup.
func (s *catalogService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if input.SKU == "" || input.Name == "" {
		return nil, domain.ErrInvalidIdentifier
	}
	p := &domain.Product{
		ID:   uuid.New(),
		SKU:  input.SKU,
		Name: input.Name,
	}
	if input.Barcode != "" {
		barcode := input.Barcode
		p.Barcode = &barcode
	}
	if err := s.catalogRepo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	log.Printf("catalogService.CreateProduct: created product %s", p.SKU)
	return p, nil
}

func (s *catalogService) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return s.catalogRepo.GetProductBySKU(ctx, sku)
}

func (s *catalogService) ListProducts(ctx context.Context, offset, limit int) ([]domain.Product, int, error) {
	return s.catalogRepo.ListProducts(ctx, offset, limit)
}

func (s *catalogService) CreateAlias(ctx context.Context, input CreateAliasInput) (*domain.ProductAlias, error) {
	if input.Platform == "" || input.AliasValue == "" || input.SKU == "" {
		return nil, domain.ErrInvalidIdentifier
	}
	product, err := s.catalogRepo.GetProductBySKU(ctx, input.SKU)
	if err != nil {
		return nil, err
	}
	alias := &domain.ProductAlias{
		ID:         uuid.New(),
		Platform:   input.Platform,
		AliasValue: input.AliasValue,
		ProductID:  product.ID,
		ProductSKU: product.SKU,
	}
	if err := s.catalogRepo.CreateAlias(ctx, alias); err != nil {
		return nil, err
	}
	log.Printf("catalogService.CreateAlias: %s/%s -> %s", alias.Platform, alias.AliasValue, product.SKU)
	return alias, nil
}

func (s *catalogService) Resolve(ctx context.Context, platform domain.Platform, marketplaceIdentifier string) (domain.Resolution, error) {
	return s.resolver.Resolve(ctx, marketplaceIdentifier, platform)
}

// ApplyMapping records the alias and resolves up to input.Limit unresolved
// entries. An alias that already points at the same product is reused.
func (s *catalogService) ApplyMapping(ctx context.Context, input ApplyMappingInput) (*MappingResult, error) {
	if input.Limit < 0 {
		return nil, fmt.Errorf("mapping limit %d is negative", input.Limit)
	}

	alias, err := s.CreateAlias(ctx, CreateAliasInput{
		Platform:   input.Platform,
		AliasValue: input.MarketplaceIdentifier,
		SKU:        input.SKU,
	})
	if errors.Is(err, domain.ErrDuplicateAlias) {
		existing, findErr := s.catalogRepo.FindAlias(ctx, input.Platform, input.MarketplaceIdentifier)
		if findErr != nil {
			return nil, findErr
		}
		if existing.ProductSKU != input.SKU {
			return nil, domain.ErrDuplicateAlias
		}
		alias, err = existing, nil
	}
	if err != nil {
		return nil, err
	}

	return s.ContinueMapping(ctx, domain.MappingSession{
		Platform:              alias.Platform,
		MarketplaceIdentifier: alias.AliasValue,
		CanonicalSKU:          alias.ProductSKU,
		ProductID:             alias.ProductID,
		Remaining:             input.Limit,
	})
}

// ContinueMapping applies the session to unresolved entries until it is
// used up or none are left.
func (s *catalogService) ContinueMapping(ctx context.Context, session domain.MappingSession) (*MappingResult, error) {
	result := &MappingResult{Session: session}
	if session.Remaining <= 0 {
		return result, nil
	}

	entries, err := s.queueRepo.ListUnresolved(ctx, session.Platform, session.MarketplaceIdentifier, session.Remaining)
	if err != nil {
		return nil, fmt.Errorf("listing unresolved entries: %w", err)
	}
	for i := range entries {
		if !result.Session.Applies(&entries[i]) {
			continue
		}
		ok, err := s.queueRepo.SetResolution(ctx, entries[i].ID, session.CanonicalSKU, session.ProductID)
		if err != nil {
			return result, fmt.Errorf("resolving entry %s: %w", entries[i].ID, err)
		}
		if !ok {
			continue
		}
		result.Session = result.Session.Apply()
		result.Updated++
	}

	log.Printf("catalogService.ContinueMapping: %s/%s -> %s resolved %d entries, %d remaining",
		session.Platform, session.MarketplaceIdentifier, session.CanonicalSKU, result.Updated, result.Session.Remaining)
	return result, nil
}
