package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"packslip/internal/domain"
	"packslip/internal/service"
)

// MockCatalogService is a mock implementation of service.CatalogService.
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) CreateProduct(ctx context.Context, input service.CreateProductInput) (*domain.Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockCatalogService) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockCatalogService) ListProducts(ctx context.Context, offset, limit int) ([]domain.Product, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *MockCatalogService) CreateAlias(ctx context.Context, input service.CreateAliasInput) (*domain.ProductAlias, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductAlias), args.Error(1)
}

func (m *MockCatalogService) Resolve(ctx context.Context, platform domain.Platform, marketplaceIdentifier string) (domain.Resolution, error) {
	args := m.Called(ctx, platform, marketplaceIdentifier)
	return args.Get(0).(domain.Resolution), args.Error(1)
}

func (m *MockCatalogService) ApplyMapping(ctx context.Context, input service.ApplyMappingInput) (*service.MappingResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MappingResult), args.Error(1)
}

func (m *MockCatalogService) ContinueMapping(ctx context.Context, session domain.MappingSession) (*service.MappingResult, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MappingResult), args.Error(1)
}
