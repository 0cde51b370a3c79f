package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"packslip/internal/domain"
	"packslip/internal/parser"
	"packslip/internal/repository/memory"
	"packslip/internal/service"
	"packslip/mocks"
)

func newCatalog(t *testing.T) (service.CatalogService, *memory.OrderQueueRepo) {
	t.Helper()
	queue := memory.NewOrderQueueRepo()
	svc := service.NewCatalogService(memory.NewCatalogRepo(), queue)
	_, err := svc.CreateProduct(context.Background(), service.CreateProductInput{
		SKU: "SKU-2", Barcode: "8901234567890", Name: "Water bottle",
	})
	require.NoError(t, err)
	return svc, queue
}

func TestCatalogService_CreateProduct(t *testing.T) {
	svc, _ := newCatalog(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, service.CreateProductInput{SKU: "SKU-2", Name: "again"})
	assert.ErrorIs(t, err, domain.ErrDuplicateProduct)

	_, err = svc.CreateProduct(ctx, service.CreateProductInput{SKU: "", Name: "nameless"})
	assert.ErrorIs(t, err, domain.ErrInvalidIdentifier)

	p, err := svc.GetProductBySKU(ctx, "SKU-2")
	require.NoError(t, err)
	require.NotNil(t, p.Barcode)
	assert.Equal(t, "8901234567890", *p.Barcode)

	_, err = svc.GetProductBySKU(ctx, "sku-2")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCatalogService_ResolveIsExact(t *testing.T) {
	svc, _ := newCatalog(t)
	ctx := context.Background()

	_, err := svc.CreateAlias(ctx, service.CreateAliasInput{Platform: parser.PlatformFlipkart, AliasValue: "FK-SKU-2", SKU: "SKU-2"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		platform   domain.Platform
		identifier string
		resolved   bool
		matchedBy  domain.MatchSource
	}{
		{"alias", parser.PlatformFlipkart, "FK-SKU-2", true, domain.MatchSourceAlias},
		{"alias other platform", parser.PlatformAmazon, "FK-SKU-2", false, ""},
		{"alias case differs", parser.PlatformFlipkart, "fk-sku-2", false, ""},
		{"alias with whitespace", parser.PlatformFlipkart, " FK-SKU-2", false, ""},
		{"sku", parser.PlatformAmazon, "SKU-2", true, domain.MatchSourceSKU},
		{"barcode", parser.PlatformMeesho, "8901234567890", true, domain.MatchSourceBarcode},
		{"barcode prefix", parser.PlatformMeesho, "890123456789", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Resolve(ctx, tt.platform, tt.identifier)
			require.NoError(t, err)
			assert.Equal(t, tt.resolved, res.IsResolved())
			if tt.resolved {
				assert.Equal(t, "SKU-2", res.CanonicalSKU)
				assert.Equal(t, tt.matchedBy, res.MatchedBy)
			}
		})
	}
}

func TestCatalogService_CreateAliasErrors(t *testing.T) {
	svc, _ := newCatalog(t)
	ctx := context.Background()

	_, err := svc.CreateAlias(ctx, service.CreateAliasInput{Platform: parser.PlatformMeesho, AliasValue: "M-1", SKU: "NOPE"})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	in := service.CreateAliasInput{Platform: parser.PlatformMeesho, AliasValue: "M-1", SKU: "SKU-2"}
	_, err = svc.CreateAlias(ctx, in)
	require.NoError(t, err)
	_, err = svc.CreateAlias(ctx, in)
	assert.ErrorIs(t, err, domain.ErrDuplicateAlias)
}

func TestCatalogService_ApplyMappingIsBounded(t *testing.T) {
	svc, queue := newCatalog(t)
	ctx := context.Background()

	ingest := service.NewIngestionService(queue, nil)
	in := service.IngestInput{Platform: parser.PlatformFlipkart}
	for _, order := range []string{"OD1", "OD2", "OD3"} {
		in.Rows = append(in.Rows, row(order, "FK-NEW", 1))
		in.Resolutions = append(in.Resolutions, domain.Unresolved())
	}
	_, err := ingest.Ingest(ctx, in)
	require.NoError(t, err)

	res, err := svc.ApplyMapping(ctx, service.ApplyMappingInput{
		Platform: parser.PlatformFlipkart, MarketplaceIdentifier: "FK-NEW", SKU: "SKU-2", Limit: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Updated)
	assert.Equal(t, 0, res.Session.Remaining)

	_, total, err := queue.List(ctx, domain.OrderQueueFilter{UnresolvedOnly: true}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	// The caller carries the session forward explicitly.
	next := res.Session
	next.Remaining = 5
	res, err = svc.ContinueMapping(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 4, res.Session.Remaining)

	// Re-applying the same mapping reuses the alias.
	res, err = svc.ApplyMapping(ctx, service.ApplyMappingInput{
		Platform: parser.PlatformFlipkart, MarketplaceIdentifier: "FK-NEW", SKU: "SKU-2", Limit: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Updated)
}

func TestCatalogService_ApplyMappingConflictingAlias(t *testing.T) {
	svc, _ := newCatalog(t)
	ctx := context.Background()
	_, err := svc.CreateProduct(ctx, service.CreateProductInput{SKU: "SKU-3", Name: "Lid"})
	require.NoError(t, err)
	_, err = svc.CreateAlias(ctx, service.CreateAliasInput{Platform: parser.PlatformFlipkart, AliasValue: "FK-X", SKU: "SKU-3"})
	require.NoError(t, err)

	_, err = svc.ApplyMapping(ctx, service.ApplyMappingInput{
		Platform: parser.PlatformFlipkart, MarketplaceIdentifier: "FK-X", SKU: "SKU-2", Limit: 1,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateAlias)
}

func TestCatalogService_ResolveStoreErrorPropagates(t *testing.T) {
	catalog := new(mocks.MockCatalogRepo)
	catalog.On("FindAlias", mock.Anything, parser.PlatformAmazon, "X").Return(nil, errors.New("db down"))

	svc := service.NewCatalogService(catalog, memory.NewOrderQueueRepo())
	_, err := svc.Resolve(context.Background(), parser.PlatformAmazon, "X")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
