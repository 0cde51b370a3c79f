package identifier_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"packslip/internal/domain"
	"packslip/internal/identifier"
	"packslip/mocks"
)

const flipkart = domain.Platform("flipkart")

func TestResolve_AliasExactMatch(t *testing.T) {
	repo := new(mocks.MockCatalogRepo)
	pid := uuid.New()
	repo.On("FindAlias", mock.Anything, flipkart, "ABC-123-L").
		Return(&domain.ProductAlias{ProductID: pid, ProductSKU: "SHIRT-BLUE-L"}, nil)

	res, err := identifier.NewResolver(repo).Resolve(context.Background(), "ABC-123-L", flipkart)

	require.NoError(t, err)
	assert.True(t, res.IsResolved())
	assert.Equal(t, "SHIRT-BLUE-L", res.CanonicalSKU)
	assert.Equal(t, pid, res.ProductID)
	assert.Equal(t, domain.MatchSourceAlias, res.MatchedBy)
	repo.AssertNotCalled(t, "GetProductBySKU", mock.Anything, mock.Anything)
}

func TestResolve_NearMissIsUnresolved(t *testing.T) {
	repo := new(mocks.MockCatalogRepo)
	repo.On("FindAlias", mock.Anything, flipkart, "abc-123-l").Return(nil, domain.ErrNotFound)
	repo.On("GetProductBySKU", mock.Anything, "abc-123-l").Return(nil, domain.ErrProductNotFound)
	repo.On("GetProductByBarcode", mock.Anything, "abc-123-l").Return(nil, domain.ErrProductNotFound)

	res, err := identifier.NewResolver(repo).Resolve(context.Background(), "abc-123-l", flipkart)

	require.NoError(t, err)
	assert.False(t, res.IsResolved())
	assert.Equal(t, domain.ResolutionUnresolved, res.Status)
	assert.Empty(t, res.CanonicalSKU)
	repo.AssertExpectations(t)
}

func TestResolve_FallsBackToSKUThenBarcode(t *testing.T) {
	pid := uuid.New()

	repo := new(mocks.MockCatalogRepo)
	repo.On("FindAlias", mock.Anything, flipkart, "MUG-01").Return(nil, domain.ErrNotFound)
	repo.On("GetProductBySKU", mock.Anything, "MUG-01").Return(&domain.Product{ID: pid, SKU: "MUG-01"}, nil)

	res, err := identifier.NewResolver(repo).Resolve(context.Background(), "MUG-01", flipkart)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchSourceSKU, res.MatchedBy)

	repo = new(mocks.MockCatalogRepo)
	repo.On("FindAlias", mock.Anything, flipkart, "8901234567890").Return(nil, domain.ErrNotFound)
	repo.On("GetProductBySKU", mock.Anything, "8901234567890").Return(nil, domain.ErrProductNotFound)
	repo.On("GetProductByBarcode", mock.Anything, "8901234567890").Return(&domain.Product{ID: pid, SKU: "MUG-01"}, nil)

	res, err = identifier.NewResolver(repo).Resolve(context.Background(), "8901234567890", flipkart)
	require.NoError(t, err)
	assert.Equal(t, "MUG-01", res.CanonicalSKU)
	assert.Equal(t, domain.MatchSourceBarcode, res.MatchedBy)
}

func TestResolve_StoreErrorIsNotUnresolved(t *testing.T) {
	repo := new(mocks.MockCatalogRepo)
	boom := errors.New("connection refused")
	repo.On("FindAlias", mock.Anything, flipkart, "ABC-123-L").Return(nil, boom)

	_, err := identifier.NewResolver(repo).Resolve(context.Background(), "ABC-123-L", flipkart)

	assert.ErrorIs(t, err, boom)
}

func TestResolve_EmptyIdentifier(t *testing.T) {
	repo := new(mocks.MockCatalogRepo)

	res, err := identifier.NewResolver(repo).Resolve(context.Background(), "", flipkart)

	require.NoError(t, err)
	assert.False(t, res.IsResolved())
	repo.AssertNotCalled(t, "FindAlias", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveAll_MemoizesRepeats(t *testing.T) {
	repo := new(mocks.MockCatalogRepo)
	repo.On("FindAlias", mock.Anything, flipkart, "ABC-123-L").
		Return(&domain.ProductAlias{ProductSKU: "SHIRT-BLUE-L"}, nil).Once()

	out, err := identifier.NewResolver(repo).ResolveAll(context.Background(), []string{"ABC-123-L", "ABC-123-L"}, flipkart)

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, out[0], out[1])
	repo.AssertNumberOfCalls(t, "FindAlias", 1)
}
