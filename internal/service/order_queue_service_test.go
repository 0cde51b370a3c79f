package service_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"packslip/internal/csvexport"
	"packslip/internal/domain"
	"packslip/internal/parser"
	"packslip/internal/repository/memory"
	"packslip/internal/service"
)

func seedQueue(t *testing.T) (*memory.OrderQueueRepo, []domain.OrderQueueEntry) {
	t.Helper()
	repo := memory.NewOrderQueueRepo()
	ingest := service.NewIngestionService(repo, nil)
	_, err := ingest.Ingest(context.Background(), batch(parser.PlatformFlipkart))
	require.NoError(t, err)
	entries, _, err := repo.List(context.Background(), domain.OrderQueueFilter{}, 0, 10)
	require.NoError(t, err)
	return repo, entries
}

func TestOrderQueueService_Transitions(t *testing.T) {
	ctx := context.Background()
	repo, entries := seedQueue(t)
	svc := service.NewOrderQueueService(repo)
	id := entries[0].ID

	_, err := svc.Archive(ctx, id)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	listed, err := svc.MarkListed(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkflowListed, listed.WorkflowStatus)

	_, err = svc.MarkListed(ctx, id)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	archived, err := svc.Archive(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkflowArchived, archived.WorkflowStatus)

	_, err = svc.MarkListed(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrOrderEntryNotFound)
}

func TestOrderQueueService_ListFilters(t *testing.T) {
	ctx := context.Background()
	repo, _ := seedQueue(t)
	svc := service.NewOrderQueueService(repo)

	_, total, err := svc.List(ctx, domain.OrderQueueFilter{Platform: parser.PlatformFlipkart}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	_, total, err = svc.List(ctx, domain.OrderQueueFilter{UnresolvedOnly: true}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	page, total, err := svc.List(ctx, domain.OrderQueueFilter{}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 1)

	_, _, err = svc.List(ctx, domain.OrderQueueFilter{Status: "shipped"}, 0, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestOrderQueueService_PickListSkipsArchived(t *testing.T) {
	ctx := context.Background()
	repo, entries := seedQueue(t)
	svc := service.NewOrderQueueService(repo)

	aggs, err := svc.PickList(ctx, parser.PlatformFlipkart)
	require.NoError(t, err)
	require.Len(t, aggs, 2)
	var resolved domain.PickListAggregate
	for _, a := range aggs {
		if a.CanonicalSKU != nil {
			resolved = a
		}
	}
	assert.Equal(t, 5, resolved.TotalQuantity)
	assert.ElementsMatch(t, []string{"OD100001", "OD100002"}, resolved.ContributingOrderIDs)

	for _, e := range entries {
		if e.CanonicalSKU != nil && e.OrderID == "OD100002" {
			_, err := svc.MarkListed(ctx, e.ID)
			require.NoError(t, err)
			_, err = svc.Archive(ctx, e.ID)
			require.NoError(t, err)
		}
	}

	aggs, err = svc.PickList(ctx, "")
	require.NoError(t, err)
	for _, a := range aggs {
		if a.CanonicalSKU != nil {
			assert.Equal(t, 2, a.TotalQuantity)
		}
	}
}

func TestOrderQueueService_ExportPickList(t *testing.T) {
	repo, _ := seedQueue(t)
	svc := service.NewOrderQueueService(repo)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportPickList(context.Background(), "", service.ExportFormatCSV, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), csvexport.BOM))
	assert.Contains(t, buf.String(), "Total Quantity")
	assert.Contains(t, buf.String(), "SKU-1")

	buf.Reset()
	require.NoError(t, svc.ExportPickList(context.Background(), "", service.ExportFormatXLSX, &buf))
	// xlsx files are zip archives.
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))

	err := svc.ExportPickList(context.Background(), "", "pdf", &buf)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}
