package service

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"

	"packslip/internal/csvexport"
	"packslip/internal/domain"
	"packslip/internal/picklist"
	"packslip/internal/port"
)

// Pick-list export formats.
const (
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"
)

// OrderQueueService defines the order queue contract.
type OrderQueueService interface {
	List(ctx context.Context, filter domain.OrderQueueFilter, offset, limit int) ([]domain.OrderQueueEntry, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.OrderQueueEntry, error)
	MarkListed(ctx context.Context, id uuid.UUID) (*domain.OrderQueueEntry, error)
	Archive(ctx context.Context, id uuid.UUID) (*domain.OrderQueueEntry, error)
	PickList(ctx context.Context, platform domain.Platform) ([]domain.PickListAggregate, error)
	ExportPickList(ctx context.Context, platform domain.Platform, format string, w io.Writer) error
}

type orderQueueService struct {
	queueRepo port.OrderQueueRepository
}

// NewOrderQueueService creates a new OrderQueueService implementation.
func NewOrderQueueService(queueRepo port.OrderQueueRepository) OrderQueueService {
	return &orderQueueService{queueRepo: queueRepo}
}

func (s *orderQueueService) List(ctx context.Context, filter domain.OrderQueueFilter, offset, limit int) ([]domain.OrderQueueEntry, int, error) {
	if filter.Status != "" && !domain.ValidWorkflowStatuses[filter.Status] {
		return nil, 0, domain.ErrInvalidStatus
	}
	return s.queueRepo.List(ctx, filter, offset, limit)
}

func (s *orderQueueService) GetByID(ctx context.Context, id uuid.UUID) (*domain.OrderQueueEntry, error) {
	return s.queueRepo.GetByID(ctx, id)
}

func (s *orderQueueService) MarkListed(ctx context.Context, id uuid.UUID) (*domain.OrderQueueEntry, error) {
	return s.transition(ctx, id, domain.WorkflowPending, domain.WorkflowListed)
}

func (s *orderQueueService) Archive(ctx context.Context, id uuid.UUID) (*domain.OrderQueueEntry, error) {
	return s.transition(ctx, id, domain.WorkflowListed, domain.WorkflowArchived)
}

func (s *orderQueueService) transition(ctx context.Context, id uuid.UUID, from, to domain.WorkflowStatus) (*domain.OrderQueueEntry, error) {
	if !domain.CanTransition(from, to) {
		return nil, domain.ErrInvalidTransition
	}
	entry, err := s.queueRepo.TransitionStatus(ctx, id, from, to)
	if err != nil {
		return nil, err
	}
	log.Printf("orderQueueService.transition: entry %s %s -> %s", id, from, to)
	return entry, nil
}

func (s *orderQueueService) PickList(ctx context.Context, platform domain.Platform) ([]domain.PickListAggregate, error) {
	entries, err := s.queueRepo.ListActive(ctx, platform)
	if err != nil {
		return nil, fmt.Errorf("loading active entries: %w", err)
	}
	return picklist.Aggregate(entries), nil
}

func (s *orderQueueService) ExportPickList(ctx context.Context, platform domain.Platform, format string, w io.Writer) error {
	aggs, err := s.PickList(ctx, platform)
	if err != nil {
		return err
	}

	switch format {
	case ExportFormatXLSX:
		return csvexport.WritePickListXLSX(w, aggs)
	case ExportFormatCSV, "":
		if _, err := w.Write(csvexport.BOM); err != nil {
			return fmt.Errorf("writing BOM: %w", err)
		}
		cw := csvexport.NewWriter(w)
		if err := cw.WriteHeader(); err != nil {
			return fmt.Errorf("writing CSV header: %w", err)
		}
		if err := cw.WritePickList(aggs); err != nil {
			return fmt.Errorf("writing CSV rows: %w", err)
		}
		cw.Flush()
		return cw.Error()
	default:
		return domain.ErrUnsupportedFileType
	}
}
