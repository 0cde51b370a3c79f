package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"packslip/internal/domain"
)

// MockOrderQueueService is a mock implementation of service.OrderQueueService.
type MockOrderQueueService struct {
	mock.Mock
}

func (m *MockOrderQueueService) List(ctx context.Context, filter domain.OrderQueueFilter, offset, limit int) ([]domain.OrderQueueEntry, int, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.OrderQueueEntry), args.Int(1), args.Error(2)
}

func (m *MockOrderQueueService) GetByID(ctx context.Context, id uuid.UUID) (*domain.OrderQueueEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderQueueEntry), args.Error(1)
}

func (m *MockOrderQueueService) MarkListed(ctx context.Context, id uuid.UUID) (*domain.OrderQueueEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderQueueEntry), args.Error(1)
}

func (m *MockOrderQueueService) Archive(ctx context.Context, id uuid.UUID) (*domain.OrderQueueEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderQueueEntry), args.Error(1)
}

func (m *MockOrderQueueService) PickList(ctx context.Context, platform domain.Platform) ([]domain.PickListAggregate, error) {
	args := m.Called(ctx, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PickListAggregate), args.Error(1)
}

func (m *MockOrderQueueService) ExportPickList(ctx context.Context, platform domain.Platform, format string, w io.Writer) error {
	args := m.Called(ctx, platform, format, w)
	return args.Error(0)
}
