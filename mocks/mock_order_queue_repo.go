package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"packslip/internal/domain"
)

// MockOrderQueueRepo is a mock implementation of port.OrderQueueRepository.
type MockOrderQueueRepo struct {
	mock.Mock
}

func (m *MockOrderQueueRepo) InsertIfAbsent(ctx context.Context, entry *domain.OrderQueueEntry) (bool, error) {
	args := m.Called(ctx, entry)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderQueueRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.OrderQueueEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderQueueEntry), args.Error(1)
}

func (m *MockOrderQueueRepo) List(ctx context.Context, filter domain.OrderQueueFilter, offset, limit int) ([]domain.OrderQueueEntry, int, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.OrderQueueEntry), args.Int(1), args.Error(2)
}

func (m *MockOrderQueueRepo) ListActive(ctx context.Context, platform domain.Platform) ([]domain.OrderQueueEntry, error) {
	args := m.Called(ctx, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OrderQueueEntry), args.Error(1)
}

func (m *MockOrderQueueRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.WorkflowStatus) (*domain.OrderQueueEntry, error) {
	args := m.Called(ctx, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderQueueEntry), args.Error(1)
}

func (m *MockOrderQueueRepo) ListUnresolved(ctx context.Context, platform domain.Platform, identifier string, limit int) ([]domain.OrderQueueEntry, error) {
	args := m.Called(ctx, platform, identifier, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OrderQueueEntry), args.Error(1)
}

func (m *MockOrderQueueRepo) SetResolution(ctx context.Context, id uuid.UUID, canonicalSKU string, productID uuid.UUID) (bool, error) {
	args := m.Called(ctx, id, canonicalSKU, productID)
	return args.Bool(0), args.Error(1)
}
