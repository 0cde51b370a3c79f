package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"packslip/internal/port"
)

// MockObjectStorage is a mock implementation of port.ObjectStorage.
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Put(ctx context.Context, input port.PutObjectInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockObjectStorage) Get(ctx context.Context, ref port.ObjectRef, maxBytes int64) ([]byte, error) {
	args := m.Called(ctx, ref, maxBytes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockObjectStorage) Delete(ctx context.Context, ref port.ObjectRef) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockObjectStorage) PresignGet(ctx context.Context, ref port.ObjectRef, expiry time.Duration, fileName string) (string, error) {
	args := m.Called(ctx, ref, expiry, fileName)
	return args.String(0), args.Error(1)
}
