package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"packslip/internal/domain"
	"packslip/internal/service"
)

// MockDocumentService is a mock implementation of service.DocumentService.
type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, input service.UploadInput) (*domain.ShipmentDocument, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShipmentDocument), args.Error(1)
}

func (m *MockDocumentService) GetByID(ctx context.Context, docID uuid.UUID) (*domain.ShipmentDocument, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShipmentDocument), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, offset, limit int) ([]domain.ShipmentDocument, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ShipmentDocument), args.Int(1), args.Error(2)
}

func (m *MockDocumentService) GetDiagnostics(ctx context.Context, docID uuid.UUID) (*domain.DocumentDiagnostic, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentDiagnostic), args.Error(1)
}

func (m *MockDocumentService) RetryParse(ctx context.Context, docID uuid.UUID) (*domain.ShipmentDocument, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShipmentDocument), args.Error(1)
}

func (m *MockDocumentService) DryRun(ctx context.Context, input service.DryRunInput) (*domain.DocumentDiagnostic, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentDiagnostic), args.Error(1)
}

func (m *MockDocumentService) ParseDocument(ctx context.Context, doc *domain.ShipmentDocument, maxAttempts int) {
	m.Called(ctx, doc, maxAttempts)
}

func (m *MockDocumentService) DownloadURL(ctx context.Context, docID uuid.UUID) (string, error) {
	args := m.Called(ctx, docID)
	return args.String(0), args.Error(1)
}
