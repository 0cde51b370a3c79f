package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"packslip/internal/port"
)

// MockRecognizer is a mock implementation of port.Recognizer.
type MockRecognizer struct {
	mock.Mock
}

func (m *MockRecognizer) Recognize(ctx context.Context, input port.RecognizeInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}
