package port

import (
	"context"

	"github.com/google/uuid"
)

// ParseDispatcher hands a queued document to whatever runs parses.
type ParseDispatcher interface {
	Dispatch(ctx context.Context, docID uuid.UUID) error
}
