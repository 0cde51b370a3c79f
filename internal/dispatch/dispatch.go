// Package dispatch provides parse dispatchers for the poll queue driver.
package dispatch

import (
	"context"
	"log"

	"github.com/google/uuid"

	"packslip/internal/port"
)

// Poll is the dispatcher used with the polling parse worker. Queued
// documents are picked up by ClaimQueued, so dispatch only records the event.
type Poll struct{}

var _ port.ParseDispatcher = Poll{}

func (Poll) Dispatch(_ context.Context, docID uuid.UUID) error {
	log.Printf("dispatch.Poll: document %s left for the parse worker", docID)
	return nil
}
