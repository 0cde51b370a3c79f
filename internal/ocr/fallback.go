// Package ocr holds the optional OCR collaborators used when a page's text
// layer carries no usable signal.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"packslip/internal/port"
)

// circuitState tracks backoff for a single engine.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackRecognizer tries engines in order, skipping those with open
// circuits. It implements port.Recognizer.
type FallbackRecognizer struct {
	engines  []port.Recognizer
	circuits []*circuitState
	names    []string
	now      func() time.Time
}

// NewFallbackRecognizer creates a FallbackRecognizer from an ordered list of
// engines and their names.
func NewFallbackRecognizer(engines []port.Recognizer, names []string) *FallbackRecognizer {
	circuits := make([]*circuitState, len(engines))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackRecognizer{
		engines:  engines,
		circuits: circuits,
		names:    names,
		now:      time.Now,
	}
}

func (f *FallbackRecognizer) Recognize(ctx context.Context, input port.RecognizeInput) (string, error) {
	now := f.now()
	var lastErr error
	allUnavailable := true
	var earliestReset time.Time

	for i, e := range f.engines {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			log.Printf("ocr.FallbackRecognizer: skipping %s (circuit open until %s)", f.names[i], resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		text, err := e.Recognize(ctx, input)
		if err == nil {
			return text, nil
		}

		log.Printf("ocr.FallbackRecognizer: %s failed on page %d: %v", f.names[i], input.PageNumber, err)
		lastErr = err

		var unErr *UnavailableError
		if errors.As(err, &unErr) {
			resetAt := now.Add(unErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allUnavailable = false
		}
	}

	if lastErr == nil || allUnavailable {
		retryAfter := earliestReset.Sub(now)
		if retryAfter <= 0 {
			retryAfter = time.Second
		}
		return "", NewUnavailableError("all", fmt.Errorf("all ocr engines unavailable"), retryAfter)
	}

	return "", fmt.Errorf("all ocr engines failed: %w", lastErr)
}
