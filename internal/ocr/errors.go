package ocr

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnsupportedInput is returned by engines that cannot read the content type.
var ErrUnsupportedInput = errors.New("ocr engine does not support this input")

// DefaultCooldown is used when an UnavailableError names no retry interval.
const DefaultCooldown = 60 * time.Second

// UnavailableError indicates an OCR engine cannot serve requests for a while.
type UnavailableError struct {
	Err        error
	RetryAfter time.Duration
	Engine     string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable (retry after %s): %v", e.Engine, e.RetryAfter, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// NewUnavailableError creates an UnavailableError. A non-positive retryAfter
// means DefaultCooldown.
func NewUnavailableError(engine string, err error, retryAfter time.Duration) *UnavailableError {
	if retryAfter <= 0 {
		retryAfter = DefaultCooldown
	}
	return &UnavailableError{
		Err:        err,
		RetryAfter: retryAfter,
		Engine:     engine,
	}
}
