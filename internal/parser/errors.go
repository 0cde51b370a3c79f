package parser

import (
	"fmt"

	"packslip/internal/domain"
)

// StructuralMissError reports that a page has no recoverable table. It is a
// normal outcome: the page yields zero rows and the miss is surfaced as a
// diagnostic.
type StructuralMissError struct {
	Miss domain.StructuralMiss
}

func (e *StructuralMissError) Error() string {
	if e.Miss.Detail != "" {
		return fmt.Sprintf("structural miss (%s): %s", e.Miss.Reason, e.Miss.Detail)
	}
	return fmt.Sprintf("structural miss (%s)", e.Miss.Reason)
}

// NewStructuralMiss creates a StructuralMissError.
func NewStructuralMiss(reason, detail string) *StructuralMissError {
	return &StructuralMissError{Miss: domain.StructuralMiss{Reason: reason, Detail: detail}}
}
