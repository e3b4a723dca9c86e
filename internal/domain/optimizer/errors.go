package optimizer

import (
	"fmt"

	"github.com/krpsim/krpsim-go/internal/domain/shared"
)

// InvalidConfigReason narrows why Initialize rejected a process graph.
type InvalidConfigReason string

const (
	ReasonNonPositiveDelay InvalidConfigReason = "non_positive_delay"
	ReasonDuplicateName    InvalidConfigReason = "duplicate_name"
	ReasonUnknownTarget    InvalidConfigReason = "unknown_target"
)

// InvalidConfigError is returned by Initialize for a malformed process graph:
// non-positive delay, a duplicate process name, or a target that no process
// either consumes or produces.
type InvalidConfigError struct {
	*shared.DomainError
	Reason  InvalidConfigReason
	Subject string
}

func NewInvalidConfigError(reason InvalidConfigReason, subject string) *InvalidConfigError {
	return &InvalidConfigError{
		DomainError: shared.NewDomainError(fmt.Sprintf("invalid config: %s (%s)", reason, subject)),
		Reason:      reason,
		Subject:     subject,
	}
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Reason, e.Subject)
}
