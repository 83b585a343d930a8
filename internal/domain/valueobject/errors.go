package valueobject

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrPreconditionFailed      = errors.New("precondition not met")
	ErrNotEligible             = errors.New("scheduled payment not eligible")
	ErrInvalidDate             = errors.New("invalid schedule date")
	ErrInvalidOffer            = errors.New("invalid offer terms")
	ErrPaymentFailed           = errors.New("payment failed")
	ErrReconciliationRequired  = errors.New("payment charged but ledger not updated: manual reconciliation required")
	ErrActiveNegotiationExists = errors.New("consumer already has an active negotiation")
	ErrNotFound                = errors.New("not found")
	ErrInvalidFilter           = errors.New("invalid filter")
)

// PreconditionError reports configuration or data that must exist before an
// operation can run, such as a payment profile or an accepted negotiation.
type PreconditionError struct {
	Reason string
}

// NewPreconditionError builds a PreconditionError with a formatted reason.
func NewPreconditionError(format string, args ...any) *PreconditionError {
	return &PreconditionError{Reason: fmt.Sprintf(format, args...)}
}

func (e *PreconditionError) Error() string {
	return "precondition not met: " + e.Reason
}

// Is makes errors.Is(err, ErrPreconditionFailed) true for every PreconditionError.
func (e *PreconditionError) Is(target error) bool {
	return target == ErrPreconditionFailed
}
