package port

import (
	"context"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// External service ports
// ---------------------------------------------------------------------------

// ChargeRequest is one debit in integer minor units.
type ChargeRequest struct {
	Gateway     valueobject.GatewayCapability
	ProfileRef  string
	AmountMinor int64
	Currency    string
	Metadata    map[string]string
}

// ChargeResult is the gateway's answer. A declined charge is Success=false
// with a nil error; transport problems are returned as errors.
type ChargeResult struct {
	Success              bool
	GatewayTransactionID string
	RawResponse          []byte
	FailureReason        string
}

// PaymentGateway charges a stored payment profile.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}

// RevenueShareRateProvider returns a company's current fee terms.
type RevenueShareRateProvider interface {
	TermsFor(ctx context.Context, tenantID string) (valueobject.RevenueShareTerms, error)
}

// ConsumerLocker serializes work on one consumer across processes.
type ConsumerLocker interface {
	// Lock blocks until the consumer's lock is held or ctx ends. The
	// returned func releases it.
	Lock(ctx context.Context, consumerID string) (unlock func(), err error)
}
