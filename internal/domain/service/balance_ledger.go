package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/model"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
)

// Allocation is the part of a payment applied to one scheduled row. A row
// whose full amount is covered becomes SUCCESSFUL; a partly covered row has
// its amount reduced and stays outstanding.
type Allocation struct {
	ScheduledPaymentID string
	Amount             decimal.Decimal
}

// AllocateAcross spreads amount over rows in order. Whatever is left after
// the last row is returned as unallocated.
func AllocateAcross(rows []model.ScheduledPayment, amount decimal.Decimal) (allocations []Allocation, unallocated decimal.Decimal) {
	left := amount
	for _, row := range rows {
		if !left.IsPositive() {
			break
		}
		part := decimal.Min(left, row.Amount())
		allocations = append(allocations, Allocation{ScheduledPaymentID: row.ID(), Amount: part})
		left = left.Sub(part)
	}
	return allocations, left
}

// SuccessInput is the state the ledger reconciles after a successful charge.
type SuccessInput struct {
	Consumer      model.Consumer
	Negotiation   model.Negotiation
	Plan          model.PaymentPlan
	Allocations   []Allocation
	TransactionID string
	Amount        decimal.Decimal
}

// SuccessOutcome is the reconciled state to persist in the same commit.
type SuccessOutcome struct {
	Consumer      model.Consumer
	Negotiation   model.Negotiation
	Plan          model.PaymentPlan
	Changed       []model.ScheduledPayment
	Settled       bool
	BalanceSource valueobject.RemainingBalanceSource
}

// FailureOutcome is the state to persist after a failed charge.
type FailureOutcome struct {
	Consumer model.Consumer
	Changed  []model.ScheduledPayment
}

// ---------------------------------------------------------------------------
// BalanceLedger – reconciles balances after payment outcomes
// ---------------------------------------------------------------------------

// BalanceLedger applies payment outcomes to the consumer, the negotiation and
// the payment plan. It performs no I/O.
type BalanceLedger struct {
	logger *slog.Logger
}

// NewBalanceLedger creates a ledger that reports data-integrity problems to logger.
func NewBalanceLedger(logger *slog.Logger) *BalanceLedger {
	if logger == nil {
		logger = slog.Default()
	}
	return &BalanceLedger{logger: logger}
}

// ApplySuccess marks the allocated rows, lowers both balances by the paid
// amount and settles the consumer when no SCHEDULED or FAILED rows remain.
func (l *BalanceLedger) ApplySuccess(ctx context.Context, in SuccessInput, now time.Time) (SuccessOutcome, error) {
	if !in.Amount.IsPositive() {
		return SuccessOutcome{}, errors.New("paid amount must be positive")
	}

	// 1. Resolve the allocated rows.
	plan := in.Plan
	changed := make([]model.ScheduledPayment, 0, len(in.Allocations))
	for _, a := range in.Allocations {
		row, ok := plan.Find(a.ScheduledPaymentID)
		if !ok {
			return SuccessOutcome{}, fmt.Errorf("scheduled payment %s: %w", a.ScheduledPaymentID, valueobject.ErrNotFound)
		}
		var err error
		if a.Amount.GreaterThanOrEqual(row.Amount()) {
			row, err = row.MarkSuccessful(in.TransactionID, now)
		} else {
			row, err = row.ReduceAmount(a.Amount, now)
		}
		if err != nil {
			return SuccessOutcome{}, fmt.Errorf("scheduled payment %s: %w", a.ScheduledPaymentID, err)
		}
		plan = plan.Replace(row)
		changed = append(changed, row)
	}

	// 2. Settlement is decided after the paid rows are marked.
	settled := len(plan.Outstanding()) == 0

	// 3. Consumer balance, floored at zero.
	consumer := in.Consumer.ApplyPayment(in.Amount, now)

	// 4. Negotiation remaining balance by source precedence.
	negotiation, source, applied := in.Negotiation.ApplyPayment(in.Amount, now)
	if !applied {
		l.logger.WarnContext(ctx, "data integrity: negotiation has no resolvable remaining balance",
			"consumer_id", consumer.ID(),
			"negotiation_id", in.Negotiation.ID(),
			"transaction_id", in.TransactionID,
			"amount", in.Amount.String(),
		)
	}

	if settled && !consumer.Status().Equal(valueobject.ConsumerStatusSettled) {
		var err error
		consumer, err = consumer.Settle(now)
		if err != nil {
			return SuccessOutcome{}, fmt.Errorf("settle consumer: %w", err)
		}
	}

	return SuccessOutcome{
		Consumer:      consumer,
		Negotiation:   negotiation,
		Plan:          plan,
		Changed:       changed,
		Settled:       settled,
		BalanceSource: source,
	}, nil
}

// ApplyFailure raises the consumer's failed-payment flag and marks the
// attempted row FAILED. Balances are not touched.
func (l *BalanceLedger) ApplyFailure(consumer model.Consumer, attempted []model.ScheduledPayment, now time.Time) (FailureOutcome, error) {
	out := FailureOutcome{Consumer: consumer.RecordFailedPayment(now)}
	for _, row := range attempted {
		failed, err := row.MarkFailed(now)
		if err != nil {
			return FailureOutcome{}, fmt.Errorf("scheduled payment %s: %w", row.ID(), err)
		}
		out.Changed = append(out.Changed, failed)
	}
	return out, nil
}
