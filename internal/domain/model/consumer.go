package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/event"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Consumer aggregate root
// ---------------------------------------------------------------------------

// Consumer is one debtor's placement with a creditor. It is an immutable
// aggregate: mutations return a new copy.
type Consumer struct {
	id                      string
	tenantID                string
	subclientID             string
	currentBalance          decimal.Decimal
	totalBalance            decimal.Decimal
	status                  valueobject.ConsumerStatus
	hasFailedPayment        bool
	defaultPaymentProfileID string
	version                 int
	createdAt               time.Time
	updatedAt               time.Time
	domainEvents            []event.DomainEvent
}

// NewConsumer places a new account with its original balance.
func NewConsumer(tenantID, subclientID string, totalBalance decimal.Decimal, now time.Time) (Consumer, error) {
	if tenantID == "" {
		return Consumer{}, errors.New("tenant ID is required")
	}
	if totalBalance.IsNegative() {
		return Consumer{}, errors.New("total balance must not be negative")
	}
	return Consumer{
		id:             uuid.New().String(),
		tenantID:       tenantID,
		subclientID:    subclientID,
		currentBalance: totalBalance,
		totalBalance:   totalBalance,
		status:         valueobject.ConsumerStatusUploaded,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ReconstructConsumer rebuilds a Consumer aggregate from persistence.
func ReconstructConsumer(
	id, tenantID, subclientID string,
	currentBalance, totalBalance decimal.Decimal,
	status valueobject.ConsumerStatus,
	hasFailedPayment bool,
	defaultPaymentProfileID string,
	version int,
	createdAt, updatedAt time.Time,
) Consumer {
	return Consumer{
		id:                      id,
		tenantID:                tenantID,
		subclientID:             subclientID,
		currentBalance:          currentBalance,
		totalBalance:            totalBalance,
		status:                  status,
		hasFailedPayment:        hasFailedPayment,
		defaultPaymentProfileID: defaultPaymentProfileID,
		version:                 version,
		createdAt:               createdAt,
		updatedAt:               updatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// ApplyPayment lowers the current balance by amount, floored at zero, and
// clears the failed-payment flag.
func (c Consumer) ApplyPayment(amount decimal.Decimal, now time.Time) Consumer {
	next := c
	next.currentBalance = valueobject.FloorZero(c.currentBalance.Sub(amount))
	next.hasFailedPayment = false
	next.updatedAt = now
	next.domainEvents = copyEvents(c.domainEvents)
	return next
}

// RecordFailedPayment raises the failed-payment flag. Balances are untouched.
func (c Consumer) RecordFailedPayment(now time.Time) Consumer {
	next := c
	next.hasFailedPayment = true
	next.updatedAt = now
	next.domainEvents = copyEvents(c.domainEvents)
	return next
}

// Settle moves the consumer to SETTLED and emits ConsumerSettled.
func (c Consumer) Settle(now time.Time) (Consumer, error) {
	if c.status.Equal(valueobject.ConsumerStatusSettled) {
		return c, valueobject.ErrInvalidStatusTransition
	}
	next := c
	next.status = valueobject.ConsumerStatusSettled
	next.updatedAt = now
	next.domainEvents = copyEvents(c.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewConsumerSettled(c.id, c.tenantID, next.currentBalance))
	return next, nil
}

// MarkPaymentAccepted records that the consumer agreed to a settlement plan.
func (c Consumer) MarkPaymentAccepted(now time.Time) (Consumer, error) {
	if !c.status.AcceptsPayments() {
		return c, valueobject.ErrInvalidStatusTransition
	}
	next := c
	next.status = valueobject.ConsumerStatusPaymentAccepted
	next.updatedAt = now
	next.domainEvents = copyEvents(c.domainEvents)
	return next, nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (c Consumer) ID() string                         { return c.id }
func (c Consumer) TenantID() string                   { return c.tenantID }
func (c Consumer) SubclientID() string                { return c.subclientID }
func (c Consumer) CurrentBalance() decimal.Decimal    { return c.currentBalance }
func (c Consumer) TotalBalance() decimal.Decimal      { return c.totalBalance }
func (c Consumer) Status() valueobject.ConsumerStatus { return c.status }
func (c Consumer) HasFailedPayment() bool             { return c.hasFailedPayment }
func (c Consumer) DefaultPaymentProfileID() string    { return c.defaultPaymentProfileID }
func (c Consumer) Version() int                       { return c.version }
func (c Consumer) CreatedAt() time.Time               { return c.createdAt }
func (c Consumer) UpdatedAt() time.Time               { return c.updatedAt }
func (c Consumer) DomainEvents() []event.DomainEvent  { return c.domainEvents }

// ClearEvents returns a copy with an empty event list.
func (c Consumer) ClearEvents() Consumer {
	next := c
	next.domainEvents = nil
	return next
}

func copyEvents(src []event.DomainEvent) []event.DomainEvent {
	if src == nil {
		return nil
	}
	dst := make([]event.DomainEvent, len(src))
	copy(dst, src)
	return dst
}
