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
// ScheduledPayment entity
// ---------------------------------------------------------------------------

// ScheduledPayment is one planned debit of a consumer's payment plan.
type ScheduledPayment struct {
	id                     string
	tenantID               string
	consumerID             string
	negotiationID          string
	paymentProfileID       string
	sequence               int
	scheduleDate           time.Time
	previousScheduleDate   *time.Time
	amount                 decimal.Decimal
	status                 valueobject.ScheduleStatus
	attemptCount           int
	lastAttemptedAt        *time.Time
	revenueSharePercentage decimal.Decimal
	transactionID          string
	version                int
	createdAt              time.Time
	updatedAt              time.Time
	domainEvents           []event.DomainEvent
}

// NewScheduledPayment creates a SCHEDULED row.
func NewScheduledPayment(
	tenantID, consumerID, negotiationID, paymentProfileID string,
	sequence int,
	scheduleDate time.Time,
	amount, revenueSharePercentage decimal.Decimal,
	now time.Time,
) (ScheduledPayment, error) {
	if consumerID == "" {
		return ScheduledPayment{}, errors.New("consumer ID is required")
	}
	if !amount.IsPositive() {
		return ScheduledPayment{}, errors.New("scheduled amount must be positive")
	}
	if sequence < 1 {
		return ScheduledPayment{}, errors.New("sequence must start at 1")
	}
	if !valueobject.ValidPercentage(revenueSharePercentage) {
		return ScheduledPayment{}, errors.New("revenue share percentage must be between 0 and 100")
	}
	return ScheduledPayment{
		id:                     uuid.New().String(),
		tenantID:               tenantID,
		consumerID:             consumerID,
		negotiationID:          negotiationID,
		paymentProfileID:       paymentProfileID,
		sequence:               sequence,
		scheduleDate:           valueobject.DateOf(scheduleDate),
		amount:                 amount,
		status:                 valueobject.ScheduleStatusScheduled,
		revenueSharePercentage: revenueSharePercentage,
		version:                1,
		createdAt:              now,
		updatedAt:              now,
	}, nil
}

// ReconstructScheduledPayment rebuilds a ScheduledPayment from persistence.
func ReconstructScheduledPayment(
	id, tenantID, consumerID, negotiationID, paymentProfileID string,
	sequence int,
	scheduleDate time.Time,
	previousScheduleDate *time.Time,
	amount decimal.Decimal,
	status valueobject.ScheduleStatus,
	attemptCount int,
	lastAttemptedAt *time.Time,
	revenueSharePercentage decimal.Decimal,
	transactionID string,
	version int,
	createdAt, updatedAt time.Time,
) ScheduledPayment {
	return ScheduledPayment{
		id:                     id,
		tenantID:               tenantID,
		consumerID:             consumerID,
		negotiationID:          negotiationID,
		paymentProfileID:       paymentProfileID,
		sequence:               sequence,
		scheduleDate:           scheduleDate,
		previousScheduleDate:   previousScheduleDate,
		amount:                 amount,
		status:                 status,
		attemptCount:           attemptCount,
		lastAttemptedAt:        lastAttemptedAt,
		revenueSharePercentage: revenueSharePercentage,
		transactionID:          transactionID,
		version:                version,
		createdAt:              createdAt,
		updatedAt:              updatedAt,
	}
}

func (p ScheduledPayment) transition(to valueobject.ScheduleStatus) (ScheduledPayment, error) {
	if !p.status.CanTransitionTo(to) {
		return p, valueobject.ErrInvalidStatusTransition
	}
	next := p
	next.status = to
	next.domainEvents = copyEvents(p.domainEvents)
	return next, nil
}

// MarkSuccessful resolves the row with the transaction that paid it.
func (p ScheduledPayment) MarkSuccessful(transactionID string, now time.Time) (ScheduledPayment, error) {
	next, err := p.transition(valueobject.ScheduleStatusSuccessful)
	if err != nil {
		return p, err
	}
	next.transactionID = transactionID
	next.attemptCount++
	attempted := now
	next.lastAttemptedAt = &attempted
	next.updatedAt = now
	return next, nil
}

// MarkFailed records a failed attempt. A FAILED row that fails again stays
// FAILED with a higher attempt count.
func (p ScheduledPayment) MarkFailed(now time.Time) (ScheduledPayment, error) {
	next := p
	if !p.status.Equal(valueobject.ScheduleStatusFailed) {
		var err error
		next, err = p.transition(valueobject.ScheduleStatusFailed)
		if err != nil {
			return p, err
		}
	} else {
		next.domainEvents = copyEvents(p.domainEvents)
	}
	next.attemptCount++
	attempted := now
	next.lastAttemptedAt = &attempted
	next.updatedAt = now
	return next, nil
}

// RescheduleToday puts a FAILED row back on today's date. The original due
// date is kept in previousScheduleDate and never overwritten afterwards.
func (p ScheduledPayment) RescheduleToday(today, now time.Time) (ScheduledPayment, error) {
	if !p.status.Equal(valueobject.ScheduleStatusFailed) {
		return p, valueobject.ErrInvalidStatusTransition
	}
	next, err := p.transition(valueobject.ScheduleStatusScheduled)
	if err != nil {
		return p, err
	}
	next.keepPreviousDate()
	next.scheduleDate = valueobject.DateOf(today)
	next.updatedAt = now
	next.domainEvents = append(next.domainEvents, event.NewPaymentRescheduled(
		p.id, p.tenantID, p.consumerID, *next.previousScheduleDate, next.scheduleDate,
	))
	return next, nil
}

// MoveToEnd places the row at a new position and date at the end of the plan.
func (p ScheduledPayment) MoveToEnd(sequence int, date, now time.Time) (ScheduledPayment, error) {
	if !p.status.IsOutstanding() {
		return p, valueobject.ErrNotEligible
	}
	next := p
	next.domainEvents = copyEvents(p.domainEvents)
	next.sequence = sequence
	next.scheduleDate = valueobject.DateOf(date)
	next.updatedAt = now
	next.domainEvents = append(next.domainEvents, event.NewPaymentSkipped(
		p.id, p.tenantID, p.consumerID, p.scheduleDate, next.scheduleDate, sequence,
	))
	return next, nil
}

// ChangeDate moves a SCHEDULED row to date. Range checks against its
// neighbours belong to PaymentPlan.
func (p ScheduledPayment) ChangeDate(date, now time.Time) (ScheduledPayment, error) {
	if !p.status.Equal(valueobject.ScheduleStatusScheduled) {
		return p, valueobject.ErrNotEligible
	}
	next := p
	next.domainEvents = copyEvents(p.domainEvents)
	next.keepPreviousDate()
	next.scheduleDate = valueobject.DateOf(date)
	next.updatedAt = now
	next.domainEvents = append(next.domainEvents, event.NewPaymentDateChanged(
		p.id, p.tenantID, p.consumerID, p.scheduleDate, next.scheduleDate,
	))
	return next, nil
}

// ReduceAmount lowers the amount still owed on an outstanding row after a
// partial custom payment covered part of it.
func (p ScheduledPayment) ReduceAmount(by decimal.Decimal, now time.Time) (ScheduledPayment, error) {
	if !p.status.IsOutstanding() {
		return p, valueobject.ErrNotEligible
	}
	if !by.IsPositive() || by.GreaterThanOrEqual(p.amount) {
		return p, errors.New("reduction must be positive and below the scheduled amount")
	}
	next := p
	next.domainEvents = copyEvents(p.domainEvents)
	next.amount = p.amount.Sub(by)
	next.updatedAt = now
	return next, nil
}

// Cancel marks an outstanding row CANCELLED.
func (p ScheduledPayment) Cancel(now time.Time) (ScheduledPayment, error) {
	next, err := p.transition(valueobject.ScheduleStatusCancelled)
	if err != nil {
		return p, err
	}
	next.updatedAt = now
	return next, nil
}

func (p *ScheduledPayment) keepPreviousDate() {
	if p.previousScheduleDate == nil {
		prev := p.scheduleDate
		p.previousScheduleDate = &prev
	}
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (p ScheduledPayment) ID() string                              { return p.id }
func (p ScheduledPayment) TenantID() string                        { return p.tenantID }
func (p ScheduledPayment) ConsumerID() string                      { return p.consumerID }
func (p ScheduledPayment) NegotiationID() string                   { return p.negotiationID }
func (p ScheduledPayment) PaymentProfileID() string                { return p.paymentProfileID }
func (p ScheduledPayment) Sequence() int                           { return p.sequence }
func (p ScheduledPayment) ScheduleDate() time.Time                 { return p.scheduleDate }
func (p ScheduledPayment) PreviousScheduleDate() *time.Time        { return p.previousScheduleDate }
func (p ScheduledPayment) Amount() decimal.Decimal                 { return p.amount }
func (p ScheduledPayment) Status() valueobject.ScheduleStatus      { return p.status }
func (p ScheduledPayment) AttemptCount() int                       { return p.attemptCount }
func (p ScheduledPayment) LastAttemptedAt() *time.Time             { return p.lastAttemptedAt }
func (p ScheduledPayment) RevenueSharePercentage() decimal.Decimal { return p.revenueSharePercentage }
func (p ScheduledPayment) TransactionID() string                   { return p.transactionID }
func (p ScheduledPayment) Version() int                            { return p.version }
func (p ScheduledPayment) CreatedAt() time.Time                    { return p.createdAt }
func (p ScheduledPayment) UpdatedAt() time.Time                    { return p.updatedAt }
func (p ScheduledPayment) DomainEvents() []event.DomainEvent       { return p.domainEvents }

// ClearEvents returns a copy with an empty event list.
func (p ScheduledPayment) ClearEvents() ScheduledPayment {
	next := p
	next.domainEvents = nil
	return next
}
