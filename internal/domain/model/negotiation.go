package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/event"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
)

// OfferTerms are the amounts and dates of one side of a negotiation.
// PIF offers use OneTimeSettlement; installment offers use NegotiateAmount
// (the total payable) and MonthlyAmount.
type OfferTerms struct {
	OneTimeSettlement decimal.Decimal
	NegotiateAmount   decimal.Decimal
	MonthlyAmount     decimal.Decimal
	FirstPayDate      time.Time
}

// validate checks the terms required by the negotiation type.
func (t OfferTerms) validate(nt valueobject.NegotiationType) error {
	if t.FirstPayDate.IsZero() {
		return errors.New("first pay date is required")
	}
	if nt.IsPIF() {
		if !t.OneTimeSettlement.IsPositive() {
			return errors.New("one-time settlement amount must be positive")
		}
		return nil
	}
	if !t.NegotiateAmount.IsPositive() {
		return errors.New("negotiated amount must be positive")
	}
	if !t.MonthlyAmount.IsPositive() {
		return errors.New("installment amount must be positive")
	}
	if t.MonthlyAmount.GreaterThan(t.NegotiateAmount) {
		return errors.New("installment amount exceeds negotiated amount")
	}
	return nil
}

// AcceptedPlan is what the schedule generator needs from an accepted negotiation.
type AcceptedPlan struct {
	NegotiationType valueobject.NegotiationType
	InstallmentType valueobject.InstallmentType
	Total           decimal.Decimal
	MonthlyAmount   decimal.Decimal
	FirstPayDate    time.Time
}

// ---------------------------------------------------------------------------
// Negotiation aggregate root
// ---------------------------------------------------------------------------

// Negotiation holds the proposed or agreed settlement terms for one consumer.
// Once an offer is accepted the terms are frozen and only the remaining
// balance moves.
type Negotiation struct {
	id                        string
	tenantID                  string
	consumerID                string
	negotiationType           valueobject.NegotiationType
	installmentType           valueobject.InstallmentType
	offer                     OfferTerms
	counter                   *OfferTerms
	offerAccepted             bool
	counterOfferAccepted      bool
	active                    bool
	paymentPlanCurrentBalance *decimal.Decimal
	acceptedAt                *time.Time
	version                   int
	createdAt                 time.Time
	updatedAt                 time.Time
	domainEvents              []event.DomainEvent
}

// NewNegotiation opens the consumer's active negotiation with a first offer.
func NewNegotiation(
	tenantID, consumerID string,
	negotiationType valueobject.NegotiationType,
	installmentType valueobject.InstallmentType,
	offer OfferTerms,
	now time.Time,
) (Negotiation, error) {
	if tenantID == "" {
		return Negotiation{}, errors.New("tenant ID is required")
	}
	if consumerID == "" {
		return Negotiation{}, errors.New("consumer ID is required")
	}
	if negotiationType.IsZero() {
		return Negotiation{}, errors.New("negotiation type is required")
	}
	if !negotiationType.IsPIF() && installmentType.IsZero() {
		return Negotiation{}, errors.New("installment type is required for installment negotiations")
	}
	if err := offer.validate(negotiationType); err != nil {
		return Negotiation{}, fmt.Errorf("offer: %w", err)
	}
	offer.FirstPayDate = valueobject.DateOf(offer.FirstPayDate)

	id := uuid.New().String()
	n := Negotiation{
		id:              id,
		tenantID:        tenantID,
		consumerID:      consumerID,
		negotiationType: negotiationType,
		installmentType: installmentType,
		offer:           offer,
		active:          true,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}
	n.domainEvents = append(n.domainEvents, event.NewNegotiationOfferSubmitted(id, tenantID, consumerID, negotiationType.String()))
	return n, nil
}

// ReconstructNegotiation rebuilds a Negotiation aggregate from persistence.
func ReconstructNegotiation(
	id, tenantID, consumerID string,
	negotiationType valueobject.NegotiationType,
	installmentType valueobject.InstallmentType,
	offer OfferTerms,
	counter *OfferTerms,
	offerAccepted, counterOfferAccepted, active bool,
	paymentPlanCurrentBalance *decimal.Decimal,
	acceptedAt *time.Time,
	version int,
	createdAt, updatedAt time.Time,
) Negotiation {
	return Negotiation{
		id:                        id,
		tenantID:                  tenantID,
		consumerID:                consumerID,
		negotiationType:           negotiationType,
		installmentType:           installmentType,
		offer:                     offer,
		counter:                   counter,
		offerAccepted:             offerAccepted,
		counterOfferAccepted:      counterOfferAccepted,
		active:                    active,
		paymentPlanCurrentBalance: paymentPlanCurrentBalance,
		acceptedAt:                acceptedAt,
		version:                   version,
		createdAt:                 createdAt,
		updatedAt:                 updatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// ProposeCounter records the creditor's counter offer. Frozen negotiations
// cannot be countered.
func (n Negotiation) ProposeCounter(terms OfferTerms, now time.Time) (Negotiation, error) {
	if n.IsAccepted() || !n.active {
		return n, valueobject.ErrInvalidStatusTransition
	}
	if err := terms.validate(n.negotiationType); err != nil {
		return n, fmt.Errorf("counter offer: %w", err)
	}
	terms.FirstPayDate = valueobject.DateOf(terms.FirstPayDate)

	next := n
	next.counter = &terms
	next.updatedAt = now
	next.domainEvents = copyEvents(n.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewCounterOfferProposed(n.id, n.tenantID, n.consumerID))
	return next, nil
}

// Accept accepts the consumer's own offer.
func (n Negotiation) Accept(now time.Time) (Negotiation, error) {
	return n.accept(false, now)
}

// AcceptCounter accepts the creditor's counter offer.
func (n Negotiation) AcceptCounter(now time.Time) (Negotiation, error) {
	if n.counter == nil {
		return n, errors.New("no counter offer to accept")
	}
	return n.accept(true, now)
}

// accept freezes the terms and resolves the remaining-balance source once
// into an explicit payment plan balance.
func (n Negotiation) accept(counter bool, now time.Time) (Negotiation, error) {
	if n.IsAccepted() || !n.active {
		return n, valueobject.ErrInvalidStatusTransition
	}

	next := n
	if counter {
		next.counterOfferAccepted = true
	} else {
		next.offerAccepted = true
	}
	source := next.BalanceSource()
	base := source.Base()
	next.paymentPlanCurrentBalance = &base
	acceptedAt := now
	next.acceptedAt = &acceptedAt
	next.updatedAt = now
	next.domainEvents = copyEvents(n.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewNegotiationAccepted(
		n.id, n.tenantID, n.consumerID, counter, string(source.Kind()), base,
	))
	return next, nil
}

// BalanceSource resolves which field holds the remaining balance. An explicit
// payment plan balance wins; otherwise PIF primary, PIF counter, installment
// primary, installment counter, in that order.
func (n Negotiation) BalanceSource() valueobject.RemainingBalanceSource {
	if n.paymentPlanCurrentBalance != nil {
		return valueobject.ExplicitBalance(*n.paymentPlanCurrentBalance)
	}
	if n.negotiationType.IsPIF() {
		switch {
		case n.offerAccepted:
			return valueobject.PrimaryPIFBalance(n.offer.OneTimeSettlement)
		case n.counterOfferAccepted && n.counter != nil:
			return valueobject.CounterPIFBalance(n.counter.OneTimeSettlement)
		}
		return valueobject.UnresolvedBalance()
	}
	switch {
	case n.offerAccepted:
		return valueobject.PrimaryInstallmentBalance(n.offer.NegotiateAmount)
	case n.counterOfferAccepted && n.counter != nil:
		return valueobject.CounterInstallmentBalance(n.counter.NegotiateAmount)
	}
	return valueobject.UnresolvedBalance()
}

// ApplyPayment lowers the remaining balance by amount, floored at zero. When
// no source can be resolved the negotiation is returned unchanged with
// applied = false.
func (n Negotiation) ApplyPayment(amount decimal.Decimal, now time.Time) (next Negotiation, source valueobject.RemainingBalanceSource, applied bool) {
	source = n.BalanceSource()
	remaining, ok := source.AfterPayment(amount)
	if !ok {
		return n, source, false
	}
	next = n
	next.paymentPlanCurrentBalance = &remaining
	next.updatedAt = now
	next.domainEvents = copyEvents(n.domainEvents)
	return next, source, true
}

// AcceptedPlan returns the frozen terms the schedule is generated from.
// The primary offer wins when both sides are flagged accepted.
func (n Negotiation) AcceptedPlan() (AcceptedPlan, error) {
	var terms OfferTerms
	switch {
	case n.offerAccepted:
		terms = n.offer
	case n.counterOfferAccepted && n.counter != nil:
		terms = *n.counter
	default:
		return AcceptedPlan{}, valueobject.NewPreconditionError("negotiation %s has no accepted offer", n.id)
	}

	source := n.BalanceSource()
	if !source.IsResolved() {
		return AcceptedPlan{}, valueobject.NewPreconditionError("negotiation %s has no resolvable balance", n.id)
	}

	plan := AcceptedPlan{
		NegotiationType: n.negotiationType,
		InstallmentType: n.installmentType,
		Total:           source.Base(),
		FirstPayDate:    terms.FirstPayDate,
	}
	if !n.negotiationType.IsPIF() {
		plan.MonthlyAmount = terms.MonthlyAmount
	}
	return plan, nil
}

// Deactivate ends the negotiation. Deactivated rows stay for history.
func (n Negotiation) Deactivate(now time.Time) (Negotiation, error) {
	if !n.active {
		return n, valueobject.ErrInvalidStatusTransition
	}
	next := n
	next.active = false
	next.updatedAt = now
	next.domainEvents = copyEvents(n.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewNegotiationDeactivated(n.id, n.tenantID, n.consumerID))
	return next, nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (n Negotiation) ID() string                                   { return n.id }
func (n Negotiation) TenantID() string                             { return n.tenantID }
func (n Negotiation) ConsumerID() string                           { return n.consumerID }
func (n Negotiation) NegotiationType() valueobject.NegotiationType { return n.negotiationType }
func (n Negotiation) InstallmentType() valueobject.InstallmentType { return n.installmentType }
func (n Negotiation) Offer() OfferTerms                            { return n.offer }
func (n Negotiation) OfferAccepted() bool                          { return n.offerAccepted }
func (n Negotiation) CounterOfferAccepted() bool                   { return n.counterOfferAccepted }
func (n Negotiation) IsAccepted() bool                             { return n.offerAccepted || n.counterOfferAccepted }
func (n Negotiation) IsActive() bool                               { return n.active }
func (n Negotiation) AcceptedAt() *time.Time                       { return n.acceptedAt }
func (n Negotiation) Version() int                                 { return n.version }
func (n Negotiation) CreatedAt() time.Time                         { return n.createdAt }
func (n Negotiation) UpdatedAt() time.Time                         { return n.updatedAt }
func (n Negotiation) DomainEvents() []event.DomainEvent            { return n.domainEvents }

// Counter returns the counter offer, if any.
func (n Negotiation) Counter() (OfferTerms, bool) {
	if n.counter == nil {
		return OfferTerms{}, false
	}
	return *n.counter, true
}

// PaymentPlanCurrentBalance returns the explicit remaining balance, if set.
func (n Negotiation) PaymentPlanCurrentBalance() (decimal.Decimal, bool) {
	if n.paymentPlanCurrentBalance == nil {
		return decimal.Zero, false
	}
	return *n.paymentPlanCurrentBalance, true
}

// ClearEvents returns a copy with an empty event list.
func (n Negotiation) ClearEvents() Negotiation {
	next := n
	next.domainEvents = nil
	return next
}
