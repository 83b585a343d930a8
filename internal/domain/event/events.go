package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/soumabha1987/yn-dev-sub000/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

// ---------------------------------------------------------------------------
// Negotiation Events
// ---------------------------------------------------------------------------

// NegotiationOfferSubmitted is raised when a consumer opens a negotiation.
type NegotiationOfferSubmitted struct {
	events.BaseEvent
	ConsumerID      string `json:"consumer_id"`
	NegotiationType string `json:"negotiation_type"`
}

func NewNegotiationOfferSubmitted(negotiationID, tenantID, consumerID, negotiationType string) NegotiationOfferSubmitted {
	return NegotiationOfferSubmitted{
		BaseEvent:       events.NewBaseEvent("settlement.negotiation.submitted", negotiationID, "Negotiation", tenantID),
		ConsumerID:      consumerID,
		NegotiationType: negotiationType,
	}
}

// CounterOfferProposed is raised when the creditor answers with a counter offer.
type CounterOfferProposed struct {
	events.BaseEvent
	ConsumerID string `json:"consumer_id"`
}

func NewCounterOfferProposed(negotiationID, tenantID, consumerID string) CounterOfferProposed {
	return CounterOfferProposed{
		BaseEvent:  events.NewBaseEvent("settlement.negotiation.countered", negotiationID, "Negotiation", tenantID),
		ConsumerID: consumerID,
	}
}

// NegotiationAccepted is raised when an offer is accepted and the remaining
// balance has been resolved.
type NegotiationAccepted struct {
	events.BaseEvent
	ConsumerID       string          `json:"consumer_id"`
	CounterOffer     bool            `json:"counter_offer"`
	BalanceSource    string          `json:"balance_source"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

func NewNegotiationAccepted(
	negotiationID, tenantID, consumerID string,
	counter bool, source string, remaining decimal.Decimal,
) NegotiationAccepted {
	return NegotiationAccepted{
		BaseEvent:        events.NewBaseEvent("settlement.negotiation.accepted", negotiationID, "Negotiation", tenantID),
		ConsumerID:       consumerID,
		CounterOffer:     counter,
		BalanceSource:    source,
		RemainingBalance: remaining,
	}
}

// NegotiationDeactivated is raised when a plan is torn down.
type NegotiationDeactivated struct {
	events.BaseEvent
	ConsumerID string `json:"consumer_id"`
}

func NewNegotiationDeactivated(negotiationID, tenantID, consumerID string) NegotiationDeactivated {
	return NegotiationDeactivated{
		BaseEvent:  events.NewBaseEvent("settlement.negotiation.deactivated", negotiationID, "Negotiation", tenantID),
		ConsumerID: consumerID,
	}
}

// ---------------------------------------------------------------------------
// Schedule Events
// ---------------------------------------------------------------------------

// ScheduleGenerated is raised when a payment plan is created.
type ScheduleGenerated struct {
	events.BaseEvent
	NegotiationID string          `json:"negotiation_id"`
	Installments  int             `json:"installments"`
	Total         decimal.Decimal `json:"total"`
	FirstDueDate  time.Time       `json:"first_due_date"`
}

func NewScheduleGenerated(
	consumerID, tenantID, negotiationID string,
	installments int, total decimal.Decimal, firstDue time.Time,
) ScheduleGenerated {
	return ScheduleGenerated{
		BaseEvent:     events.NewBaseEvent("settlement.schedule.generated", consumerID, "Consumer", tenantID),
		NegotiationID: negotiationID,
		Installments:  installments,
		Total:         total,
		FirstDueDate:  firstDue,
	}
}

// PaymentRescheduled is raised when a failed payment is put back on today.
type PaymentRescheduled struct {
	events.BaseEvent
	ConsumerID           string    `json:"consumer_id"`
	PreviousScheduleDate time.Time `json:"previous_schedule_date"`
	ScheduleDate         time.Time `json:"schedule_date"`
}

func NewPaymentRescheduled(paymentID, tenantID, consumerID string, previous, date time.Time) PaymentRescheduled {
	return PaymentRescheduled{
		BaseEvent:            events.NewBaseEvent("settlement.payment.rescheduled", paymentID, "ScheduledPayment", tenantID),
		ConsumerID:           consumerID,
		PreviousScheduleDate: previous,
		ScheduleDate:         date,
	}
}

// PaymentSkipped is raised when the first outstanding payment moves to the end.
type PaymentSkipped struct {
	events.BaseEvent
	ConsumerID   string    `json:"consumer_id"`
	FromDate     time.Time `json:"from_date"`
	ScheduleDate time.Time `json:"schedule_date"`
	Sequence     int       `json:"sequence"`
}

func NewPaymentSkipped(paymentID, tenantID, consumerID string, from, to time.Time, sequence int) PaymentSkipped {
	return PaymentSkipped{
		BaseEvent:    events.NewBaseEvent("settlement.payment.skipped", paymentID, "ScheduledPayment", tenantID),
		ConsumerID:   consumerID,
		FromDate:     from,
		ScheduleDate: to,
		Sequence:     sequence,
	}
}

// PaymentDateChanged is raised on a consumer-initiated date change.
type PaymentDateChanged struct {
	events.BaseEvent
	ConsumerID   string    `json:"consumer_id"`
	FromDate     time.Time `json:"from_date"`
	ScheduleDate time.Time `json:"schedule_date"`
}

func NewPaymentDateChanged(paymentID, tenantID, consumerID string, from, to time.Time) PaymentDateChanged {
	return PaymentDateChanged{
		BaseEvent:    events.NewBaseEvent("settlement.payment.date_changed", paymentID, "ScheduledPayment", tenantID),
		ConsumerID:   consumerID,
		FromDate:     from,
		ScheduleDate: to,
	}
}

// ScheduleCancelled is raised when every outstanding payment is cancelled.
type ScheduleCancelled struct {
	events.BaseEvent
	Cancelled int    `json:"cancelled"`
	Reason    string `json:"reason"`
}

func NewScheduleCancelled(consumerID, tenantID string, cancelled int, reason string) ScheduleCancelled {
	return ScheduleCancelled{
		BaseEvent: events.NewBaseEvent("settlement.schedule.cancelled", consumerID, "Consumer", tenantID),
		Cancelled: cancelled,
		Reason:    reason,
	}
}

// ---------------------------------------------------------------------------
// Payment Events
// ---------------------------------------------------------------------------

// PaymentSucceeded is raised for every SUCCESSFUL transaction.
type PaymentSucceeded struct {
	events.BaseEvent
	ConsumerID           string          `json:"consumer_id"`
	ScheduledPaymentIDs  []string        `json:"scheduled_payment_ids"`
	TransactionType      string          `json:"transaction_type"`
	Amount               decimal.Decimal `json:"amount"`
	RnnInvoiceID         int64           `json:"rnn_invoice_id"`
	GatewayTransactionID string          `json:"gateway_transaction_id"`
}

func NewPaymentSucceeded(
	transactionID, tenantID, consumerID string,
	scheduledPaymentIDs []string, transactionType string,
	amount decimal.Decimal, rnnInvoiceID int64, gatewayTransactionID string,
) PaymentSucceeded {
	return PaymentSucceeded{
		BaseEvent:            events.NewBaseEvent("settlement.payment.succeeded", transactionID, "Transaction", tenantID),
		ConsumerID:           consumerID,
		ScheduledPaymentIDs:  scheduledPaymentIDs,
		TransactionType:      transactionType,
		Amount:               amount,
		RnnInvoiceID:         rnnInvoiceID,
		GatewayTransactionID: gatewayTransactionID,
	}
}

// PaymentFailed is raised for every FAILED transaction.
type PaymentFailed struct {
	events.BaseEvent
	ConsumerID         string          `json:"consumer_id"`
	ScheduledPaymentID string          `json:"scheduled_payment_id,omitempty"`
	Amount             decimal.Decimal `json:"amount"`
	Reason             string          `json:"reason"`
}

func NewPaymentFailed(transactionID, tenantID, consumerID, scheduledPaymentID string, amount decimal.Decimal, reason string) PaymentFailed {
	return PaymentFailed{
		BaseEvent:          events.NewBaseEvent("settlement.payment.failed", transactionID, "Transaction", tenantID),
		ConsumerID:         consumerID,
		ScheduledPaymentID: scheduledPaymentID,
		Amount:             amount,
		Reason:             reason,
	}
}

// RevenueShareAllocated is raised when a settled amount is split.
type RevenueShareAllocated struct {
	events.BaseEvent
	ConsumerID        string          `json:"consumer_id"`
	PlatformInvoiceID int64           `json:"platform_invoice_id"`
	PlatformShare     decimal.Decimal `json:"yn_share"`
	CompanyShare      decimal.Decimal `json:"company_share"`
	PartnerID         string          `json:"partner_id,omitempty"`
	PartnerShare      decimal.Decimal `json:"partner_revenue_share"`
}

func NewRevenueShareAllocated(
	transactionID, tenantID, consumerID string, platformInvoiceID int64,
	platformShare, companyShare decimal.Decimal, partnerID string, partnerShare decimal.Decimal,
) RevenueShareAllocated {
	return RevenueShareAllocated{
		BaseEvent:         events.NewBaseEvent("settlement.revenue_share.allocated", transactionID, "Transaction", tenantID),
		ConsumerID:        consumerID,
		PlatformInvoiceID: platformInvoiceID,
		PlatformShare:     platformShare,
		CompanyShare:      companyShare,
		PartnerID:         partnerID,
		PartnerShare:      partnerShare,
	}
}

// ---------------------------------------------------------------------------
// Consumer Events
// ---------------------------------------------------------------------------

// ConsumerSettled is raised when the last outstanding payment succeeds.
type ConsumerSettled struct {
	events.BaseEvent
	CurrentBalance decimal.Decimal `json:"current_balance"`
}

func NewConsumerSettled(consumerID, tenantID string, currentBalance decimal.Decimal) ConsumerSettled {
	return ConsumerSettled{
		BaseEvent:      events.NewBaseEvent("settlement.consumer.settled", consumerID, "Consumer", tenantID),
		CurrentBalance: currentBalance,
	}
}
