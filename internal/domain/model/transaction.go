package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/event"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
)

// TransactionAttempt carries what is known about one gateway attempt.
type TransactionAttempt struct {
	TenantID                 string
	ConsumerID               string
	ScheduledPaymentIDs      []string
	PaymentProfileID         string
	ExternalPaymentProfileID string
	Type                     valueobject.TransactionType
	Amount                   decimal.Decimal
	RnnInvoiceID             int64
	GatewayTransactionID     string
	RawResponse              []byte
	FailureReason            string
}

func (a TransactionAttempt) validate() error {
	if a.ConsumerID == "" {
		return errors.New("consumer ID is required")
	}
	if a.Type.IsZero() {
		return errors.New("transaction type is required")
	}
	if !a.Amount.IsPositive() {
		return errors.New("transaction amount must be positive")
	}
	if a.RnnInvoiceID <= 0 {
		return errors.New("invoice number is required")
	}
	return nil
}

// ---------------------------------------------------------------------------
// Transaction (immutable record of one gateway attempt)
// ---------------------------------------------------------------------------

// Transaction records the outcome of a single gateway attempt. Apart from the
// revenue share attached on settlement it never changes after creation.
type Transaction struct {
	id                       string
	tenantID                 string
	consumerID               string
	scheduledPaymentIDs      []string
	paymentProfileID         string
	externalPaymentProfileID string
	status                   valueobject.TransactionStatus
	transactionType          valueobject.TransactionType
	amount                   decimal.Decimal
	rnnInvoiceID             int64
	gatewayTransactionID     string
	rawResponse              []byte
	failureReason            string
	revenueShare             *valueobject.RevenueShare
	platformInvoiceID        int64
	createdAt                time.Time
	domainEvents             []event.DomainEvent
}

// NewSuccessfulTransaction records a charge the gateway accepted.
func NewSuccessfulTransaction(a TransactionAttempt, now time.Time) (Transaction, error) {
	if err := a.validate(); err != nil {
		return Transaction{}, err
	}
	tx := newTransaction(a, valueobject.TransactionStatusSuccessful, now)
	tx.domainEvents = append(tx.domainEvents, event.NewPaymentSucceeded(
		tx.id, a.TenantID, a.ConsumerID, tx.scheduledPaymentIDs, a.Type.String(),
		a.Amount, a.RnnInvoiceID, a.GatewayTransactionID,
	))
	return tx, nil
}

// NewFailedTransaction records a declined, errored or timed-out charge.
func NewFailedTransaction(a TransactionAttempt, now time.Time) (Transaction, error) {
	if err := a.validate(); err != nil {
		return Transaction{}, err
	}
	tx := newTransaction(a, valueobject.TransactionStatusFailed, now)
	var scheduledPaymentID string
	if len(tx.scheduledPaymentIDs) > 0 {
		scheduledPaymentID = tx.scheduledPaymentIDs[0]
	}
	tx.domainEvents = append(tx.domainEvents, event.NewPaymentFailed(
		tx.id, a.TenantID, a.ConsumerID, scheduledPaymentID, a.Amount, a.FailureReason,
	))
	return tx, nil
}

func newTransaction(a TransactionAttempt, status valueobject.TransactionStatus, now time.Time) Transaction {
	ids := make([]string, len(a.ScheduledPaymentIDs))
	copy(ids, a.ScheduledPaymentIDs)
	return Transaction{
		id:                       uuid.New().String(),
		tenantID:                 a.TenantID,
		consumerID:               a.ConsumerID,
		scheduledPaymentIDs:      ids,
		paymentProfileID:         a.PaymentProfileID,
		externalPaymentProfileID: a.ExternalPaymentProfileID,
		status:                   status,
		transactionType:          a.Type,
		amount:                   a.Amount,
		rnnInvoiceID:             a.RnnInvoiceID,
		gatewayTransactionID:     a.GatewayTransactionID,
		rawResponse:              a.RawResponse,
		failureReason:            a.FailureReason,
		createdAt:                now,
	}
}

// ReconstructTransaction rebuilds a Transaction from persistence.
func ReconstructTransaction(
	id, tenantID, consumerID string,
	scheduledPaymentIDs []string,
	paymentProfileID, externalPaymentProfileID string,
	status valueobject.TransactionStatus,
	transactionType valueobject.TransactionType,
	amount decimal.Decimal,
	rnnInvoiceID int64,
	gatewayTransactionID string,
	rawResponse []byte,
	failureReason string,
	revenueShare *valueobject.RevenueShare,
	platformInvoiceID int64,
	createdAt time.Time,
) Transaction {
	return Transaction{
		id:                       id,
		tenantID:                 tenantID,
		consumerID:               consumerID,
		scheduledPaymentIDs:      scheduledPaymentIDs,
		paymentProfileID:         paymentProfileID,
		externalPaymentProfileID: externalPaymentProfileID,
		status:                   status,
		transactionType:          transactionType,
		amount:                   amount,
		rnnInvoiceID:             rnnInvoiceID,
		gatewayTransactionID:     gatewayTransactionID,
		rawResponse:              rawResponse,
		failureReason:            failureReason,
		revenueShare:             revenueShare,
		platformInvoiceID:        platformInvoiceID,
		createdAt:                createdAt,
	}
}

// WithRevenueShare attaches the settlement split and its platform invoice.
func (t Transaction) WithRevenueShare(share valueobject.RevenueShare, platformInvoiceID int64) (Transaction, error) {
	if !t.IsSuccessful() {
		return t, errors.New("revenue share applies to successful transactions only")
	}
	if t.revenueShare != nil {
		return t, errors.New("revenue share already allocated")
	}
	next := t
	next.revenueShare = &share
	next.platformInvoiceID = platformInvoiceID
	next.domainEvents = copyEvents(t.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewRevenueShareAllocated(
		t.id, t.tenantID, t.consumerID, platformInvoiceID,
		share.PlatformShare, share.CompanyShare, share.PartnerID, share.PartnerShare,
	))
	return next, nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (t Transaction) ID() string                                   { return t.id }
func (t Transaction) TenantID() string                             { return t.tenantID }
func (t Transaction) ConsumerID() string                           { return t.consumerID }
func (t Transaction) ScheduledPaymentIDs() []string                { return t.scheduledPaymentIDs }
func (t Transaction) PaymentProfileID() string                     { return t.paymentProfileID }
func (t Transaction) ExternalPaymentProfileID() string             { return t.externalPaymentProfileID }
func (t Transaction) Status() valueobject.TransactionStatus        { return t.status }
func (t Transaction) TransactionType() valueobject.TransactionType { return t.transactionType }
func (t Transaction) Amount() decimal.Decimal                      { return t.amount }
func (t Transaction) RnnInvoiceID() int64                          { return t.rnnInvoiceID }
func (t Transaction) GatewayTransactionID() string                 { return t.gatewayTransactionID }
func (t Transaction) RawResponse() []byte                          { return t.rawResponse }
func (t Transaction) FailureReason() string                        { return t.failureReason }
func (t Transaction) RevenueShare() *valueobject.RevenueShare      { return t.revenueShare }
func (t Transaction) PlatformInvoiceID() int64                     { return t.platformInvoiceID }
func (t Transaction) CreatedAt() time.Time                         { return t.createdAt }
func (t Transaction) DomainEvents() []event.DomainEvent            { return t.domainEvents }

// IsSuccessful reports whether the gateway accepted the charge.
func (t Transaction) IsSuccessful() bool {
	return t.status.Equal(valueobject.TransactionStatusSuccessful)
}

// ScheduledPaymentID returns the single row this transaction resolves, if any.
func (t Transaction) ScheduledPaymentID() string {
	if len(t.scheduledPaymentIDs) == 1 {
		return t.scheduledPaymentIDs[0]
	}
	return ""
}

// ClearEvents returns a copy with an empty event list.
func (t Transaction) ClearEvents() Transaction {
	next := t
	next.domainEvents = nil
	return next
}
