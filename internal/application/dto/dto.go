package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// SubmitOfferRequest opens a negotiation for a consumer.
type SubmitOfferRequest struct {
	TenantID          string          `json:"tenant_id"`
	ConsumerID        string          `json:"consumer_id"`
	NegotiationType   string          `json:"negotiation_type"`
	InstallmentType   string          `json:"installment_type,omitempty"`
	OneTimeSettlement decimal.Decimal `json:"one_time_settlement"`
	NegotiateAmount   decimal.Decimal `json:"negotiate_amount"`
	MonthlyAmount     decimal.Decimal `json:"monthly_amount"`
	FirstPayDate      time.Time       `json:"first_pay_date"`
}

// ProposeCounterOfferRequest carries the creditor's counter terms.
type ProposeCounterOfferRequest struct {
	TenantID          string          `json:"tenant_id"`
	NegotiationID     string          `json:"negotiation_id"`
	OneTimeSettlement decimal.Decimal `json:"counter_one_time_amount"`
	NegotiateAmount   decimal.Decimal `json:"counter_negotiate_amount"`
	MonthlyAmount     decimal.Decimal `json:"counter_monthly_amount"`
	FirstPayDate      time.Time       `json:"counter_first_pay_date"`
}

// AcceptOfferRequest accepts the primary offer, or the counter offer when
// Counter is set.
type AcceptOfferRequest struct {
	TenantID      string `json:"tenant_id"`
	NegotiationID string `json:"negotiation_id"`
	Counter       bool   `json:"counter"`
}

// GenerateScheduleRequest builds the plan of the consumer's accepted negotiation.
type GenerateScheduleRequest struct {
	TenantID         string `json:"tenant_id"`
	ConsumerID       string `json:"consumer_id"`
	PaymentProfileID string `json:"payment_profile_id,omitempty"`
}

// AttemptPaymentRequest charges one scheduled payment.
type AttemptPaymentRequest struct {
	TenantID                 string `json:"tenant_id"`
	ConsumerID               string `json:"consumer_id"`
	ScheduledPaymentID       string `json:"scheduled_payment_id"`
	ExternalPaymentProfileID string `json:"external_payment_profile_id,omitempty"`
}

// PayCustomAmountRequest charges an arbitrary amount against the plan.
type PayCustomAmountRequest struct {
	TenantID                 string          `json:"tenant_id"`
	ConsumerID               string          `json:"consumer_id"`
	Amount                   decimal.Decimal `json:"amount"`
	PaymentProfileID         string          `json:"payment_profile_id,omitempty"`
	ExternalPaymentProfileID string          `json:"external_payment_profile_id,omitempty"`
}

// PayoffRemainingRequest charges every SCHEDULED payment at once.
type PayoffRemainingRequest struct {
	TenantID                 string `json:"tenant_id"`
	ConsumerID               string `json:"consumer_id"`
	PaymentProfileID         string `json:"payment_profile_id,omitempty"`
	ExternalPaymentProfileID string `json:"external_payment_profile_id,omitempty"`
}

// ScheduledPaymentRequest identifies one scheduled payment.
type ScheduledPaymentRequest struct {
	TenantID           string `json:"tenant_id"`
	ConsumerID         string `json:"consumer_id"`
	ScheduledPaymentID string `json:"scheduled_payment_id"`
}

// ChangePaymentDateRequest moves a scheduled payment to NewDate.
type ChangePaymentDateRequest struct {
	TenantID           string    `json:"tenant_id"`
	ConsumerID         string    `json:"consumer_id"`
	ScheduledPaymentID string    `json:"scheduled_payment_id"`
	NewDate            time.Time `json:"new_date"`
}

// CancelScheduleRequest cancels every outstanding payment of a consumer.
type CancelScheduleRequest struct {
	TenantID              string `json:"tenant_id"`
	ConsumerID            string `json:"consumer_id"`
	Reason                string `json:"reason"`
	DeactivateNegotiation bool   `json:"deactivate_negotiation"`
}

// ConsumerRequest identifies a consumer.
type ConsumerRequest struct {
	TenantID   string `json:"tenant_id"`
	ConsumerID string `json:"consumer_id"`
}

// ListScheduledPaymentsRequest filters plan rows by status.
type ListScheduledPaymentsRequest struct {
	TenantID   string   `json:"tenant_id"`
	ConsumerID string   `json:"consumer_id"`
	Statuses   []string `json:"statuses,omitempty"`
}

// ListTransactionsRequest lists a consumer's transactions, optionally by status.
type ListTransactionsRequest struct {
	TenantID   string `json:"tenant_id"`
	ConsumerID string `json:"consumer_id"`
	Status     string `json:"status,omitempty"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// OfferTermsResponse is one side of a negotiation.
type OfferTermsResponse struct {
	OneTimeSettlement decimal.Decimal `json:"one_time_settlement"`
	NegotiateAmount   decimal.Decimal `json:"negotiate_amount"`
	MonthlyAmount     decimal.Decimal `json:"monthly_amount"`
	FirstPayDate      time.Time       `json:"first_pay_date"`
}

// NegotiationResponse is the external representation of a negotiation.
type NegotiationResponse struct {
	ID                        string              `json:"id"`
	TenantID                  string              `json:"tenant_id"`
	ConsumerID                string              `json:"consumer_id"`
	NegotiationType           string              `json:"negotiation_type"`
	InstallmentType           string              `json:"installment_type,omitempty"`
	Offer                     OfferTermsResponse  `json:"offer"`
	Counter                   *OfferTermsResponse `json:"counter,omitempty"`
	OfferAccepted             bool                `json:"offer_accepted"`
	CounterOfferAccepted      bool                `json:"counter_offer_accepted"`
	Active                    bool                `json:"active_negotiation"`
	PaymentPlanCurrentBalance *decimal.Decimal    `json:"payment_plan_current_balance,omitempty"`
	CreatedAt                 time.Time           `json:"created_at"`
	UpdatedAt                 time.Time           `json:"updated_at"`
}

// ScheduledPaymentResponse is the external representation of a plan row.
type ScheduledPaymentResponse struct {
	ID                     string          `json:"id"`
	ConsumerID             string          `json:"consumer_id"`
	PaymentProfileID       string          `json:"payment_profile_id,omitempty"`
	Sequence               int             `json:"sequence"`
	ScheduleDate           time.Time       `json:"schedule_date"`
	PreviousScheduleDate   *time.Time      `json:"previous_schedule_date,omitempty"`
	Amount                 decimal.Decimal `json:"amount"`
	Status                 string          `json:"status"`
	AttemptCount           int             `json:"attempt_count"`
	LastAttemptedAt        *time.Time      `json:"last_attempted_at,omitempty"`
	RevenueSharePercentage decimal.Decimal `json:"revenue_share_percentage"`
	TransactionID          string          `json:"transaction_id,omitempty"`
}

// ScheduleResponse is a consumer's plan.
type ScheduleResponse struct {
	ConsumerID string                     `json:"consumer_id"`
	Payments   []ScheduledPaymentResponse `json:"payments"`
	Total      decimal.Decimal            `json:"total"`
}

// RevenueShareResponse is the split attached to a successful transaction.
type RevenueShareResponse struct {
	PlatformInvoiceID   int64           `json:"platform_invoice_id"`
	Percentage          decimal.Decimal `json:"percentage"`
	PlatformShare       decimal.Decimal `json:"yn_share"`
	CompanyShare        decimal.Decimal `json:"company_share"`
	PartnerID           string          `json:"partner_id,omitempty"`
	PartnerRevenueShare decimal.Decimal `json:"partner_revenue_share"`
}

// TransactionResponse is the external representation of a transaction.
type TransactionResponse struct {
	ID                       string                `json:"id"`
	ConsumerID               string                `json:"consumer_id"`
	ScheduledPaymentIDs      []string              `json:"scheduled_payment_ids,omitempty"`
	PaymentProfileID         string                `json:"payment_profile_id,omitempty"`
	ExternalPaymentProfileID string                `json:"external_payment_profile_id,omitempty"`
	Status                   string                `json:"status"`
	TransactionType          string                `json:"transaction_type"`
	Amount                   decimal.Decimal       `json:"amount"`
	RnnInvoiceID             int64                 `json:"rnn_invoice_id"`
	GatewayTransactionID     string                `json:"gateway_transaction_id,omitempty"`
	FailureReason            string                `json:"failure_reason,omitempty"`
	RevenueShare             *RevenueShareResponse `json:"revenue_share,omitempty"`
	CreatedAt                time.Time             `json:"created_at"`
}

// PaymentResultResponse is the outcome of a charge.
type PaymentResultResponse struct {
	Transaction      TransactionResponse `json:"transaction"`
	ConsumerStatus   string              `json:"consumer_status"`
	CurrentBalance   decimal.Decimal     `json:"current_balance"`
	RemainingBalance *decimal.Decimal    `json:"remaining_balance,omitempty"`
	Settled          bool                `json:"settled"`
}

// CancelScheduleResponse reports how many rows were cancelled.
type CancelScheduleResponse struct {
	ConsumerID string `json:"consumer_id"`
	Cancelled  int    `json:"cancelled"`
}

// ConsumerSnapshotResponse is the read-only view of a consumer's negotiation
// and payment state.
type ConsumerSnapshotResponse struct {
	ConsumerID        string                    `json:"consumer_id"`
	TenantID          string                    `json:"tenant_id"`
	Status            string                    `json:"status"`
	CurrentBalance    decimal.Decimal           `json:"current_balance"`
	TotalBalance      decimal.Decimal           `json:"total_balance"`
	HasFailedPayment  bool                      `json:"has_failed_payment"`
	Negotiation       *NegotiationResponse      `json:"negotiation,omitempty"`
	RemainingBalance  *decimal.Decimal          `json:"remaining_balance,omitempty"`
	BalanceSource     string                    `json:"balance_source"`
	ScheduledCount    int                       `json:"scheduled_count"`
	FailedCount       int                       `json:"failed_count"`
	SuccessfulCount   int                       `json:"successful_count"`
	CancelledCount    int                       `json:"cancelled_count"`
	OutstandingTotal  decimal.Decimal           `json:"outstanding_total"`
	NextPayment       *ScheduledPaymentResponse `json:"next_payment,omitempty"`
	LastTransactionAt *time.Time                `json:"last_transaction_at,omitempty"`
	TotalPaid         decimal.Decimal           `json:"total_paid"`
}
