package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/soumabha1987/yn-dev-sub000/internal/application/dto"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
	"github.com/soumabha1987/yn-dev-sub000/internal/infrastructure/metrics"
	pkgkafka "github.com/soumabha1987/yn-dev-sub000/pkg/kafka"
)

// Due-payment outcomes as counted in metrics.
const (
	DueOutcomeSucceeded = "succeeded"
	DueOutcomeDeclined  = "declined"
	DueOutcomeSkipped   = "skipped"
	DueOutcomeMalformed = "malformed"
	DueOutcomeError     = "error"
)

// PaymentAttempter charges one scheduled payment.
type PaymentAttempter interface {
	AttemptPayment(ctx context.Context, req dto.AttemptPaymentRequest) (dto.PaymentResultResponse, error)
}

// DuePaymentMessage is published by the scheduler for every payment that
// falls due.
type DuePaymentMessage struct {
	TenantID           string `json:"tenant_id"`
	ConsumerID         string `json:"consumer_id"`
	ScheduledPaymentID string `json:"scheduled_payment_id"`
}

// DuePaymentHandler turns due-payment messages into AttemptPayment calls.
type DuePaymentHandler struct {
	payments PaymentAttempter
	metrics  *metrics.Collectors
	logger   *slog.Logger
}

func NewDuePaymentHandler(payments PaymentAttempter, m *metrics.Collectors, logger *slog.Logger) *DuePaymentHandler {
	return &DuePaymentHandler{payments: payments, metrics: m, logger: logger}
}

// Handle processes one message. Declines and rows that are no longer
// chargeable are final outcomes and return nil. Undecodable messages and
// charges that need manual reconciliation are returned as permanent errors;
// any other failure is returned for retry.
func (h *DuePaymentHandler) Handle(ctx context.Context, msg pkgkafka.Message) error {
	var due DuePaymentMessage
	if err := json.Unmarshal(msg.Value, &due); err != nil {
		h.count(DueOutcomeMalformed)
		return pkgkafka.Permanent(fmt.Errorf("decode due payment: %w", err))
	}
	if due.TenantID == "" || due.ConsumerID == "" || due.ScheduledPaymentID == "" {
		h.count(DueOutcomeMalformed)
		return pkgkafka.Permanent(errors.New("decode due payment: tenant_id, consumer_id and scheduled_payment_id are required"))
	}

	log := h.logger.With(
		"tenant_id", due.TenantID,
		"consumer_id", due.ConsumerID,
		"scheduled_payment_id", due.ScheduledPaymentID,
	)

	resp, err := h.payments.AttemptPayment(ctx, dto.AttemptPaymentRequest{
		TenantID:           due.TenantID,
		ConsumerID:         due.ConsumerID,
		ScheduledPaymentID: due.ScheduledPaymentID,
	})
	switch {
	case err == nil:
		h.count(DueOutcomeSucceeded)
		log.Info("due payment collected", "transaction_id", resp.Transaction.ID, "settled", resp.Settled)
		return nil
	case errors.Is(err, valueobject.ErrPaymentFailed):
		h.count(DueOutcomeDeclined)
		log.Warn("due payment declined", "transaction_id", resp.Transaction.ID, "reason", resp.Transaction.FailureReason)
		return nil
	case errors.Is(err, valueobject.ErrNotEligible),
		errors.Is(err, valueobject.ErrNotFound),
		errors.Is(err, valueobject.ErrPreconditionFailed):
		h.count(DueOutcomeSkipped)
		log.Info("due payment skipped", "reason", err.Error())
		return nil
	case errors.Is(err, valueobject.ErrReconciliationRequired):
		// The charge went through; a redelivery must not charge again.
		h.count(DueOutcomeError)
		return pkgkafka.Permanent(fmt.Errorf("attempt due payment %s: %w", due.ScheduledPaymentID, err))
	default:
		h.count(DueOutcomeError)
		return fmt.Errorf("attempt due payment %s: %w", due.ScheduledPaymentID, err)
	}
}

func (h *DuePaymentHandler) count(outcome string) {
	if h.metrics != nil {
		h.metrics.DuePayments.WithLabelValues(outcome).Inc()
	}
}
