package grpc

import (
	"context"
	"log/slog"

	"github.com/soumabha1987/yn-dev-sub000/internal/application/dto"
)

// Command is one application use case.
type Command[Req, Resp any] interface {
	Execute(ctx context.Context, req Req) (Resp, error)
}

// Payments charges consumers through the payment processor.
type Payments interface {
	AttemptPayment(ctx context.Context, req dto.AttemptPaymentRequest) (dto.PaymentResultResponse, error)
	PayCustomAmount(ctx context.Context, req dto.PayCustomAmountRequest) (dto.PaymentResultResponse, error)
	PayoffRemaining(ctx context.Context, req dto.PayoffRemainingRequest) (dto.PaymentResultResponse, error)
}

// Purger deletes everything held for a consumer.
type Purger interface {
	Execute(ctx context.Context, req dto.ConsumerRequest) error
}

// UseCases groups the handler's dependencies.
type UseCases struct {
	SubmitOffer         Command[dto.SubmitOfferRequest, dto.NegotiationResponse]
	ProposeCounterOffer Command[dto.ProposeCounterOfferRequest, dto.NegotiationResponse]
	AcceptOffer         Command[dto.AcceptOfferRequest, dto.NegotiationResponse]
	GenerateSchedule    Command[dto.GenerateScheduleRequest, dto.ScheduleResponse]
	ReschedulePayment   Command[dto.ScheduledPaymentRequest, dto.ScheduledPaymentResponse]
	SkipPayment         Command[dto.ScheduledPaymentRequest, dto.ScheduleResponse]
	ChangePaymentDate   Command[dto.ChangePaymentDateRequest, dto.ScheduledPaymentResponse]
	CancelSchedule      Command[dto.CancelScheduleRequest, dto.CancelScheduleResponse]
	ConsumerSnapshot    Command[dto.ConsumerRequest, dto.ConsumerSnapshotResponse]
	ScheduledPayments   Command[dto.ListScheduledPaymentsRequest, dto.ScheduleResponse]
	Transactions        Command[dto.ListTransactionsRequest, []dto.TransactionResponse]
	PurgeConsumer       Purger
	Payments            Payments
}

// Compile-time assertion that Handler implements SettlementServiceServer.
var _ SettlementServiceServer = (*Handler)(nil)

// Handler implements the SettlementServiceServer gRPC interface.
type Handler struct {
	UnimplementedSettlementServiceServer
	uc     UseCases
	logger *slog.Logger
}

func NewHandler(uc UseCases, logger *slog.Logger) *Handler {
	return &Handler{uc: uc, logger: logger}
}

// ---------------------------------------------------------------------------
// Negotiation
// ---------------------------------------------------------------------------

func (h *Handler) SubmitOffer(ctx context.Context, req *dto.SubmitOfferRequest) (*dto.NegotiationResponse, error) {
	if err := required("tenant_id", req.TenantID, "consumer_id", req.ConsumerID, "negotiation_type", req.NegotiationType); err != nil {
		return nil, err
	}
	resp, err := h.uc.SubmitOffer.Execute(ctx, *req)
	return respond(ctx, h.logger, "SubmitOffer", resp, err)
}

func (h *Handler) ProposeCounterOffer(ctx context.Context, req *dto.ProposeCounterOfferRequest) (*dto.NegotiationResponse, error) {
	if err := required("tenant_id", req.TenantID, "negotiation_id", req.NegotiationID); err != nil {
		return nil, err
	}
	resp, err := h.uc.ProposeCounterOffer.Execute(ctx, *req)
	return respond(ctx, h.logger, "ProposeCounterOffer", resp, err)
}

func (h *Handler) AcceptOffer(ctx context.Context, req *dto.AcceptOfferRequest) (*dto.NegotiationResponse, error) {
	if err := required("tenant_id", req.TenantID, "negotiation_id", req.NegotiationID); err != nil {
		return nil, err
	}
	resp, err := h.uc.AcceptOffer.Execute(ctx, *req)
	return respond(ctx, h.logger, "AcceptOffer", resp, err)
}

// ---------------------------------------------------------------------------
// Schedule
// ---------------------------------------------------------------------------

func (h *Handler) GenerateSchedule(ctx context.Context, req *dto.GenerateScheduleRequest) (*dto.ScheduleResponse, error) {
	if err := required("tenant_id", req.TenantID, "consumer_id", req.ConsumerID); err != nil {
		return nil, err
	}
	resp, err := h.uc.GenerateSchedule.Execute(ctx, *req)
	return respond(ctx, h.logger, "GenerateSchedule", resp, err)
}

func (h *Handler) ReschedulePayment(ctx context.Context, req *dto.ScheduledPaymentRequest) (*dto.ScheduledPaymentResponse, error) {
	if err := required("tenant_id", req.TenantID, "consumer_id", req.ConsumerID, "scheduled_payment_id", req.ScheduledPaymentID); err != nil {
		return nil, err
	}
	resp, err := h.uc.ReschedulePayment.Execute(ctx, *req)
	return respond(ctx, h.logger, "ReschedulePayment", resp, err)
}

func (h *Handler) SkipPayment(ctx context.Context, req *dto.ScheduledPaymentRequest) (*dto.ScheduleResponse, error) {
	if err := required("tenant_id", req.TenantID, "consumer_id", req.ConsumerID, "scheduled_payment_id", req.ScheduledPaymentID); err != nil {
		return nil, err
	}
	resp, err := h.uc.SkipPayment.Execute(ctx, *req)
	return respond(ctx, h.logger, "SkipPayment", resp, err)
}

func (h *Handler) ChangePaymentDate(ctx context.Context, req *dto.ChangePaymentDateRequest) (*dto.ScheduledPaymentResponse, error) {
	if err := required("tenant_id", req.TenantID, "consumer_id", req.ConsumerID, "scheduled_payment_id", req.ScheduledPaymentID); err != nil {
		return nil, err
	}
	if req.NewDate.IsZero() {
		return nil, invalidArgument("new_date is required")
	}
	resp, err := h.uc.ChangePaymentDate.Execute(ctx, *req)
	return respond(ctx, h.logger, "ChangePaymentDate", resp, err)
}

func (h *Handler) CancelSchedule(ctx context.Context, req *dto.CancelScheduleRequest) (*dto.CancelScheduleResponse, error) {
	if err := required("tenant_id", req.TenantID, "consumer_id", req.ConsumerID); err != nil {
		return nil, err
	}
	resp, err := h.uc.CancelSchedule.Execute(ctx, *req)
	return respond(ctx, h.logger, "CancelSchedule", resp, err)
}

func (h *Handler) PurgeConsumer(ctx context.Context, req *dto.ConsumerRequest) (*Empty, error) {
	if err := required("tenant_id", req.TenantID, "consumer_id", req.ConsumerID); err != nil {
		return nil, err
	}
	err := h.uc.PurgeConsumer.Execute(ctx, *req)
	return respond(ctx, h.logger, "PurgeConsumer", Empty{}, err)
}

// ---------------------------------------------------------------------------
// Payments
// ---------------------------------------------------------------------------

func (h *Handler) AttemptPayment(ctx context.Context, req *dto.AttemptPaymentRequest) (*dto.PaymentResultResponse, error) {
	if err := required("tenant_id", req.TenantID, "consumer_id", req.ConsumerID, "scheduled_payment_id", req.ScheduledPaymentID); err != nil {
		return nil, err
	}
	resp, err := h.uc.Payments.AttemptPayment(ctx, *req)
	return respondPayment(ctx, h.logger, "AttemptPayment", resp, err)
}

func (h *Handler) PayCustomAmount(ctx context.Context, req *dto.PayCustomAmountRequest) (*dto.PaymentResultResponse, error) {
	if err := required("tenant_id", req.TenantID, "consumer_id", req.ConsumerID); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, invalidArgument("amount must be positive")
	}
	resp, err := h.uc.Payments.PayCustomAmount(ctx, *req)
	return respondPayment(ctx, h.logger, "PayCustomAmount", resp, err)
}

func (h *Handler) PayoffRemaining(ctx context.Context, req *dto.PayoffRemainingRequest) (*dto.PaymentResultResponse, error) {
	if err := required("tenant_id", req.TenantID, "consumer_id", req.ConsumerID); err != nil {
		return nil, err
	}
	resp, err := h.uc.Payments.PayoffRemaining(ctx, *req)
	return respondPayment(ctx, h.logger, "PayoffRemaining", resp, err)
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

func (h *Handler) GetConsumerSnapshot(ctx context.Context, req *dto.ConsumerRequest) (*dto.ConsumerSnapshotResponse, error) {
	if err := required("tenant_id", req.TenantID, "consumer_id", req.ConsumerID); err != nil {
		return nil, err
	}
	resp, err := h.uc.ConsumerSnapshot.Execute(ctx, *req)
	return respond(ctx, h.logger, "GetConsumerSnapshot", resp, err)
}

func (h *Handler) ListScheduledPayments(ctx context.Context, req *dto.ListScheduledPaymentsRequest) (*dto.ScheduleResponse, error) {
	if err := required("tenant_id", req.TenantID, "consumer_id", req.ConsumerID); err != nil {
		return nil, err
	}
	resp, err := h.uc.ScheduledPayments.Execute(ctx, *req)
	return respond(ctx, h.logger, "ListScheduledPayments", resp, err)
}

func (h *Handler) ListTransactions(ctx context.Context, req *dto.ListTransactionsRequest) (*TransactionList, error) {
	if err := required("tenant_id", req.TenantID, "consumer_id", req.ConsumerID); err != nil {
		return nil, err
	}
	txns, err := h.uc.Transactions.Execute(ctx, *req)
	return respond(ctx, h.logger, "ListTransactions", TransactionList{Transactions: txns}, err)
}
