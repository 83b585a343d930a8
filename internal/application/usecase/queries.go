package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/soumabha1987/yn-dev-sub000/internal/application/dto"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/model"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/port"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
)

// GetConsumerSnapshotUseCase assembles the read-only view of a consumer's
// balances, negotiation and plan. It writes nothing.
type GetConsumerSnapshotUseCase struct {
	uow port.UnitOfWork
}

// NewGetConsumerSnapshotUseCase wires dependencies.
func NewGetConsumerSnapshotUseCase(uow port.UnitOfWork) *GetConsumerSnapshotUseCase {
	return &GetConsumerSnapshotUseCase{uow: uow}
}

// Execute reads the snapshot.
func (uc *GetConsumerSnapshotUseCase) Execute(ctx context.Context, req dto.ConsumerRequest) (dto.ConsumerSnapshotResponse, error) {
	var resp dto.ConsumerSnapshotResponse

	err := uc.uow.Within(ctx, func(ctx context.Context, repos port.Repositories) error {
		consumer, err := repos.Consumers.FindByID(ctx, req.TenantID, req.ConsumerID)
		if err != nil {
			return fmt.Errorf("find consumer: %w", err)
		}
		resp = dto.ConsumerSnapshotResponse{
			ConsumerID:       consumer.ID(),
			TenantID:         consumer.TenantID(),
			Status:           consumer.Status().String(),
			CurrentBalance:   consumer.CurrentBalance(),
			TotalBalance:     consumer.TotalBalance(),
			HasFailedPayment: consumer.HasFailedPayment(),
			BalanceSource:    string(valueobject.UnresolvedBalance().Kind()),
			OutstandingTotal: decimal.Zero,
			TotalPaid:        decimal.Zero,
		}

		negotiation, err := repos.Negotiations.FindActiveByConsumer(ctx, req.TenantID, req.ConsumerID)
		switch {
		case errors.Is(err, valueobject.ErrNotFound):
		case err != nil:
			return fmt.Errorf("find negotiation: %w", err)
		default:
			n := toNegotiationResponse(negotiation)
			resp.Negotiation = &n
			source := negotiation.BalanceSource()
			resp.BalanceSource = string(source.Kind())
			if source.IsResolved() {
				remaining := source.Base()
				resp.RemainingBalance = &remaining
			}
		}

		rows, err := repos.ScheduledPayments.FindByConsumer(ctx, req.TenantID, req.ConsumerID)
		if err != nil {
			return fmt.Errorf("find scheduled payments: %w", err)
		}
		countRows(&resp, rows)

		successful := valueobject.TransactionStatusSuccessful
		txs, err := repos.Transactions.ListByConsumer(ctx, req.TenantID, req.ConsumerID, &successful)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		var last time.Time
		for _, tx := range txs {
			resp.TotalPaid = resp.TotalPaid.Add(tx.Amount())
			if tx.CreatedAt().After(last) {
				last = tx.CreatedAt()
			}
		}
		if !last.IsZero() {
			resp.LastTransactionAt = &last
		}
		return nil
	})
	if err != nil {
		return dto.ConsumerSnapshotResponse{}, err
	}
	return resp, nil
}

func countRows(resp *dto.ConsumerSnapshotResponse, rows []model.ScheduledPayment) {
	for _, row := range rows {
		switch row.Status() {
		case valueobject.ScheduleStatusScheduled:
			resp.ScheduledCount++
		case valueobject.ScheduleStatusFailed:
			resp.FailedCount++
		case valueobject.ScheduleStatusSuccessful:
			resp.SuccessfulCount++
		case valueobject.ScheduleStatusCancelled:
			resp.CancelledCount++
		}
		if row.Status().IsOutstanding() {
			resp.OutstandingTotal = resp.OutstandingTotal.Add(row.Amount())
			if resp.NextPayment == nil {
				next := toScheduledPaymentResponse(row)
				resp.NextPayment = &next
			}
		}
	}
}

// ListScheduledPaymentsUseCase lists plan rows filtered by status.
type ListScheduledPaymentsUseCase struct {
	uow port.UnitOfWork
}

// NewListScheduledPaymentsUseCase wires dependencies.
func NewListScheduledPaymentsUseCase(uow port.UnitOfWork) *ListScheduledPaymentsUseCase {
	return &ListScheduledPaymentsUseCase{uow: uow}
}

// Execute lists the rows in sequence order.
func (uc *ListScheduledPaymentsUseCase) Execute(ctx context.Context, req dto.ListScheduledPaymentsRequest) (dto.ScheduleResponse, error) {
	statuses := make([]valueobject.ScheduleStatus, 0, len(req.Statuses))
	for _, s := range req.Statuses {
		status, err := valueobject.NewScheduleStatus(s)
		if err != nil {
			return dto.ScheduleResponse{}, fmt.Errorf("parse status: %w: %w", valueobject.ErrInvalidFilter, err)
		}
		statuses = append(statuses, status)
	}

	var rows []model.ScheduledPayment
	err := uc.uow.Within(ctx, func(ctx context.Context, repos port.Repositories) error {
		var err error
		rows, err = repos.ScheduledPayments.ListByStatus(ctx, req.TenantID, req.ConsumerID, statuses...)
		if err != nil {
			return fmt.Errorf("list scheduled payments: %w", err)
		}
		return nil
	})
	if err != nil {
		return dto.ScheduleResponse{}, err
	}
	return toScheduleResponse(req.ConsumerID, rows), nil
}

// ListTransactionsUseCase lists a consumer's transactions.
type ListTransactionsUseCase struct {
	uow port.UnitOfWork
}

// NewListTransactionsUseCase wires dependencies.
func NewListTransactionsUseCase(uow port.UnitOfWork) *ListTransactionsUseCase {
	return &ListTransactionsUseCase{uow: uow}
}

// Execute lists transactions newest first.
func (uc *ListTransactionsUseCase) Execute(ctx context.Context, req dto.ListTransactionsRequest) ([]dto.TransactionResponse, error) {
	var status *valueobject.TransactionStatus
	if req.Status != "" {
		s, err := valueobject.NewTransactionStatus(req.Status)
		if err != nil {
			return nil, fmt.Errorf("parse status: %w: %w", valueobject.ErrInvalidFilter, err)
		}
		status = &s
	}

	var txs []model.Transaction
	err := uc.uow.Within(ctx, func(ctx context.Context, repos port.Repositories) error {
		var err error
		txs, err = repos.Transactions.ListByConsumer(ctx, req.TenantID, req.ConsumerID, status)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := make([]dto.TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		resp = append(resp, toTransactionResponse(tx))
	}
	return resp, nil
}
