package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/soumabha1987/yn-dev-sub000/internal/application/dto"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/event"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/model"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/port"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/service"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
)

// GenerateScheduleUseCase turns the consumer's accepted negotiation into
// scheduled payments.
type GenerateScheduleUseCase struct {
	uow       port.UnitOfWork
	rates     port.RevenueShareRateProvider
	generator *service.ScheduleGenerator
}

// NewGenerateScheduleUseCase wires dependencies.
func NewGenerateScheduleUseCase(
	uow port.UnitOfWork,
	rates port.RevenueShareRateProvider,
	generator *service.ScheduleGenerator,
) *GenerateScheduleUseCase {
	return &GenerateScheduleUseCase{
		uow:       uow,
		rates:     rates,
		generator: generator,
	}
}

// Execute generates and stores the plan.
func (uc *GenerateScheduleUseCase) Execute(ctx context.Context, req dto.GenerateScheduleRequest) (dto.ScheduleResponse, error) {
	now := time.Now().UTC()

	// 1. Snapshot the current fee rate.
	terms, err := uc.rates.TermsFor(ctx, req.TenantID)
	if err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("load revenue share terms: %w", err)
	}

	var rows []model.ScheduledPayment
	err = uc.uow.Within(ctx, func(ctx context.Context, repos port.Repositories) error {
		// 2. Load the consumer and the accepted negotiation.
		consumer, err := repos.Consumers.LockForUpdate(ctx, req.TenantID, req.ConsumerID)
		if err != nil {
			return fmt.Errorf("find consumer: %w", err)
		}
		negotiation, err := repos.Negotiations.FindActiveByConsumer(ctx, req.TenantID, req.ConsumerID)
		if errors.Is(err, valueobject.ErrNotFound) {
			return valueobject.NewPreconditionError("consumer %s has no active negotiation", req.ConsumerID)
		}
		if err != nil {
			return fmt.Errorf("find negotiation: %w", err)
		}

		// 3. An existing plan must be cancelled first.
		outstanding, err := repos.ScheduledPayments.ListByStatus(ctx, req.TenantID, req.ConsumerID,
			valueobject.ScheduleStatusScheduled, valueobject.ScheduleStatusFailed)
		if err != nil {
			return fmt.Errorf("list outstanding payments: %w", err)
		}
		if len(outstanding) > 0 {
			return valueobject.NewPreconditionError("consumer %s already has %d outstanding payments", req.ConsumerID, len(outstanding))
		}

		// 4. Generate. Sequence numbers continue after historical rows.
		existing, err := repos.ScheduledPayments.FindByConsumer(ctx, req.TenantID, req.ConsumerID)
		if err != nil {
			return fmt.Errorf("find scheduled payments: %w", err)
		}
		profileID := req.PaymentProfileID
		if profileID == "" {
			profileID = consumer.DefaultPaymentProfileID()
		}
		rows, err = uc.generator.GenerateFrom(negotiation, profileID, terms.Percentage, maxSequence(existing)+1, now)
		if err != nil {
			return fmt.Errorf("generate schedule: %w", err)
		}

		// 5. Persist.
		if err := repos.ScheduledPayments.SaveAll(ctx, rows...); err != nil {
			return fmt.Errorf("save scheduled payments: %w", err)
		}
		total := rows[0].Amount()
		for _, r := range rows[1:] {
			total = total.Add(r.Amount())
		}
		return storeEvents(ctx, repos, []event.DomainEvent{event.NewScheduleGenerated(
			req.ConsumerID, req.TenantID, negotiation.ID(), len(rows), total, rows[0].ScheduleDate(),
		)})
	})
	if err != nil {
		return dto.ScheduleResponse{}, err
	}
	return toScheduleResponse(req.ConsumerID, rows), nil
}

func maxSequence(rows []model.ScheduledPayment) int {
	max := 0
	for _, r := range rows {
		if r.Sequence() > max {
			max = r.Sequence()
		}
	}
	return max
}
