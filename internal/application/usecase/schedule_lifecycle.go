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
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
)

// withConsumerLock runs fn while holding the consumer's lock.
func withConsumerLock(ctx context.Context, locker port.ConsumerLocker, consumerID string, fn func() error) error {
	unlock, err := locker.Lock(ctx, consumerID)
	if err != nil {
		return fmt.Errorf("lock consumer: %w", err)
	}
	defer unlock()
	return fn()
}

// planChange loads the plan under lock, applies change and persists the rows
// it returns together with their events.
func planChange(
	ctx context.Context,
	uow port.UnitOfWork,
	tenantID, consumerID string,
	change func(plan model.PaymentPlan) ([]model.ScheduledPayment, error),
) error {
	return uow.Within(ctx, func(ctx context.Context, repos port.Repositories) error {
		_, _, plan, err := loadPaymentState(ctx, repos, tenantID, consumerID)
		if err != nil {
			return err
		}
		changed, err := change(plan)
		if err != nil {
			return err
		}
		if err := repos.ScheduledPayments.SaveAll(ctx, changed...); err != nil {
			return fmt.Errorf("save scheduled payments: %w", err)
		}
		for _, row := range changed {
			if err := storeEvents(ctx, repos, row.DomainEvents()); err != nil {
				return fmt.Errorf("store events: %w", err)
			}
		}
		return nil
	})
}

// ---------------------------------------------------------------------------
// Reschedule
// ---------------------------------------------------------------------------

// ReschedulePaymentUseCase puts a FAILED payment back on today's date.
type ReschedulePaymentUseCase struct {
	uow    port.UnitOfWork
	locker port.ConsumerLocker
	clock  func() time.Time
}

// NewReschedulePaymentUseCase wires dependencies.
func NewReschedulePaymentUseCase(uow port.UnitOfWork, locker port.ConsumerLocker) *ReschedulePaymentUseCase {
	return &ReschedulePaymentUseCase{uow: uow, locker: locker, clock: time.Now}
}

// Execute reschedules the payment. The original due date is kept once.
func (uc *ReschedulePaymentUseCase) Execute(ctx context.Context, req dto.ScheduledPaymentRequest) (dto.ScheduledPaymentResponse, error) {
	now := uc.clock().UTC()
	var updated model.ScheduledPayment

	err := withConsumerLock(ctx, uc.locker, req.ConsumerID, func() error {
		return planChange(ctx, uc.uow, req.TenantID, req.ConsumerID, func(plan model.PaymentPlan) ([]model.ScheduledPayment, error) {
			row, ok := plan.Find(req.ScheduledPaymentID)
			if !ok {
				return nil, fmt.Errorf("scheduled payment %s: %w", req.ScheduledPaymentID, valueobject.ErrNotFound)
			}
			var err error
			updated, err = row.RescheduleToday(now, now)
			if err != nil {
				return nil, fmt.Errorf("reschedule payment: %w", err)
			}
			return []model.ScheduledPayment{updated}, nil
		})
	})
	if err != nil {
		return dto.ScheduledPaymentResponse{}, err
	}
	return toScheduledPaymentResponse(updated), nil
}

// ---------------------------------------------------------------------------
// Skip
// ---------------------------------------------------------------------------

// SkipPaymentUseCase moves the first outstanding installment to the end of
// the plan.
type SkipPaymentUseCase struct {
	uow    port.UnitOfWork
	locker port.ConsumerLocker
}

// NewSkipPaymentUseCase wires dependencies.
func NewSkipPaymentUseCase(uow port.UnitOfWork, locker port.ConsumerLocker) *SkipPaymentUseCase {
	return &SkipPaymentUseCase{uow: uow, locker: locker}
}

// Execute skips the payment and returns the reordered plan.
func (uc *SkipPaymentUseCase) Execute(ctx context.Context, req dto.ScheduledPaymentRequest) (dto.ScheduleResponse, error) {
	now := time.Now().UTC()
	var result model.PaymentPlan

	err := withConsumerLock(ctx, uc.locker, req.ConsumerID, func() error {
		return planChange(ctx, uc.uow, req.TenantID, req.ConsumerID, func(plan model.PaymentPlan) ([]model.ScheduledPayment, error) {
			next, moved, err := plan.Skip(req.ScheduledPaymentID, now)
			if err != nil {
				return nil, fmt.Errorf("skip payment: %w", err)
			}
			result = next
			return []model.ScheduledPayment{moved}, nil
		})
	})
	if err != nil {
		return dto.ScheduleResponse{}, err
	}
	return toScheduleResponse(req.ConsumerID, result.Outstanding()), nil
}

// ---------------------------------------------------------------------------
// Change date
// ---------------------------------------------------------------------------

// ChangePaymentDateUseCase moves a SCHEDULED payment between today and the
// next payment's date.
type ChangePaymentDateUseCase struct {
	uow    port.UnitOfWork
	locker port.ConsumerLocker
	clock  func() time.Time
}

// NewChangePaymentDateUseCase wires dependencies.
func NewChangePaymentDateUseCase(uow port.UnitOfWork, locker port.ConsumerLocker) *ChangePaymentDateUseCase {
	return &ChangePaymentDateUseCase{uow: uow, locker: locker, clock: time.Now}
}

// Execute changes the date.
func (uc *ChangePaymentDateUseCase) Execute(ctx context.Context, req dto.ChangePaymentDateRequest) (dto.ScheduledPaymentResponse, error) {
	now := uc.clock().UTC()
	var updated model.ScheduledPayment

	err := withConsumerLock(ctx, uc.locker, req.ConsumerID, func() error {
		return planChange(ctx, uc.uow, req.TenantID, req.ConsumerID, func(plan model.PaymentPlan) ([]model.ScheduledPayment, error) {
			_, changed, err := plan.ChangeDate(req.ScheduledPaymentID, req.NewDate, now, now)
			if err != nil {
				return nil, fmt.Errorf("change payment date: %w", err)
			}
			updated = changed
			return []model.ScheduledPayment{changed}, nil
		})
	})
	if err != nil {
		return dto.ScheduledPaymentResponse{}, err
	}
	return toScheduledPaymentResponse(updated), nil
}

// ---------------------------------------------------------------------------
// Cancel
// ---------------------------------------------------------------------------

// CancelScheduleUseCase cancels every outstanding payment of a consumer and
// optionally ends the active negotiation in the same commit.
type CancelScheduleUseCase struct {
	uow    port.UnitOfWork
	locker port.ConsumerLocker
}

// NewCancelScheduleUseCase wires dependencies.
func NewCancelScheduleUseCase(uow port.UnitOfWork, locker port.ConsumerLocker) *CancelScheduleUseCase {
	return &CancelScheduleUseCase{uow: uow, locker: locker}
}

// Execute cancels the schedule.
func (uc *CancelScheduleUseCase) Execute(ctx context.Context, req dto.CancelScheduleRequest) (dto.CancelScheduleResponse, error) {
	now := time.Now().UTC()
	cancelled := 0

	err := withConsumerLock(ctx, uc.locker, req.ConsumerID, func() error {
		return uc.uow.Within(ctx, func(ctx context.Context, repos port.Repositories) error {
			// 1. Lock the consumer row.
			consumer, err := repos.Consumers.LockForUpdate(ctx, req.TenantID, req.ConsumerID)
			if errors.Is(err, valueobject.ErrNotFound) {
				return valueobject.NewPreconditionError("consumer %s not found", req.ConsumerID)
			}
			if err != nil {
				return fmt.Errorf("find consumer: %w", err)
			}

			// 2. Cancel outstanding rows.
			rows, err := repos.ScheduledPayments.ListByStatus(ctx, req.TenantID, req.ConsumerID,
				valueobject.ScheduleStatusScheduled, valueobject.ScheduleStatusFailed)
			if err != nil {
				return fmt.Errorf("list outstanding payments: %w", err)
			}
			changed := make([]model.ScheduledPayment, 0, len(rows))
			for _, row := range rows {
				c, err := row.Cancel(now)
				if err != nil {
					return fmt.Errorf("cancel scheduled payment %s: %w", row.ID(), err)
				}
				changed = append(changed, c)
			}
			if err := repos.ScheduledPayments.SaveAll(ctx, changed...); err != nil {
				return fmt.Errorf("save scheduled payments: %w", err)
			}
			cancelled = len(changed)

			// 3. End the negotiation when asked.
			if req.DeactivateNegotiation {
				negotiation, err := repos.Negotiations.FindActiveByConsumer(ctx, req.TenantID, req.ConsumerID)
				switch {
				case errors.Is(err, valueobject.ErrNotFound):
				case err != nil:
					return fmt.Errorf("find negotiation: %w", err)
				default:
					negotiation, err = negotiation.Deactivate(now)
					if err != nil {
						return fmt.Errorf("deactivate negotiation: %w", err)
					}
					if err := repos.Negotiations.Save(ctx, negotiation); err != nil {
						return fmt.Errorf("save negotiation: %w", err)
					}
					if err := storeEvents(ctx, repos, negotiation.DomainEvents()); err != nil {
						return fmt.Errorf("store events: %w", err)
					}
				}
			}

			return storeEvents(ctx, repos, []event.DomainEvent{
				event.NewScheduleCancelled(consumer.ID(), consumer.TenantID(), cancelled, req.Reason),
			})
		})
	})
	if err != nil {
		return dto.CancelScheduleResponse{}, err
	}
	return dto.CancelScheduleResponse{ConsumerID: req.ConsumerID, Cancelled: cancelled}, nil
}

// ---------------------------------------------------------------------------
// Purge
// ---------------------------------------------------------------------------

// PurgeConsumerUseCase hard-deletes a consumer with every negotiation, plan
// row, transaction and revenue share entry it owns.
type PurgeConsumerUseCase struct {
	uow    port.UnitOfWork
	locker port.ConsumerLocker
}

// NewPurgeConsumerUseCase wires dependencies.
func NewPurgeConsumerUseCase(uow port.UnitOfWork, locker port.ConsumerLocker) *PurgeConsumerUseCase {
	return &PurgeConsumerUseCase{uow: uow, locker: locker}
}

// Execute deletes children before the consumer.
func (uc *PurgeConsumerUseCase) Execute(ctx context.Context, req dto.ConsumerRequest) error {
	return withConsumerLock(ctx, uc.locker, req.ConsumerID, func() error {
		return uc.uow.Within(ctx, func(ctx context.Context, repos port.Repositories) error {
			if _, err := repos.Consumers.LockForUpdate(ctx, req.TenantID, req.ConsumerID); err != nil {
				return fmt.Errorf("find consumer: %w", err)
			}
			if err := repos.Transactions.DeleteByConsumer(ctx, req.TenantID, req.ConsumerID); err != nil {
				return fmt.Errorf("delete transactions: %w", err)
			}
			if err := repos.ScheduledPayments.DeleteByConsumer(ctx, req.TenantID, req.ConsumerID); err != nil {
				return fmt.Errorf("delete scheduled payments: %w", err)
			}
			if err := repos.Negotiations.DeleteByConsumer(ctx, req.TenantID, req.ConsumerID); err != nil {
				return fmt.Errorf("delete negotiations: %w", err)
			}
			if err := repos.Consumers.Delete(ctx, req.TenantID, req.ConsumerID); err != nil {
				return fmt.Errorf("delete consumer: %w", err)
			}
			return nil
		})
	})
}
