package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/soumabha1987/yn-dev-sub000/internal/application/dto"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/model"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/port"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
)

// SubmitOfferUseCase opens the consumer's single active negotiation.
type SubmitOfferUseCase struct {
	uow port.UnitOfWork
}

// NewSubmitOfferUseCase wires dependencies.
func NewSubmitOfferUseCase(uow port.UnitOfWork) *SubmitOfferUseCase {
	return &SubmitOfferUseCase{uow: uow}
}

// Execute validates the offer and stores it.
func (uc *SubmitOfferUseCase) Execute(ctx context.Context, req dto.SubmitOfferRequest) (dto.NegotiationResponse, error) {
	now := time.Now().UTC()

	// 1. Parse the terms.
	negotiationType, err := valueobject.NewNegotiationType(req.NegotiationType)
	if err != nil {
		return dto.NegotiationResponse{}, invalidOffer("parse negotiation type", err)
	}
	var installmentType valueobject.InstallmentType
	if !negotiationType.IsPIF() {
		installmentType, err = valueobject.NewInstallmentType(req.InstallmentType)
		if err != nil {
			return dto.NegotiationResponse{}, invalidOffer("parse installment type", err)
		}
	}

	var negotiation model.Negotiation
	err = uc.uow.Within(ctx, func(ctx context.Context, repos port.Repositories) error {
		// 2. The consumer must exist.
		if _, err := repos.Consumers.FindByID(ctx, req.TenantID, req.ConsumerID); err != nil {
			return fmt.Errorf("find consumer: %w", err)
		}

		// 3. Create the negotiation.
		n, err := model.NewNegotiation(req.TenantID, req.ConsumerID, negotiationType, installmentType, model.OfferTerms{
			OneTimeSettlement: req.OneTimeSettlement,
			NegotiateAmount:   req.NegotiateAmount,
			MonthlyAmount:     req.MonthlyAmount,
			FirstPayDate:      req.FirstPayDate,
		}, now)
		if err != nil {
			return invalidOffer("create negotiation", err)
		}
		negotiation = n

		// 4. Persist; a second active negotiation is rejected here.
		if err := repos.Negotiations.Save(ctx, negotiation); err != nil {
			return fmt.Errorf("save negotiation: %w", err)
		}
		return storeEvents(ctx, repos, negotiation.DomainEvents())
	})
	if err != nil {
		return dto.NegotiationResponse{}, err
	}
	return toNegotiationResponse(negotiation), nil
}

// ProposeCounterOfferUseCase records the creditor's counter offer.
type ProposeCounterOfferUseCase struct {
	uow port.UnitOfWork
}

// NewProposeCounterOfferUseCase wires dependencies.
func NewProposeCounterOfferUseCase(uow port.UnitOfWork) *ProposeCounterOfferUseCase {
	return &ProposeCounterOfferUseCase{uow: uow}
}

// Execute stores the counter terms on an open negotiation.
func (uc *ProposeCounterOfferUseCase) Execute(ctx context.Context, req dto.ProposeCounterOfferRequest) (dto.NegotiationResponse, error) {
	now := time.Now().UTC()

	var negotiation model.Negotiation
	err := uc.uow.Within(ctx, func(ctx context.Context, repos port.Repositories) error {
		n, err := repos.Negotiations.FindByID(ctx, req.TenantID, req.NegotiationID)
		if err != nil {
			return fmt.Errorf("find negotiation: %w", err)
		}
		negotiation, err = n.ProposeCounter(model.OfferTerms{
			OneTimeSettlement: req.OneTimeSettlement,
			NegotiateAmount:   req.NegotiateAmount,
			MonthlyAmount:     req.MonthlyAmount,
			FirstPayDate:      req.FirstPayDate,
		}, now)
		if err != nil {
			return invalidOffer("propose counter offer", err)
		}
		if err := repos.Negotiations.Save(ctx, negotiation); err != nil {
			return fmt.Errorf("save negotiation: %w", err)
		}
		return storeEvents(ctx, repos, negotiation.DomainEvents())
	})
	if err != nil {
		return dto.NegotiationResponse{}, err
	}
	return toNegotiationResponse(negotiation), nil
}

// AcceptOfferUseCase freezes a negotiation on the primary or counter offer.
type AcceptOfferUseCase struct {
	uow port.UnitOfWork
}

// NewAcceptOfferUseCase wires dependencies.
func NewAcceptOfferUseCase(uow port.UnitOfWork) *AcceptOfferUseCase {
	return &AcceptOfferUseCase{uow: uow}
}

// Execute accepts the offer and moves the consumer to PAYMENT_ACCEPTED.
func (uc *AcceptOfferUseCase) Execute(ctx context.Context, req dto.AcceptOfferRequest) (dto.NegotiationResponse, error) {
	now := time.Now().UTC()

	var negotiation model.Negotiation
	err := uc.uow.Within(ctx, func(ctx context.Context, repos port.Repositories) error {
		// 1. Load the negotiation and its consumer.
		n, err := repos.Negotiations.FindByID(ctx, req.TenantID, req.NegotiationID)
		if err != nil {
			return fmt.Errorf("find negotiation: %w", err)
		}
		consumer, err := repos.Consumers.LockForUpdate(ctx, req.TenantID, n.ConsumerID())
		if err != nil {
			return fmt.Errorf("find consumer: %w", err)
		}

		// 2. Accept and resolve the remaining balance.
		if req.Counter {
			negotiation, err = n.AcceptCounter(now)
		} else {
			negotiation, err = n.Accept(now)
		}
		if err != nil {
			return invalidOffer("accept offer", err)
		}

		consumer, err = consumer.MarkPaymentAccepted(now)
		if err != nil {
			return fmt.Errorf("mark payment accepted: %w", err)
		}

		// 3. Persist both.
		if err := repos.Negotiations.Save(ctx, negotiation); err != nil {
			return fmt.Errorf("save negotiation: %w", err)
		}
		if err := repos.Consumers.Save(ctx, consumer); err != nil {
			return fmt.Errorf("save consumer: %w", err)
		}
		return storeEvents(ctx, repos, negotiation.DomainEvents())
	})
	if err != nil {
		return dto.NegotiationResponse{}, err
	}
	return toNegotiationResponse(negotiation), nil
}

// invalidOffer tags rejected terms with ErrInvalidOffer. Lifecycle breaches
// keep their own sentinel.
func invalidOffer(step string, err error) error {
	if errors.Is(err, valueobject.ErrInvalidStatusTransition) {
		return fmt.Errorf("%s: %w", step, err)
	}
	return fmt.Errorf("%s: %w: %w", step, valueobject.ErrInvalidOffer, err)
}
