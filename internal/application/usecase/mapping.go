package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/soumabha1987/yn-dev-sub000/internal/application/dto"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/model"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/port"
	"github.com/soumabha1987/yn-dev-sub000/pkg/events"
)

// storeEvents writes domain events to the outbox of the current unit of work.
func storeEvents(ctx context.Context, repos port.Repositories, evts []events.DomainEvent) error {
	if len(evts) == 0 {
		return nil
	}
	entries, err := events.NewOutboxEntries(evts)
	if err != nil {
		return fmt.Errorf("build outbox entries: %w", err)
	}
	return repos.Outbox.Store(ctx, entries)
}

func toOfferTermsResponse(t model.OfferTerms) dto.OfferTermsResponse {
	return dto.OfferTermsResponse{
		OneTimeSettlement: t.OneTimeSettlement,
		NegotiateAmount:   t.NegotiateAmount,
		MonthlyAmount:     t.MonthlyAmount,
		FirstPayDate:      t.FirstPayDate,
	}
}

func toNegotiationResponse(n model.Negotiation) dto.NegotiationResponse {
	resp := dto.NegotiationResponse{
		ID:                   n.ID(),
		TenantID:             n.TenantID(),
		ConsumerID:           n.ConsumerID(),
		NegotiationType:      n.NegotiationType().String(),
		InstallmentType:      n.InstallmentType().String(),
		Offer:                toOfferTermsResponse(n.Offer()),
		OfferAccepted:        n.OfferAccepted(),
		CounterOfferAccepted: n.CounterOfferAccepted(),
		Active:               n.IsActive(),
		CreatedAt:            n.CreatedAt(),
		UpdatedAt:            n.UpdatedAt(),
	}
	if counter, ok := n.Counter(); ok {
		c := toOfferTermsResponse(counter)
		resp.Counter = &c
	}
	if balance, ok := n.PaymentPlanCurrentBalance(); ok {
		resp.PaymentPlanCurrentBalance = &balance
	}
	return resp
}

func toScheduledPaymentResponse(p model.ScheduledPayment) dto.ScheduledPaymentResponse {
	return dto.ScheduledPaymentResponse{
		ID:                     p.ID(),
		ConsumerID:             p.ConsumerID(),
		PaymentProfileID:       p.PaymentProfileID(),
		Sequence:               p.Sequence(),
		ScheduleDate:           p.ScheduleDate(),
		PreviousScheduleDate:   p.PreviousScheduleDate(),
		Amount:                 p.Amount(),
		Status:                 p.Status().String(),
		AttemptCount:           p.AttemptCount(),
		LastAttemptedAt:        p.LastAttemptedAt(),
		RevenueSharePercentage: p.RevenueSharePercentage(),
		TransactionID:          p.TransactionID(),
	}
}

func toScheduleResponse(consumerID string, payments []model.ScheduledPayment) dto.ScheduleResponse {
	resp := dto.ScheduleResponse{
		ConsumerID: consumerID,
		Payments:   make([]dto.ScheduledPaymentResponse, 0, len(payments)),
		Total:      decimal.Zero,
	}
	for _, p := range payments {
		resp.Payments = append(resp.Payments, toScheduledPaymentResponse(p))
		resp.Total = resp.Total.Add(p.Amount())
	}
	return resp
}

func toTransactionResponse(tx model.Transaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:                       tx.ID(),
		ConsumerID:               tx.ConsumerID(),
		ScheduledPaymentIDs:      tx.ScheduledPaymentIDs(),
		PaymentProfileID:         tx.PaymentProfileID(),
		ExternalPaymentProfileID: tx.ExternalPaymentProfileID(),
		Status:                   tx.Status().String(),
		TransactionType:          tx.TransactionType().String(),
		Amount:                   tx.Amount(),
		RnnInvoiceID:             tx.RnnInvoiceID(),
		GatewayTransactionID:     tx.GatewayTransactionID(),
		FailureReason:            tx.FailureReason(),
		CreatedAt:                tx.CreatedAt(),
	}
	if share := tx.RevenueShare(); share != nil {
		resp.RevenueShare = &dto.RevenueShareResponse{
			PlatformInvoiceID:   tx.PlatformInvoiceID(),
			Percentage:          share.Percentage,
			PlatformShare:       share.PlatformShare,
			CompanyShare:        share.CompanyShare,
			PartnerID:           share.PartnerID,
			PartnerRevenueShare: share.PartnerShare,
		}
	}
	return resp
}
