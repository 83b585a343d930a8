package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/model"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
	pkgpostgres "github.com/soumabha1987/yn-dev-sub000/pkg/postgres"
)

const oneActiveNegotiationIndex = "uq_negotiations_one_active"

const negotiationColumns = `
	id, tenant_id, consumer_id, negotiation_type, installment_type,
	one_time_settlement, negotiate_amount, monthly_amount, first_pay_date,
	has_counter, counter_one_time_amount, counter_negotiate_amount,
	counter_monthly_amount, counter_first_pay_date,
	offer_accepted, counter_offer_accepted, active_negotiation,
	payment_plan_current_balance, accepted_at,
	version, created_at, updated_at`

// NegotiationRepo implements port.NegotiationRepository.
type NegotiationRepo struct {
	q pkgpostgres.Querier
}

func NewNegotiationRepo(q pkgpostgres.Querier) *NegotiationRepo {
	return &NegotiationRepo{q: q}
}

// Save upserts the negotiation. The partial unique index on active rows
// surfaces as valueobject.ErrActiveNegotiationExists.
func (r *NegotiationRepo) Save(ctx context.Context, n model.Negotiation) error {
	query := `
		INSERT INTO negotiations (` + negotiationColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
		ON CONFLICT (id) DO UPDATE SET
			has_counter                  = EXCLUDED.has_counter,
			counter_one_time_amount      = EXCLUDED.counter_one_time_amount,
			counter_negotiate_amount     = EXCLUDED.counter_negotiate_amount,
			counter_monthly_amount       = EXCLUDED.counter_monthly_amount,
			counter_first_pay_date       = EXCLUDED.counter_first_pay_date,
			offer_accepted               = EXCLUDED.offer_accepted,
			counter_offer_accepted       = EXCLUDED.counter_offer_accepted,
			active_negotiation           = EXCLUDED.active_negotiation,
			payment_plan_current_balance = EXCLUDED.payment_plan_current_balance,
			accepted_at                  = EXCLUDED.accepted_at,
			version                      = negotiations.version + 1,
			updated_at                   = EXCLUDED.updated_at
		WHERE negotiations.version = $20
	`
	offer := n.Offer()
	counter, hasCounter := n.Counter()
	var counterFirstPay *time.Time
	if hasCounter {
		counterFirstPay = &counter.FirstPayDate
	}
	var installmentType *string
	if !n.InstallmentType().IsZero() {
		installmentType = nullable(n.InstallmentType().String())
	}
	var remaining *decimal.Decimal
	if b, ok := n.PaymentPlanCurrentBalance(); ok {
		remaining = &b
	}

	tag, err := r.q.Exec(ctx, query,
		n.ID(), n.TenantID(), n.ConsumerID(), n.NegotiationType().String(), installmentType,
		offer.OneTimeSettlement, offer.NegotiateAmount, offer.MonthlyAmount, offer.FirstPayDate,
		hasCounter, counterAmount(hasCounter, counter.OneTimeSettlement), counterAmount(hasCounter, counter.NegotiateAmount),
		counterAmount(hasCounter, counter.MonthlyAmount), counterFirstPay,
		n.OfferAccepted(), n.CounterOfferAccepted(), n.IsActive(),
		nullDecimal(remaining), n.AcceptedAt(),
		n.Version(), n.CreatedAt(), n.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err, oneActiveNegotiationIndex) {
			return valueobject.ErrActiveNegotiationExists
		}
		return fmt.Errorf("save negotiation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.New("optimistic locking conflict on negotiation")
	}
	return nil
}

func counterAmount(has bool, d decimal.Decimal) decimal.NullDecimal {
	if !has {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func (r *NegotiationRepo) FindByID(ctx context.Context, tenantID, id string) (model.Negotiation, error) {
	query := `SELECT ` + negotiationColumns + ` FROM negotiations WHERE tenant_id = $1 AND id = $2`
	return scanNegotiation(r.q.QueryRow(ctx, query, tenantID, id))
}

func (r *NegotiationRepo) FindActiveByConsumer(ctx context.Context, tenantID, consumerID string) (model.Negotiation, error) {
	query := `
		SELECT ` + negotiationColumns + `
		FROM negotiations
		WHERE tenant_id = $1 AND consumer_id = $2 AND active_negotiation
	`
	return scanNegotiation(r.q.QueryRow(ctx, query, tenantID, consumerID))
}

func (r *NegotiationRepo) DeleteByConsumer(ctx context.Context, tenantID, consumerID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM negotiations WHERE tenant_id = $1 AND consumer_id = $2`, tenantID, consumerID); err != nil {
		return fmt.Errorf("delete negotiations: %w", err)
	}
	return nil
}

func scanNegotiation(s scannable) (model.Negotiation, error) {
	var (
		id, tenantID, consumerID, negotiationTypeStr string
		installmentTypeStr                           *string
		oneTime, negotiate, monthly                  decimal.NullDecimal
		firstPayDate                                 time.Time
		hasCounter                                   bool
		cOneTime, cNegotiate, cMonthly               decimal.NullDecimal
		cFirstPayDate                                *time.Time
		offerAccepted, counterAccepted, active       bool
		remaining                                    decimal.NullDecimal
		acceptedAt                                   *time.Time
		version                                      int
		createdAt, updatedAt                         time.Time
	)
	err := s.Scan(
		&id, &tenantID, &consumerID, &negotiationTypeStr, &installmentTypeStr,
		&oneTime, &negotiate, &monthly, &firstPayDate,
		&hasCounter, &cOneTime, &cNegotiate, &cMonthly, &cFirstPayDate,
		&offerAccepted, &counterAccepted, &active,
		&remaining, &acceptedAt,
		&version, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.Negotiation{}, fmt.Errorf("scan negotiation: %w", notFound(err))
	}

	negotiationType, err := valueobject.NewNegotiationType(negotiationTypeStr)
	if err != nil {
		return model.Negotiation{}, fmt.Errorf("parse negotiation type: %w", err)
	}
	var installmentType valueobject.InstallmentType
	if installmentTypeStr != nil {
		if installmentType, err = valueobject.NewInstallmentType(*installmentTypeStr); err != nil {
			return model.Negotiation{}, fmt.Errorf("parse installment type: %w", err)
		}
	}

	offer := model.OfferTerms{
		OneTimeSettlement: oneTime.Decimal,
		NegotiateAmount:   negotiate.Decimal,
		MonthlyAmount:     monthly.Decimal,
		FirstPayDate:      firstPayDate,
	}
	var counter *model.OfferTerms
	if hasCounter {
		c := model.OfferTerms{
			OneTimeSettlement: cOneTime.Decimal,
			NegotiateAmount:   cNegotiate.Decimal,
			MonthlyAmount:     cMonthly.Decimal,
		}
		if cFirstPayDate != nil {
			c.FirstPayDate = *cFirstPayDate
		}
		counter = &c
	}
	var balance *decimal.Decimal
	if remaining.Valid {
		balance = &remaining.Decimal
	}

	return model.ReconstructNegotiation(
		id, tenantID, consumerID,
		negotiationType, installmentType,
		offer, counter,
		offerAccepted, counterAccepted, active,
		balance, acceptedAt,
		version, createdAt, updatedAt,
	), nil
}
