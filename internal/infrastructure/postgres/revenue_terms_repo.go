package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
	pkgpostgres "github.com/soumabha1987/yn-dev-sub000/pkg/postgres"
)

// RevenueTermsRepo reads per-company fee terms. It implements
// port.RevenueShareRateProvider and is normally wrapped by the Redis cache.
type RevenueTermsRepo struct {
	q pkgpostgres.Querier
}

func NewRevenueTermsRepo(q pkgpostgres.Querier) *RevenueTermsRepo {
	return &RevenueTermsRepo{q: q}
}

// TermsFor returns the company's terms. A company without a row pays no fee.
func (r *RevenueTermsRepo) TermsFor(ctx context.Context, tenantID string) (valueobject.RevenueShareTerms, error) {
	query := `
		SELECT percentage, partner_id, partner_percentage
		FROM revenue_share_terms
		WHERE tenant_id = $1
	`
	var (
		percentage decimal.Decimal
		partnerID  *string
		partnerPct decimal.NullDecimal
	)
	err := r.q.QueryRow(ctx, query, tenantID).Scan(&percentage, &partnerID, &partnerPct)
	if errors.Is(err, pgx.ErrNoRows) {
		return valueobject.RevenueShareTerms{Percentage: decimal.Zero}, nil
	}
	if err != nil {
		return valueobject.RevenueShareTerms{}, fmt.Errorf("query revenue share terms: %w", err)
	}

	terms := valueobject.RevenueShareTerms{
		Percentage:        percentage,
		PartnerID:         deref(partnerID),
		PartnerPercentage: partnerPct.Decimal,
	}
	if err := terms.Validate(); err != nil {
		return valueobject.RevenueShareTerms{}, fmt.Errorf("tenant %s: %w", tenantID, err)
	}
	return terms, nil
}

// SaveTerms upserts a company's terms.
func (r *RevenueTermsRepo) SaveTerms(ctx context.Context, tenantID string, terms valueobject.RevenueShareTerms) error {
	if err := terms.Validate(); err != nil {
		return err
	}
	query := `
		INSERT INTO revenue_share_terms (tenant_id, percentage, partner_id, partner_percentage, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (tenant_id) DO UPDATE SET
			percentage         = EXCLUDED.percentage,
			partner_id         = EXCLUDED.partner_id,
			partner_percentage = EXCLUDED.partner_percentage,
			updated_at         = EXCLUDED.updated_at
	`
	var partnerPct decimal.NullDecimal
	if terms.PartnerID != "" {
		partnerPct = decimal.NullDecimal{Decimal: terms.PartnerPercentage, Valid: true}
	}
	if _, err := r.q.Exec(ctx, query, tenantID, terms.Percentage, nullable(terms.PartnerID), partnerPct); err != nil {
		return fmt.Errorf("save revenue share terms: %w", err)
	}
	return nil
}
