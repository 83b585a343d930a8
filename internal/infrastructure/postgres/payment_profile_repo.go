package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/model"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
	pkgpostgres "github.com/soumabha1987/yn-dev-sub000/pkg/postgres"
)

// PaymentProfileRepo implements port.PaymentProfileRepository.
type PaymentProfileRepo struct {
	q pkgpostgres.Querier
}

func NewPaymentProfileRepo(q pkgpostgres.Querier) *PaymentProfileRepo {
	return &PaymentProfileRepo{q: q}
}

// Save stores a profile. Profiles are written by onboarding and never updated here.
func (r *PaymentProfileRepo) Save(ctx context.Context, p model.PaymentProfile) error {
	query := `
		INSERT INTO payment_profiles (id, tenant_id, consumer_id, gateway, reference, external, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.q.Exec(ctx, query,
		p.ID(), p.TenantID(), nullable(p.ConsumerID()), p.Gateway().String(),
		p.Reference(), p.IsExternal(), p.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save payment profile: %w", err)
	}
	return nil
}

func (r *PaymentProfileRepo) FindByID(ctx context.Context, tenantID, id string) (model.PaymentProfile, error) {
	query := `
		SELECT id, tenant_id, consumer_id, gateway, reference, external, created_at
		FROM payment_profiles
		WHERE tenant_id = $1 AND id = $2
	`
	var (
		pid, tid, gatewayStr, reference string
		consumerID                      *string
		external                        bool
		createdAt                       time.Time
	)
	err := r.q.QueryRow(ctx, query, tenantID, id).Scan(
		&pid, &tid, &consumerID, &gatewayStr, &reference, &external, &createdAt,
	)
	if err != nil {
		return model.PaymentProfile{}, fmt.Errorf("scan payment profile: %w", notFound(err))
	}

	gateway, err := valueobject.NewGatewayCapability(gatewayStr)
	if err != nil {
		return model.PaymentProfile{}, fmt.Errorf("parse gateway: %w", err)
	}
	return model.ReconstructPaymentProfile(pid, tid, deref(consumerID), gateway, reference, external, createdAt), nil
}
