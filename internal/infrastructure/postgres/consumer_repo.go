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

const consumerColumns = `
	id, tenant_id, subclient_id, current_balance, total_balance,
	status, has_failed_payment, default_payment_profile_id,
	version, created_at, updated_at`

// ConsumerRepo implements port.ConsumerRepository.
type ConsumerRepo struct {
	q pkgpostgres.Querier
}

// NewConsumerRepo binds the repository to a pool or an open transaction.
func NewConsumerRepo(q pkgpostgres.Querier) *ConsumerRepo {
	return &ConsumerRepo{q: q}
}

// Save upserts the consumer with optimistic locking on version.
func (r *ConsumerRepo) Save(ctx context.Context, c model.Consumer) error {
	query := `
		INSERT INTO consumers (` + consumerColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO UPDATE SET
			current_balance            = EXCLUDED.current_balance,
			status                     = EXCLUDED.status,
			has_failed_payment         = EXCLUDED.has_failed_payment,
			default_payment_profile_id = EXCLUDED.default_payment_profile_id,
			version                    = consumers.version + 1,
			updated_at                 = EXCLUDED.updated_at
		WHERE consumers.version = $9
	`
	tag, err := r.q.Exec(ctx, query,
		c.ID(), c.TenantID(), nullable(c.SubclientID()), c.CurrentBalance(), c.TotalBalance(),
		c.Status().String(), c.HasFailedPayment(), nullable(c.DefaultPaymentProfileID()),
		c.Version(), c.CreatedAt(), c.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save consumer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.New("optimistic locking conflict on consumer")
	}
	return nil
}

// FindByID retrieves a consumer without locking it.
func (r *ConsumerRepo) FindByID(ctx context.Context, tenantID, id string) (model.Consumer, error) {
	query := `SELECT ` + consumerColumns + ` FROM consumers WHERE tenant_id = $1 AND id = $2`
	return scanConsumer(r.q.QueryRow(ctx, query, tenantID, id))
}

// LockForUpdate takes the consumer's advisory lock and row lock for the rest
// of the surrounding transaction.
func (r *ConsumerRepo) LockForUpdate(ctx context.Context, tenantID, id string) (model.Consumer, error) {
	if err := pkgpostgres.AdvisoryXactLock(ctx, r.q, "consumer:"+id); err != nil {
		return model.Consumer{}, err
	}
	query := `SELECT ` + consumerColumns + ` FROM consumers WHERE tenant_id = $1 AND id = $2 FOR UPDATE`
	return scanConsumer(r.q.QueryRow(ctx, query, tenantID, id))
}

// Delete removes the consumer row; dependent rows go with it.
func (r *ConsumerRepo) Delete(ctx context.Context, tenantID, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM consumers WHERE tenant_id = $1 AND id = $2`, tenantID, id); err != nil {
		return fmt.Errorf("delete consumer: %w", err)
	}
	return nil
}

func scanConsumer(s scannable) (model.Consumer, error) {
	var (
		id, tenantID                  string
		subclientID, defaultProfileID *string
		currentBalance, totalBalance  decimal.Decimal
		statusStr                     string
		hasFailedPayment              bool
		version                       int
		createdAt, updatedAt          time.Time
	)
	err := s.Scan(
		&id, &tenantID, &subclientID, &currentBalance, &totalBalance,
		&statusStr, &hasFailedPayment, &defaultProfileID,
		&version, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.Consumer{}, fmt.Errorf("scan consumer: %w", notFound(err))
	}

	status, err := valueobject.NewConsumerStatus(statusStr)
	if err != nil {
		return model.Consumer{}, fmt.Errorf("parse consumer status: %w", err)
	}

	return model.ReconstructConsumer(
		id, tenantID, deref(subclientID),
		currentBalance, totalBalance,
		status, hasFailedPayment, deref(defaultProfileID),
		version, createdAt, updatedAt,
	), nil
}
