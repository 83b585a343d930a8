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

const scheduledPaymentColumns = `
	id, tenant_id, consumer_id, negotiation_id, payment_profile_id,
	sequence, schedule_date, previous_schedule_date, amount, status,
	attempt_count, last_attempted_at, revenue_share_percentage, transaction_id,
	version, created_at, updated_at`

// ScheduledPaymentRepo implements port.ScheduledPaymentRepository.
type ScheduledPaymentRepo struct {
	q pkgpostgres.Querier
}

func NewScheduledPaymentRepo(q pkgpostgres.Querier) *ScheduledPaymentRepo {
	return &ScheduledPaymentRepo{q: q}
}

// SaveAll upserts every row, failing on the first version conflict. The
// (consumer_id, sequence) constraint is deferred to commit.
func (r *ScheduledPaymentRepo) SaveAll(ctx context.Context, payments ...model.ScheduledPayment) error {
	if len(payments) == 0 {
		return nil
	}
	query := `
		INSERT INTO scheduled_payments (` + scheduledPaymentColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (id) DO UPDATE SET
			payment_profile_id     = EXCLUDED.payment_profile_id,
			sequence               = EXCLUDED.sequence,
			schedule_date          = EXCLUDED.schedule_date,
			previous_schedule_date = EXCLUDED.previous_schedule_date,
			amount                 = EXCLUDED.amount,
			status                 = EXCLUDED.status,
			attempt_count          = EXCLUDED.attempt_count,
			last_attempted_at      = EXCLUDED.last_attempted_at,
			transaction_id         = EXCLUDED.transaction_id,
			version                = scheduled_payments.version + 1,
			updated_at             = EXCLUDED.updated_at
		WHERE scheduled_payments.version = $15
	`
	for _, p := range payments {
		tag, err := r.q.Exec(ctx, query,
			p.ID(), p.TenantID(), p.ConsumerID(), nullable(p.NegotiationID()), nullable(p.PaymentProfileID()),
			p.Sequence(), p.ScheduleDate(), p.PreviousScheduleDate(), p.Amount(), p.Status().String(),
			p.AttemptCount(), p.LastAttemptedAt(), p.RevenueSharePercentage(), nullable(p.TransactionID()),
			p.Version(), p.CreatedAt(), p.UpdatedAt(),
		)
		if err != nil {
			return fmt.Errorf("save scheduled payment %s: %w", p.ID(), err)
		}
		if tag.RowsAffected() == 0 {
			return errors.New("optimistic locking conflict on scheduled payment " + p.ID())
		}
	}
	return nil
}

func (r *ScheduledPaymentRepo) FindByID(ctx context.Context, tenantID, id string) (model.ScheduledPayment, error) {
	query := `SELECT ` + scheduledPaymentColumns + ` FROM scheduled_payments WHERE tenant_id = $1 AND id = $2`
	return scanScheduledPayment(r.q.QueryRow(ctx, query, tenantID, id))
}

func (r *ScheduledPaymentRepo) FindByConsumer(ctx context.Context, tenantID, consumerID string) ([]model.ScheduledPayment, error) {
	return r.ListByStatus(ctx, tenantID, consumerID)
}

func (r *ScheduledPaymentRepo) ListByStatus(ctx context.Context, tenantID, consumerID string, statuses ...valueobject.ScheduleStatus) ([]model.ScheduledPayment, error) {
	query := `
		SELECT ` + scheduledPaymentColumns + `
		FROM scheduled_payments
		WHERE tenant_id = $1 AND consumer_id = $2
		  AND (cardinality($3::text[]) = 0 OR status = ANY($3))
		ORDER BY sequence
	`
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = s.String()
	}

	rows, err := r.q.Query(ctx, query, tenantID, consumerID, names)
	if err != nil {
		return nil, fmt.Errorf("query scheduled payments: %w", err)
	}
	defer rows.Close()

	var payments []model.ScheduledPayment
	for rows.Next() {
		p, err := scanScheduledPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *ScheduledPaymentRepo) DeleteByConsumer(ctx context.Context, tenantID, consumerID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM scheduled_payments WHERE tenant_id = $1 AND consumer_id = $2`, tenantID, consumerID); err != nil {
		return fmt.Errorf("delete scheduled payments: %w", err)
	}
	return nil
}

func scanScheduledPayment(s scannable) (model.ScheduledPayment, error) {
	var (
		id, tenantID, consumerID                string
		negotiationID, profileID, transactionID *string
		sequence, attemptCount, version         int
		scheduleDate                            time.Time
		previousScheduleDate, lastAttemptedAt   *time.Time
		amount, percentage                      decimal.Decimal
		statusStr                               string
		createdAt, updatedAt                    time.Time
	)
	err := s.Scan(
		&id, &tenantID, &consumerID, &negotiationID, &profileID,
		&sequence, &scheduleDate, &previousScheduleDate, &amount, &statusStr,
		&attemptCount, &lastAttemptedAt, &percentage, &transactionID,
		&version, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.ScheduledPayment{}, fmt.Errorf("scan scheduled payment: %w", notFound(err))
	}

	status, err := valueobject.NewScheduleStatus(statusStr)
	if err != nil {
		return model.ScheduledPayment{}, fmt.Errorf("parse schedule status: %w", err)
	}

	return model.ReconstructScheduledPayment(
		id, tenantID, consumerID, deref(negotiationID), deref(profileID),
		sequence, scheduleDate, previousScheduleDate, amount, status,
		attemptCount, lastAttemptedAt, percentage, deref(transactionID),
		version, createdAt, updatedAt,
	), nil
}
