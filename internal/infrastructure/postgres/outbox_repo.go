package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/soumabha1987/yn-dev-sub000/pkg/events"
	pkgpostgres "github.com/soumabha1987/yn-dev-sub000/pkg/postgres"
)

// OutboxRepo implements events.OutboxWriter and events.OutboxReader.
type OutboxRepo struct {
	q pkgpostgres.Querier
}

func NewOutboxRepo(q pkgpostgres.Querier) *OutboxRepo {
	return &OutboxRepo{q: q}
}

func (r *OutboxRepo) Store(ctx context.Context, entries []events.OutboxEntry) error {
	query := `
		INSERT INTO outbox (id, aggregate_id, aggregate_type, event_type, tenant_id, payload, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`
	for _, e := range entries {
		_, err := r.q.Exec(ctx, query,
			e.ID, e.AggregateID, e.AggregateType, e.EventType, e.TenantID, e.Payload, e.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert outbox entry %s: %w", e.EventType, err)
		}
	}
	return nil
}

// FetchUnpublished returns the oldest unpublished entries.
func (r *OutboxRepo) FetchUnpublished(ctx context.Context, batchSize int) ([]events.OutboxEntry, error) {
	query := `
		SELECT id, aggregate_id, aggregate_type, event_type, tenant_id, payload, created_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at, id
		LIMIT $1
	`
	rows, err := r.q.Query(ctx, query, batchSize)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var entries []events.OutboxEntry
	for rows.Next() {
		var e events.OutboxEntry
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.AggregateType, &e.EventType, &e.TenantID, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *OutboxRepo) MarkPublished(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.q.Exec(ctx, `UPDATE outbox SET published_at = $2 WHERE id = ANY($1::uuid[])`, ids, at); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}
