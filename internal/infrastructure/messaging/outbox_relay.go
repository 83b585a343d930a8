package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/soumabha1987/yn-dev-sub000/internal/infrastructure/metrics"
	"github.com/soumabha1987/yn-dev-sub000/pkg/events"
	pkgkafka "github.com/soumabha1987/yn-dev-sub000/pkg/kafka"
)

// Publisher is the subset of pkgkafka.Producer the relay needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// OutboxRelay drains the transactional outbox into a Kafka topic. Entries are
// marked published only after Kafka acknowledged the whole batch, so delivery
// is at-least-once and consumers must dedupe on the event_id header.
type OutboxRelay struct {
	outbox    events.OutboxReader
	publisher Publisher
	topic     string
	batchSize int
	interval  time.Duration
	metrics   *metrics.Collectors
	logger    *slog.Logger
	now       func() time.Time
}

// RelayConfig tunes the polling loop.
type RelayConfig struct {
	Topic     string
	BatchSize int
	Interval  time.Duration
}

func NewOutboxRelay(outbox events.OutboxReader, publisher Publisher, cfg RelayConfig, m *metrics.Collectors, logger *slog.Logger) *OutboxRelay {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	return &OutboxRelay{
		outbox:    outbox,
		publisher: publisher,
		topic:     cfg.Topic,
		batchSize: cfg.BatchSize,
		interval:  cfg.Interval,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// Run polls until ctx is cancelled. A full batch is followed immediately by
// another poll.
func (r *OutboxRelay) Run(ctx context.Context) error {
	r.logger.Info("outbox relay starting", "topic", r.topic, "batch_size", r.batchSize, "interval", r.interval)

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopping")
			return nil
		case <-timer.C:
		}

		n, err := r.RelayOnce(ctx)
		if err != nil && ctx.Err() == nil {
			r.logger.Error("outbox relay batch failed", "error", err)
		}
		if n == r.batchSize && err == nil {
			timer.Reset(0)
			continue
		}
		timer.Reset(r.interval)
	}
}

// RelayOnce publishes one batch and returns how many entries it relayed.
func (r *OutboxRelay) RelayOnce(ctx context.Context) (int, error) {
	entries, err := r.outbox.FetchUnpublished(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch outbox: %w", err)
	}
	if len(entries) == 0 {
		r.observe(0, time.Time{})
		return 0, nil
	}

	messages := make([]pkgkafka.Message, 0, len(entries))
	ids := make([]string, 0, len(entries))
	oldest := entries[0].CreatedAt
	for _, e := range entries {
		messages = append(messages, toMessage(r.topic, e))
		ids = append(ids, e.ID)
		if e.CreatedAt.Before(oldest) {
			oldest = e.CreatedAt
		}
	}

	if err := r.publisher.Publish(ctx, r.topic, messages...); err != nil {
		return 0, fmt.Errorf("publish outbox batch: %w", err)
	}
	if err := r.outbox.MarkPublished(ctx, ids, r.now().UTC()); err != nil {
		return 0, fmt.Errorf("mark outbox batch published: %w", err)
	}

	r.observe(len(entries), oldest)
	r.logger.Debug("outbox batch relayed", "count", len(entries))
	return len(entries), nil
}

func (r *OutboxRelay) observe(published int, oldest time.Time) {
	if r.metrics != nil {
		r.metrics.ObserveRelay(published, oldest, r.now())
	}
}

// toMessage keys by aggregate so one aggregate's events stay ordered on a
// single partition.
func toMessage(topic string, e events.OutboxEntry) pkgkafka.Message {
	return pkgkafka.Message{
		Topic: topic,
		Key:   []byte(e.AggregateID),
		Value: e.Payload,
		Headers: map[string]string{
			"event_id":       e.ID,
			"event_type":     e.EventType,
			"aggregate_type": e.AggregateType,
			"tenant_id":      e.TenantID,
		},
	}
}
