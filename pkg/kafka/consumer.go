package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Handler processes a consumed Kafka message.
type Handler func(ctx context.Context, msg Message) error

// permanentError marks a handler failure that retrying cannot fix.
type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent wraps err so the consumer commits the message without retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// IsPermanent reports whether err was wrapped with Permanent.
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

// ConsumerOption configures a Consumer.
type ConsumerOption func(*Consumer)

// WithRetry retries a failing handler up to attempts times in total, waiting
// backoff, 2*backoff, ... between tries.
func WithRetry(attempts int, backoff time.Duration) ConsumerOption {
	return func(c *Consumer) {
		if attempts > 0 {
			c.attempts = attempts
		}
		c.backoff = backoff
	}
}

// WithHandlerTimeout bounds each handler call.
func WithHandlerTimeout(d time.Duration) ConsumerOption {
	return func(c *Consumer) { c.handlerTimeout = d }
}

// Consumer reads one topic as part of a consumer group and commits each
// message after its handler has run.
type Consumer struct {
	reader  *kafkago.Reader
	handler Handler
	logger  *slog.Logger

	attempts       int
	backoff        time.Duration
	handlerTimeout time.Duration
}

// NewConsumer creates a new Consumer for the given topic with the provided handler.
func NewConsumer(cfg Config, topic string, handler Handler, logger *slog.Logger, opts ...ConsumerOption) *Consumer {
	readerCfg := kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    topic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10 * 1024 * 1024, // 10 MB
	}
	if d := cfg.dialer(); d != nil {
		readerCfg.Dialer = d
	}

	c := &Consumer{
		reader:   kafkago.NewReader(readerCfg),
		handler:  handler,
		logger:   logger,
		attempts: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start consumes until ctx is cancelled. A message whose handler still fails
// after the configured retries is logged and committed so one poison message
// cannot stall the partition.
func (c *Consumer) Start(ctx context.Context) error {
	cfg := c.reader.Config()
	c.logger.Info("consumer starting", "topic", cfg.Topic, "group", cfg.GroupID)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("consumer stopping due to context cancellation")
				return nil
			}
			return fmt.Errorf("fetching message: %w", err)
		}

		if err := c.dispatch(ctx, toMessage(m)); err != nil {
			c.logger.Error("handler error",
				"topic", m.Topic,
				"partition", m.Partition,
				"offset", m.Offset,
				"permanent", IsPermanent(err),
				"error", err,
			)
		}
		if ctx.Err() != nil {
			// Leave the offset uncommitted; the group redelivers it.
			return nil
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("commit error",
				"topic", m.Topic,
				"partition", m.Partition,
				"offset", m.Offset,
				"error", err,
			)
		}
	}
}

// dispatch runs the handler with retries and returns the last error.
func (c *Consumer) dispatch(ctx context.Context, msg Message) error {
	var err error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		err = c.call(ctx, msg)
		if err == nil || IsPermanent(err) || attempt == c.attempts {
			return err
		}
		c.logger.Warn("handler failed, retrying",
			"topic", msg.Topic,
			"attempt", attempt,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return err
		case <-time.After(time.Duration(attempt) * c.backoff):
		}
	}
	return err
}

func (c *Consumer) call(ctx context.Context, msg Message) error {
	if c.handlerTimeout <= 0 {
		return c.handler(ctx, msg)
	}
	hctx, cancel := context.WithTimeout(ctx, c.handlerTimeout)
	defer cancel()
	return c.handler(hctx, msg)
}

func toMessage(m kafkago.Message) Message {
	msg := Message{
		Topic:   m.Topic,
		Key:     m.Key,
		Value:   m.Value,
		Headers: make(map[string]string, len(m.Headers)),
	}
	for _, h := range m.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}

// Close closes the reader.
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("closing kafka reader: %w", err)
	}
	return nil
}
