package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsumer(handler Handler, opts ...ConsumerOption) *Consumer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewConsumer(Config{Brokers: []string{"localhost:9092"}},
		"settlement.payments.due", handler, logger, opts...)
}

func TestConsumer_Dispatch(t *testing.T) {
	msg := Message{Topic: "settlement.payments.due", Value: []byte(`{}`)}

	t.Run("retries transient failures", func(t *testing.T) {
		calls := 0
		c := newTestConsumer(func(context.Context, Message) error {
			calls++
			if calls < 3 {
				return errors.New("connection refused")
			}
			return nil
		}, WithRetry(3, time.Millisecond))
		defer c.Close()

		require.NoError(t, c.dispatch(context.Background(), msg))
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after the last attempt", func(t *testing.T) {
		calls := 0
		c := newTestConsumer(func(context.Context, Message) error {
			calls++
			return errors.New("connection refused")
		}, WithRetry(2, time.Millisecond))
		defer c.Close()

		assert.ErrorContains(t, c.dispatch(context.Background(), msg), "connection refused")
		assert.Equal(t, 2, calls)
	})

	t.Run("permanent errors are not retried", func(t *testing.T) {
		calls := 0
		cause := errors.New("bad payload")
		c := newTestConsumer(func(context.Context, Message) error {
			calls++
			return Permanent(fmt.Errorf("decode: %w", cause))
		}, WithRetry(5, time.Millisecond))
		defer c.Close()

		err := c.dispatch(context.Background(), msg)

		assert.True(t, IsPermanent(err))
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, 1, calls)
	})

	t.Run("default is a single attempt", func(t *testing.T) {
		calls := 0
		c := newTestConsumer(func(context.Context, Message) error {
			calls++
			return errors.New("boom")
		})
		defer c.Close()

		assert.Error(t, c.dispatch(context.Background(), msg))
		assert.Equal(t, 1, calls)
	})

	t.Run("handler timeout", func(t *testing.T) {
		c := newTestConsumer(func(ctx context.Context, _ Message) error {
			<-ctx.Done()
			return ctx.Err()
		}, WithHandlerTimeout(10*time.Millisecond))
		defer c.Close()

		assert.ErrorIs(t, c.dispatch(context.Background(), msg), context.DeadlineExceeded)
	})
}

func TestPermanent(t *testing.T) {
	assert.NoError(t, Permanent(nil))
	assert.False(t, IsPermanent(errors.New("plain")))
	assert.True(t, IsPermanent(fmt.Errorf("wrapped: %w", Permanent(errors.New("x")))))
}

func TestToMessage(t *testing.T) {
	msg := toMessage(kafkago.Message{
		Topic:   "settlement-events",
		Key:     []byte("consumer-1"),
		Value:   []byte(`{"id":"1"}`),
		Headers: []kafkago.Header{{Key: "event_type", Value: []byte("settlement.payment.succeeded")}},
	})

	assert.Equal(t, "settlement-events", msg.Topic)
	assert.Equal(t, "consumer-1", string(msg.Key))
	assert.Equal(t, "settlement.payment.succeeded", msg.Headers["event_type"])
}
