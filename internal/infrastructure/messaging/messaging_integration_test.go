//go:build integration

package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soumabha1987/yn-dev-sub000/internal/application/dto"
	pkgkafka "github.com/soumabha1987/yn-dev-sub000/pkg/kafka"
	"github.com/soumabha1987/yn-dev-sub000/pkg/testutil"
)

type recordingAttempter struct {
	got chan dto.AttemptPaymentRequest
}

func (r *recordingAttempter) AttemptPayment(_ context.Context, req dto.AttemptPaymentRequest) (dto.PaymentResultResponse, error) {
	r.got <- req
	return dto.PaymentResultResponse{}, nil
}

func TestDuePaymentConsumer_Kafka(t *testing.T) {
	ctx := context.Background()
	kc := testutil.NewKafkaContainer(ctx, t)
	cfg := kc.Config("settlement-test")

	producer := pkgkafka.NewProducer(cfg)
	t.Cleanup(func() { _ = producer.Close() })

	attempter := &recordingAttempter{got: make(chan dto.AttemptPaymentRequest, 1)}
	handler := NewDuePaymentHandler(attempter, nil, discardLogger())
	consumer := pkgkafka.NewConsumer(cfg, "settlement.payments.due", handler.Handle, discardLogger())
	t.Cleanup(func() { _ = consumer.Close() })

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = consumer.Start(runCtx) }()

	require.Eventually(t, func() bool {
		err := producer.Publish(ctx, "settlement.payments.due", pkgkafka.Message{
			Key:   []byte(testutil.TestConsumerID),
			Value: []byte(`{"tenant_id":"` + testutil.TestTenantID + `","consumer_id":"` + testutil.TestConsumerID + `","scheduled_payment_id":"sp-1"}`),
		})
		return err == nil
	}, 30*time.Second, time.Second)

	select {
	case req := <-attempter.got:
		assert.Equal(t, testutil.TestTenantID, req.TenantID)
		assert.Equal(t, testutil.TestConsumerID, req.ConsumerID)
		assert.Equal(t, "sp-1", req.ScheduledPaymentID)
	case <-time.After(60 * time.Second):
		t.Fatal("due payment was not consumed")
	}
}
