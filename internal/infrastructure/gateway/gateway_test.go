package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/port"
	"github.com/soumabha1987/yn-dev-sub000/internal/domain/valueobject"
	"github.com/soumabha1987/yn-dev-sub000/internal/infrastructure/metrics"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockGateway struct {
	chargeFunc func(ctx context.Context, req port.ChargeRequest) (port.ChargeResult, error)
	calls      int
}

func (m *mockGateway) Charge(ctx context.Context, req port.ChargeRequest) (port.ChargeResult, error) {
	m.calls++
	if m.chargeFunc != nil {
		return m.chargeFunc(ctx, req)
	}
	return port.ChargeResult{Success: true, GatewayTransactionID: "gw-1"}, nil
}

type mockRazorpayAPI struct {
	order      map[string]interface{}
	orderErr   error
	payment    map[string]interface{}
	paymentErr error
	delay      time.Duration

	orderData   map[string]interface{}
	paymentData map[string]interface{}
}

func (m *mockRazorpayAPI) CreateOrder(data map[string]interface{}) (map[string]interface{}, error) {
	m.orderData = data
	return m.order, m.orderErr
}

func (m *mockRazorpayAPI) CreateRecurringPayment(data map[string]interface{}) (map[string]interface{}, error) {
	m.paymentData = data
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	return m.payment, m.paymentErr
}

func chargeRequest(gateway valueobject.GatewayCapability, ref string) port.ChargeRequest {
	return port.ChargeRequest{
		Gateway:     gateway,
		ProfileRef:  ref,
		AmountMinor: 30000,
		Currency:    "USD",
		Metadata: map[string]string{
			"consumer_id":          "consumer-1",
			"scheduled_payment_id": "sp-1",
		},
	}
}

// ---------------------------------------------------------------------------
// Router
// ---------------------------------------------------------------------------

func TestRouter_Charge(t *testing.T) {
	tokenized := &mockGateway{}
	hosted := &mockGateway{}
	router := NewRouter().
		Register(valueobject.GatewayTokenizedProfile, tokenized).
		Register(valueobject.GatewayHostedSDK, hosted)

	_, err := router.Charge(context.Background(), chargeRequest(valueobject.GatewayHostedSDK, "tok"))
	require.NoError(t, err)
	assert.Equal(t, 0, tokenized.calls)
	assert.Equal(t, 1, hosted.calls)

	_, err = router.Charge(context.Background(), chargeRequest(valueobject.GatewaySOAPToken, "tok"))
	assert.ErrorContains(t, err, "no payment provider")
}

func TestNewProviderRouter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("stub disabled leaves capabilities unserved", func(t *testing.T) {
		router := NewProviderRouter(Options{}, logger)

		for _, capability := range []valueobject.GatewayCapability{
			valueobject.GatewayTokenizedProfile,
			valueobject.GatewaySOAPToken,
			valueobject.GatewayHostedSDK,
			valueobject.GatewayMerchantOfRecord,
		} {
			_, err := router.Charge(ctx, chargeRequest(capability, "tok"))
			assert.ErrorContains(t, err, "no payment provider", capability.String())
		}
	})

	t.Run("stub enabled serves every capability", func(t *testing.T) {
		router := NewProviderRouter(Options{StubEnabled: true, StubDeclineRefs: []string{"tok_decline"}}, logger)

		result, err := router.Charge(ctx, chargeRequest(valueobject.GatewayTokenizedProfile, "tok"))
		require.NoError(t, err)
		assert.True(t, result.Success)

		result, err = router.Charge(ctx, chargeRequest(valueobject.GatewayMerchantOfRecord, "tok_decline"))
		require.NoError(t, err)
		assert.False(t, result.Success)
	})

	t.Run("razorpay keys bind merchant of record only", func(t *testing.T) {
		router := NewProviderRouter(Options{RazorpayKeyID: "rzp_test", RazorpayKeySecret: "secret"}, logger)

		assert.IsType(t, &RazorpayGateway{}, router.providers[valueobject.GatewayMerchantOfRecord.String()])
		_, err := router.Charge(ctx, chargeRequest(valueobject.GatewayHostedSDK, "tok"))
		assert.ErrorContains(t, err, "no payment provider")
	})

	t.Run("razorpay keeps merchant of record with stub enabled", func(t *testing.T) {
		router := NewProviderRouter(Options{StubEnabled: true, RazorpayKeyID: "rzp_test", RazorpayKeySecret: "secret"}, logger)

		assert.IsType(t, &RazorpayGateway{}, router.providers[valueobject.GatewayMerchantOfRecord.String()])
		assert.IsType(t, &StubGateway{}, router.providers[valueobject.GatewayHostedSDK.String()])
	})
}

// ---------------------------------------------------------------------------
// Stub
// ---------------------------------------------------------------------------

func TestStubGateway_Charge(t *testing.T) {
	stub := NewStubGateway(0, "tok_decline")

	t.Run("approves", func(t *testing.T) {
		res, err := stub.Charge(context.Background(), chargeRequest(valueobject.GatewayTokenizedProfile, "tok_ok"))

		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Contains(t, res.GatewayTransactionID, "stub_")
		assert.Contains(t, string(res.RawResponse), `"status":"approved"`)
	})

	t.Run("declines configured references", func(t *testing.T) {
		res, err := stub.Charge(context.Background(), chargeRequest(valueobject.GatewayTokenizedProfile, "tok_decline"))

		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Empty(t, res.GatewayTransactionID)
		assert.Equal(t, "do_not_honor", res.FailureReason)
	})

	t.Run("delay honours the deadline", func(t *testing.T) {
		slow := NewStubGateway(time.Second)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := slow.Charge(ctx, chargeRequest(valueobject.GatewayTokenizedProfile, "tok_ok"))

		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

// ---------------------------------------------------------------------------
// Razorpay
// ---------------------------------------------------------------------------

func TestRazorpayGateway_Charge(t *testing.T) {
	req := chargeRequest(valueobject.GatewayMerchantOfRecord, "cust_1:token_1")

	t.Run("recurring payment succeeds", func(t *testing.T) {
		api := &mockRazorpayAPI{
			order:   map[string]interface{}{"id": "order_1"},
			payment: map[string]interface{}{"razorpay_payment_id": "pay_1"},
		}

		res, err := NewRazorpayGateway(api).Charge(context.Background(), req)

		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "pay_1", res.GatewayTransactionID)
		assert.Equal(t, int64(30000), api.orderData["amount"])
		assert.Equal(t, "sp-1", api.orderData["receipt"])
		assert.Equal(t, "order_1", api.paymentData["order_id"])
		assert.Equal(t, "cust_1", api.paymentData["customer_id"])
		assert.Equal(t, "token_1", api.paymentData["token"])
	})

	t.Run("rejected debit is a decline", func(t *testing.T) {
		api := &mockRazorpayAPI{
			order:      map[string]interface{}{"id": "order_1"},
			paymentErr: errors.New("BAD_REQUEST_ERROR: token expired"),
		}

		res, err := NewRazorpayGateway(api).Charge(context.Background(), req)

		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Contains(t, res.FailureReason, "token expired")
	})

	t.Run("order failure is an error", func(t *testing.T) {
		api := &mockRazorpayAPI{orderErr: errors.New("connection reset")}

		_, err := NewRazorpayGateway(api).Charge(context.Background(), req)

		assert.ErrorContains(t, err, "create razorpay order")
	})

	t.Run("malformed reference", func(t *testing.T) {
		_, err := NewRazorpayGateway(&mockRazorpayAPI{}).Charge(context.Background(),
			chargeRequest(valueobject.GatewayMerchantOfRecord, "cust_1"))

		assert.ErrorContains(t, err, "customer_id:token_id")
	})

	t.Run("slow SDK call is cut off by the deadline", func(t *testing.T) {
		api := &mockRazorpayAPI{
			order:   map[string]interface{}{"id": "order_1"},
			payment: map[string]interface{}{"razorpay_payment_id": "pay_1"},
			delay:   200 * time.Millisecond,
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := NewRazorpayGateway(api).Charge(ctx, req)

		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

// ---------------------------------------------------------------------------
// Instrumented
// ---------------------------------------------------------------------------

func TestInstrumented_Charge(t *testing.T) {
	newInstrumented := func(t *testing.T, next port.PaymentGateway) (*Instrumented, *metrics.Collectors, *tracetest.SpanRecorder) {
		t.Helper()
		col, err := metrics.New(prometheus.NewRegistry(), noop.NewMeterProvider().Meter("test"))
		require.NoError(t, err)
		recorder := tracetest.NewSpanRecorder()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
		return NewInstrumented(next, col, tp.Tracer("test")), col, recorder
	}
	req := chargeRequest(valueobject.GatewayTokenizedProfile, "tok")

	t.Run("success", func(t *testing.T) {
		g, col, recorder := newInstrumented(t, &mockGateway{})

		res, err := g.Charge(context.Background(), req)

		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, 1.0, promtestutil.ToFloat64(col.GatewayCharges.WithLabelValues("TOKENIZED_PROFILE", OutcomeSuccess)))
		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "gateway.Charge", spans[0].Name())
		assert.Equal(t, codes.Ok, spans[0].Status().Code)
	})

	t.Run("decline", func(t *testing.T) {
		g, col, recorder := newInstrumented(t, &mockGateway{
			chargeFunc: func(context.Context, port.ChargeRequest) (port.ChargeResult, error) {
				return port.ChargeResult{Success: false, FailureReason: "insufficient funds"}, nil
			},
		})

		_, err := g.Charge(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, 1.0, promtestutil.ToFloat64(col.GatewayCharges.WithLabelValues("TOKENIZED_PROFILE", OutcomeDeclined)))
		assert.Equal(t, codes.Error, recorder.Ended()[0].Status().Code)
	})

	t.Run("timeout", func(t *testing.T) {
		g, col, _ := newInstrumented(t, NewStubGateway(time.Second))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := g.Charge(ctx, req)

		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 1.0, promtestutil.ToFloat64(col.GatewayCharges.WithLabelValues("TOKENIZED_PROFILE", OutcomeTimeout)))
	})

	t.Run("transport error", func(t *testing.T) {
		g, col, _ := newInstrumented(t, &mockGateway{
			chargeFunc: func(context.Context, port.ChargeRequest) (port.ChargeResult, error) {
				return port.ChargeResult{}, errors.New("connection refused")
			},
		})

		_, err := g.Charge(context.Background(), req)

		assert.Error(t, err)
		assert.Equal(t, 1.0, promtestutil.ToFloat64(col.GatewayCharges.WithLabelValues("TOKENIZED_PROFILE", OutcomeError)))
	})
}
