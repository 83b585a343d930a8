package gateway

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/port"
	"github.com/soumabha1987/yn-dev-sub000/internal/infrastructure/metrics"
)

// Charge outcomes as reported in metrics and spans.
const (
	OutcomeSuccess  = "success"
	OutcomeDeclined = "declined"
	OutcomeError    = "error"
	OutcomeTimeout  = "timeout"
)

// Instrumented wraps a gateway with a span per charge and outcome metrics.
type Instrumented struct {
	next    port.PaymentGateway
	metrics *metrics.Collectors
	tracer  trace.Tracer
	now     func() time.Time
}

func NewInstrumented(next port.PaymentGateway, m *metrics.Collectors, tracer trace.Tracer) *Instrumented {
	return &Instrumented{next: next, metrics: m, tracer: tracer, now: time.Now}
}

func (g *Instrumented) Charge(ctx context.Context, req port.ChargeRequest) (port.ChargeResult, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.Charge", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("gateway.capability", req.Gateway.String()),
		attribute.Int64("charge.amount_minor", req.AmountMinor),
		attribute.String("charge.currency", req.Currency),
		attribute.String("consumer_id", req.Metadata["consumer_id"]),
	)

	start := g.now()
	result, err := g.next.Charge(ctx, req)
	elapsed := g.now().Sub(start)

	outcome := classify(ctx, result, err)
	span.SetAttributes(attribute.String("charge.outcome", outcome))
	switch outcome {
	case OutcomeSuccess:
		span.SetAttributes(attribute.String("gateway.transaction_id", result.GatewayTransactionID))
		span.SetStatus(codes.Ok, "")
	case OutcomeDeclined:
		span.SetStatus(codes.Error, result.FailureReason)
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	if g.metrics != nil {
		g.metrics.ObserveCharge(req.Gateway.String(), outcome, elapsed)
		if outcome == OutcomeSuccess {
			g.metrics.AddSettled(ctx, req.Gateway.String(), req.Currency, req.AmountMinor)
		}
	}
	return result, err
}

func classify(ctx context.Context, result port.ChargeResult, err error) string {
	switch {
	case err != nil && ctx.Err() != nil:
		return OutcomeTimeout
	case err != nil:
		return OutcomeError
	case result.Success:
		return OutcomeSuccess
	default:
		return OutcomeDeclined
	}
}
