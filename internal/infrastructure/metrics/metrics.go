package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const namespace = "settlement"

// Collectors are the service's Prometheus instruments plus the OpenTelemetry
// counters exported through the same registry.
type Collectors struct {
	GatewayCharges  *prometheus.CounterVec
	GatewayLatency  *prometheus.HistogramVec
	OutboxPublished prometheus.Counter
	OutboxLag       prometheus.Gauge
	DuePayments     *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec

	settledMinor metric.Int64Counter
}

// New registers the collectors on reg and creates the OpenTelemetry
// instruments on meter.
func New(reg prometheus.Registerer, meter metric.Meter) (*Collectors, error) {
	c := &Collectors{
		GatewayCharges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_charges_total",
			Help:      "Gateway charge attempts by capability and outcome.",
		}, []string{"gateway", "outcome"}),
		GatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_charge_duration_seconds",
			Help:      "Latency of gateway charge calls.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"gateway"}),
		OutboxPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_published_total",
			Help:      "Domain events relayed from the outbox to Kafka.",
		}),
		OutboxLag: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outbox_lag_seconds",
			Help:      "Age of the oldest event in the last relayed batch.",
		}),
		DuePayments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "due_payments_total",
			Help:      "Due-payment messages consumed by outcome.",
		}, []string{"outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route template and status code.",
		}, []string{"method", "route", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route template.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	collectors := []prometheus.Collector{
		c.GatewayCharges, c.GatewayLatency, c.OutboxPublished, c.OutboxLag,
		c.DuePayments, c.HTTPRequests, c.HTTPDuration,
	}
	for _, col := range collectors {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}

	settled, err := meter.Int64Counter("settlement.payments.settled_minor_units",
		metric.WithDescription("Money collected by successful transactions, in minor units."),
	)
	if err != nil {
		return nil, fmt.Errorf("create settled amount counter: %w", err)
	}
	c.settledMinor = settled
	return c, nil
}

// ObserveCharge records one gateway call.
func (c *Collectors) ObserveCharge(gateway, outcome string, elapsed time.Duration) {
	c.GatewayCharges.WithLabelValues(gateway, outcome).Inc()
	c.GatewayLatency.WithLabelValues(gateway).Observe(elapsed.Seconds())
}

// AddSettled adds a successful charge amount.
func (c *Collectors) AddSettled(ctx context.Context, gateway, currency string, amountMinor int64) {
	c.settledMinor.Add(ctx, amountMinor, metric.WithAttributes(
		attribute.String("gateway", gateway),
		attribute.String("currency", currency),
	))
}

// ObserveHTTP records one served request.
func (c *Collectors) ObserveHTTP(method, route string, code int, elapsed time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveRelay records a relayed batch and the age of its oldest event.
func (c *Collectors) ObserveRelay(published int, oldest time.Time, now time.Time) {
	c.OutboxPublished.Add(float64(published))
	if published == 0 {
		c.OutboxLag.Set(0)
		return
	}
	c.OutboxLag.Set(now.Sub(oldest).Seconds())
}
