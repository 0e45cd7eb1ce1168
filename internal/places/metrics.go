package places

import (
	"context"
	"errors"
	"time"

	"restockd_backend/platform/logger"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts and times provider calls.
type Metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the provider collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "restockd",
				Subsystem: "places",
				Name:      "provider_calls_total",
				Help:      "Place lookup provider calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "restockd",
				Subsystem: "places",
				Name:      "provider_call_duration_seconds",
				Help:      "Place lookup provider latency",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2, 5},
			},
			[]string{"operation"},
		),
	}
	reg.MustRegister(m.calls, m.duration)
	return m
}

// InstrumentedProvider records metrics and logs failures for an inner Provider.
type InstrumentedProvider struct {
	inner   Provider
	metrics *Metrics
	log     *logger.Logger
}

// Instrument wraps inner.
func Instrument(inner Provider, metrics *Metrics, log *logger.Logger) *InstrumentedProvider {
	return &InstrumentedProvider{inner: inner, metrics: metrics, log: log}
}

// QuerySuggestions implements Provider.
func (p *InstrumentedProvider) QuerySuggestions(ctx context.Context, text, region string) ([]Candidate, error) {
	start := time.Now()
	candidates, err := p.inner.QuerySuggestions(ctx, text, region)
	p.observe(ctx, "suggestions", start, err)
	return candidates, err
}

// ResolveGeocode implements Provider.
func (p *InstrumentedProvider) ResolveGeocode(ctx context.Context, description string) (GeocodeResult, error) {
	start := time.Now()
	result, err := p.inner.ResolveGeocode(ctx, description)
	p.observe(ctx, "geocode", start, err)
	return result, err
}

func (p *InstrumentedProvider) observe(ctx context.Context, op string, start time.Time, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrUnavailable):
		outcome = "unavailable"
	case errors.Is(err, ErrZeroResults):
		outcome = "zero_results"
	case errors.Is(err, context.Canceled):
		outcome = "canceled"
	default:
		outcome = "error"
	}

	p.metrics.calls.WithLabelValues(op, outcome).Inc()
	if outcome != "unavailable" {
		p.metrics.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
	if outcome == "error" {
		p.log.WithContext(ctx).ProviderError(op, err)
	}
}

var _ Provider = (*InstrumentedProvider)(nil)
