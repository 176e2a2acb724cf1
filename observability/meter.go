package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/voicemap/logger"
)

// InitMeter initializes the OpenTelemetry meter provider and installs it globally.
func InitMeter(ctx context.Context, cfg Config, svc ServiceInfo) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(svc)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.MetricInterval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", svc.Name,
		"endpoint", cfg.Endpoint,
		"interval", cfg.MetricInterval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the voicemap instruments. A nil *Metrics records nothing.
type Metrics struct {
	sessionsCreated   metric.Int64Counter
	jobPolls          metric.Int64Counter
	jobOutcomes       metric.Int64Counter
	operationDuration metric.Float64Histogram
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	sessionsCreated, err := meter.Int64Counter("voicemap.sessions.created",
		metric.WithDescription("Sessions created by uploads"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating voicemap.sessions.created counter: %w", err)
	}

	jobPolls, err := meter.Int64Counter("voicemap.jobs.polls",
		metric.WithDescription("Remote job status fetches by job kind and observed state"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating voicemap.jobs.polls counter: %w", err)
	}

	jobOutcomes, err := meter.Int64Counter("voicemap.jobs.outcomes",
		metric.WithDescription("Finished remote jobs by kind and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating voicemap.jobs.outcomes counter: %w", err)
	}

	operationDuration, err := meter.Float64Histogram("voicemap.operation.duration",
		metric.WithDescription("Duration of explorer operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating voicemap.operation.duration histogram: %w", err)
	}

	return &Metrics{
		sessionsCreated:   sessionsCreated,
		jobPolls:          jobPolls,
		jobOutcomes:       jobOutcomes,
		operationDuration: operationDuration,
	}, nil
}

// RecordSessionCreated counts a new session.
func (m *Metrics) RecordSessionCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.sessionsCreated.Add(ctx, 1)
}

// RecordPoll counts one job status fetch.
func (m *Metrics) RecordPoll(ctx context.Context, kind, state string) {
	if m == nil {
		return
	}
	m.jobPolls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("state", state),
	))
}

// RecordJobOutcome counts a finished job: succeeded, failed, timed_out or error.
func (m *Metrics) RecordJobOutcome(ctx context.Context, kind, outcome string) {
	if m == nil {
		return
	}
	m.jobOutcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
}

// RecordOperation records how long an explorer operation took.
func (m *Metrics) RecordOperation(ctx context.Context, operation, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.operationDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
}
