package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Signal poll outcomes recorded on signal_poll_total.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
)

// Metrics holds the custom metrics instruments for the application.
type Metrics struct {
	RequestCounter     metric.Int64Counter
	RequestDuration    metric.Float64Histogram
	SignalPolls        metric.Int64Counter
	SignalPollDuration metric.Float64Histogram
	TasksGauge         metric.Int64ObservableGauge
	UnreadGauge        metric.Int64ObservableGauge
	taskCountFunc      func() int64
	unreadCountFunc    func() int64
}

// InitMeterProvider initializes the OpenTelemetry meter provider.
// It configures an OTLP gRPC exporter and sets up the global meter provider.
func InitMeterProvider(ctx context.Context, serviceName, otlpEndpoint, environment string) (*sdkmetric.MeterProvider, error) {
	conn, err := newGRPCConn(otlpEndpoint)
	if err != nil {
		return nil, err
	}

	exporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	res, err := newResource(serviceName, environment)
	if err != nil {
		return nil, err
	}

	// Create meter provider with periodic reader (10 second interval)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(10*time.Second),
		)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	return mp, nil
}

// NewMetrics creates and registers custom metrics instruments. The count
// funcs feed the observable gauges and may be nil.
func NewMetrics(meter metric.Meter, taskCountFunc, unreadCountFunc func() int64) (*Metrics, error) {
	m := &Metrics{
		taskCountFunc:   taskCountFunc,
		unreadCountFunc: unreadCountFunc,
	}

	var err error

	m.RequestCounter, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}

	m.RequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request duration histogram: %w", err)
	}

	m.SignalPolls, err = meter.Int64Counter(
		"signal_poll_total",
		metric.WithDescription("Signal collaborator calls by outcome"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create signal poll counter: %w", err)
	}

	m.SignalPollDuration, err = meter.Float64Histogram(
		"signal_poll_duration_seconds",
		metric.WithDescription("Signal collaborator call duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create signal poll duration histogram: %w", err)
	}

	m.TasksGauge, err = meter.Int64ObservableGauge(
		"tasks_total",
		metric.WithDescription("Current number of tasks in the system"),
		metric.WithUnit("{task}"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			if m.taskCountFunc != nil {
				o.Observe(m.taskCountFunc())
			}
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks gauge: %w", err)
	}

	m.UnreadGauge, err = meter.Int64ObservableGauge(
		"notifications_unread",
		metric.WithDescription("Unread notifications in the feed"),
		metric.WithUnit("{notification}"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			if m.unreadCountFunc != nil {
				o.Observe(m.unreadCountFunc())
			}
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create unread gauge: %w", err)
	}

	return m, nil
}

// RecordRequest records one served HTTP request. A nil receiver is a no-op.
func (m *Metrics) RecordRequest(ctx context.Context, method, route string, status int, start time.Time) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)

	m.RequestCounter.Add(ctx, 1, attrs)
	m.RequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
}

// RecordSignalPoll records one collaborator call. A nil receiver is a no-op.
func (m *Metrics) RecordSignalPoll(ctx context.Context, signal, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SignalPolls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("signal", signal),
		attribute.String("outcome", outcome),
	))
	m.SignalPollDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("signal", signal),
	))
}
