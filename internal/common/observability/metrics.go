package observability

import (
	"context"
	"errors"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"

	"readiness-workers/internal/common/metrics"
)

// Options configures metrics and tracing.
type Options struct {
	ServiceName    string
	TracingEnabled bool
	JaegerEndpoint string
	SampleRatio    float64
	// Registerer receives the otel prometheus collector. Defaults to the
	// global prometheus registerer.
	Registerer promclient.Registerer
	// SpanProcessor replaces the jaeger exporter when set.
	SpanProcessor SpanProcessor
}

type Observability struct {
	meterProvider *metric.MeterProvider
	tracing       *tracing
	tracer        trace.Tracer

	jobCounter  otelmetric.Int64Counter
	jobDuration otelmetric.Float64Histogram
	assessments otelmetric.Int64Counter
}

// New builds the otel meter provider backed by a prometheus exporter and,
// when enabled, a tracer provider. Failures degrade to no-op instruments.
func New(opts Options) (*Observability, error) {
	o := &Observability{}

	tr, err := newTracing(opts)
	o.tracing = tr
	o.tracer = tr.tracer(opts.ServiceName)

	exporterOpts := []prometheus.Option{}
	if opts.Registerer != nil {
		exporterOpts = append(exporterOpts, prometheus.WithRegisterer(opts.Registerer))
	}
	exporter, expErr := prometheus.New(exporterOpts...)
	if expErr != nil {
		return o, errors.Join(err, expErr)
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	meter := provider.Meter(opts.ServiceName)

	o.meterProvider = provider
	o.jobCounter, _ = meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)
	o.jobDuration, _ = meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)
	o.assessments, _ = meter.Int64Counter(
		"readiness.assessments",
		otelmetric.WithDescription("Readiness assessments by outcome"),
	)

	return o, err
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o.jobCounter != nil {
		o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string) {
	if o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

// ObserveJob records one finished worker job in both the prometheus
// collectors and the otel instruments. An empty errorCode means success.
func (o *Observability) ObserveJob(ctx context.Context, taskType, errorCode string, started time.Time) {
	metrics.ObserveJob(taskType, errorCode, started)

	status := "completed"
	if errorCode != "" {
		status = errorCode
	}
	o.RecordJobProcessed(ctx, taskType, status)
	o.RecordJobDuration(ctx, taskType, time.Since(started), status)
}

// RecordAssessment counts one assessment by outcome.
func (o *Observability) RecordAssessment(ctx context.Context, outcome string) {
	if o.assessments != nil {
		o.assessments.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

// Shutdown flushes pending spans and stops the meter provider.
func (o *Observability) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracing != nil {
		errs = append(errs, o.tracing.shutdown(ctx))
	}
	if o.meterProvider != nil {
		errs = append(errs, o.meterProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
