package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/dissolvo/internal/ports"
)

const (
	serviceName    = "dissolvo"
	serviceVersion = "1.0.0"
)

// Exporter exports run metrics to an OTEL Collector.
type Exporter struct {
	provider       *sdkmetric.MeterProvider
	meter          metric.Meter
	samplesTotal   metric.Int64Counter
	pairsTotal     metric.Int64Counter
	generatedTotal metric.Int64Counter
	failuresTotal  metric.Int64Counter
	durationHist   metric.Float64Histogram
}

// NewExporter creates a new OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	samplesTotal, err := meter.Int64Counter(
		"dissolvo_samples_analyzed_total",
		metric.WithDescription("Samples analyzed per run"),
		metric.WithUnit("{sample}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating samples counter: %w", err)
	}

	pairsTotal, err := meter.Int64Counter(
		"dissolvo_pairs_compared_total",
		metric.WithDescription("R-T pairs compared per run"),
		metric.WithUnit("{pair}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pairs counter: %w", err)
	}

	generatedTotal, err := meter.Int64Counter(
		"dissolvo_replicates_generated_total",
		metric.WithDescription("Synthetic replicates generated per run"),
		metric.WithUnit("{replicate}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating generated counter: %w", err)
	}

	failuresTotal, err := meter.Int64Counter(
		"dissolvo_sample_failures_total",
		metric.WithDescription("Samples that could not be processed"),
		metric.WithUnit("{sample}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failures counter: %w", err)
	}

	durationHist, err := meter.Float64Histogram(
		"dissolvo_run_duration_seconds",
		metric.WithDescription("Batch run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return &Exporter{
		provider:       provider,
		meter:          meter,
		samplesTotal:   samplesTotal,
		pairsTotal:     pairsTotal,
		generatedTotal: generatedTotal,
		failuresTotal:  failuresTotal,
		durationHist:   durationHist,
	}, nil
}

// ExportRunMetrics exports the metrics of a completed analysis run.
func (e *Exporter) ExportRunMetrics(ctx context.Context, m *ports.RunMetrics) error {
	opt := metric.WithAttributes(
		attribute.String("run_id", m.RunID),
		attribute.String("source", m.Source),
	)

	e.samplesTotal.Add(ctx, m.SamplesAnalyzed, opt)
	e.pairsTotal.Add(ctx, m.PairsCompared, opt)
	e.generatedTotal.Add(ctx, m.ReplicatesGenerated, opt)
	e.failuresTotal.Add(ctx, m.Failures, opt)
	e.durationHist.Record(ctx, m.Duration.Seconds(), opt)

	return nil
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
