package ports

import (
	"context"
	"time"
)

// MetricsExporter exports run metrics to an external observability system.
type MetricsExporter interface {
	// ExportRunMetrics exports the metrics of a completed analysis run.
	ExportRunMetrics(ctx context.Context, m *RunMetrics) error
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}

// RunMetrics summarizes one batch run for export.
type RunMetrics struct {
	RunID  string
	Source string

	SamplesAnalyzed     int64
	PairsCompared       int64
	ReplicatesGenerated int64
	Failures            int64

	Duration time.Duration
}
