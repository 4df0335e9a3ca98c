package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricFilesTotal      = "serverfence.files.total"
	metricCheckDuration   = "serverfence.check.duration.seconds"
	metricViolationsTotal = "serverfence.violations.total"
	metricInflightChecks  = "serverfence.inflight.checks"

	attrClass  = "class"
	attrKind   = "kind"
	attrReason = "reason"
)

// durationBucketBoundaries covers 0.1ms to 10s: parsing a single source file
// is sub-millisecond, whole-project runs sum into seconds.
var durationBucketBoundaries = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10}

// CheckMetrics holds the OTel instruments for file-check telemetry.
type CheckMetrics struct {
	filesTotal      metric.Int64Counter
	checkDuration   metric.Float64Histogram
	violationsTotal metric.Int64Counter
	inflightChecks  metric.Int64UpDownCounter
}

// NewCheckMetrics creates the check instruments from the given meter.
func NewCheckMetrics(mt metric.Meter) (*CheckMetrics, error) {
	b := newMetricBuilder(mt)

	cm := &CheckMetrics{
		filesTotal:      b.counter(metricFilesTotal, "Total number of files classified", "{file}"),
		checkDuration:   b.histogram(metricCheckDuration, "Per-file check duration in seconds", "s", durationBucketBoundaries...),
		violationsTotal: b.counter(metricViolationsTotal, "Total number of violations reported", "{violation}"),
		inflightChecks:  b.upDownCounter(metricInflightChecks, "Number of in-flight file checks", "{check}"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return cm, nil
}

// RecordFile records one classified file with its class and check duration.
func (cm *CheckMetrics) RecordFile(ctx context.Context, class string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String(attrClass, class))

	cm.filesTotal.Add(ctx, 1, attrs)
	cm.checkDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordViolation records one reported violation by kind and reason.
func (cm *CheckMetrics) RecordViolation(ctx context.Context, kind, reason string) {
	cm.violationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrKind, kind),
		attribute.String(attrReason, reason),
	))
}

// TrackInflight increments the in-flight gauge and returns a function to decrement it.
func (cm *CheckMetrics) TrackInflight(ctx context.Context) func() {
	cm.inflightChecks.Add(ctx, 1)

	return func() {
		cm.inflightChecks.Add(ctx, -1)
	}
}
