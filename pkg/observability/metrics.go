package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/lariat/pkg/intern"
)

const (
	metricInternsTotal   = "lariat.interns.total"
	metricInternDuration = "lariat.intern.duration.seconds"
	metricInternErrors   = "lariat.intern.errors.total"

	gaugeInternedStrings = "lariat.interner.strings"
	gaugeArenaBytes      = "lariat.interner.arena.bytes"
	gaugeDedupRatio      = "lariat.interner.dedup.ratio"

	attrResult = "result"
	attrReason = "reason"

	// ResultHit and ResultMiss label whether an intern call was answered
	// from the dedup index.
	ResultHit  = "hit"
	ResultMiss = "miss"
)

// internDurationBoundaries covers 100ns to 1ms; interning is a
// sub-microsecond operation unless it triggers arena growth.
var internDurationBoundaries = []float64{1e-7, 2.5e-7, 5e-7, 1e-6, 2.5e-6, 5e-6, 1e-5, 1e-4, 1e-3}

// InternMetrics holds the OTel instruments for interning activity.
type InternMetrics struct {
	internsTotal   metric.Int64Counter
	internDuration metric.Float64Histogram
	errorsTotal    metric.Int64Counter
}

// NewInternMetrics creates interning metric instruments from the given meter.
func NewInternMetrics(mt metric.Meter) (*InternMetrics, error) {
	interns, err := mt.Int64Counter(metricInternsTotal,
		metric.WithDescription("Total number of intern calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricInternsTotal, err)
	}

	duration, err := mt.Float64Histogram(metricInternDuration,
		metric.WithDescription("Intern call duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(internDurationBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricInternDuration, err)
	}

	errs, err := mt.Int64Counter(metricInternErrors,
		metric.WithDescription("Total number of failed intern calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricInternErrors, err)
	}

	return &InternMetrics{
		internsTotal:   interns,
		internDuration: duration,
		errorsTotal:    errs,
	}, nil
}

// RecordIntern records one completed intern call with its result
// (ResultHit or ResultMiss) and duration.
func (im *InternMetrics) RecordIntern(ctx context.Context, result string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String(attrResult, result))

	im.internsTotal.Add(ctx, 1, attrs)
	im.internDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordError records one failed intern call with the failure reason.
func (im *InternMetrics) RecordError(ctx context.Context, reason string) {
	im.errorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrReason, reason)))
}

// RegisterStatsGauges registers observable gauges that snapshot interner
// statistics at collection time. stats is called on every scrape; it must
// be safe to call from the collector's goroutine (ThreadedRodeo.Stats is,
// Rodeo.Stats requires external synchronization).
func RegisterStatsGauges(mt metric.Meter, stats func() intern.Stats) error {
	strings, err := mt.Int64ObservableGauge(gaugeInternedStrings,
		metric.WithDescription("Number of distinct interned strings"),
		metric.WithUnit("{string}"),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", gaugeInternedStrings, err)
	}

	arenaBytes, err := mt.Int64ObservableGauge(gaugeArenaBytes,
		metric.WithDescription("Total bytes reserved by the interner arena"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", gaugeArenaBytes, err)
	}

	dedupRatio, err := mt.Float64ObservableGauge(gaugeDedupRatio,
		metric.WithDescription("Fraction of intern calls answered by deduplication"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", gaugeDedupRatio, err)
	}

	_, err = mt.RegisterCallback(
		func(_ context.Context, obs metric.Observer) error {
			st := stats()

			obs.ObserveInt64(strings, int64(st.Interned))
			obs.ObserveInt64(arenaBytes, int64(st.ArenaBytes))
			obs.ObserveFloat64(dedupRatio, st.DedupRatio())

			return nil
		},
		strings, arenaBytes, dedupRatio,
	)
	if err != nil {
		return fmt.Errorf("register stats callback: %w", err)
	}

	return nil
}
