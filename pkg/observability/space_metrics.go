package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricExpansionsTotal   = "paramspace.space.expansions.total"
	metricRowsProduced      = "paramspace.space.rows.produced.total"
	metricExpansionDuration = "paramspace.space.expansion.duration.seconds"
	metricHydrationsTotal   = "paramspace.space.hydrations.total"
	metricSpaceRows         = "paramspace.space.rows"

	attrOp = "op"
)

// Operation names accepted by RecordHydration.
const (
	OpHydrate   = "hydrate"
	OpConstruct = "construct"
	OpLookup    = "lookup"
)

// expansionBucketBoundaries spans small grids to multi-million row products.
var expansionBucketBoundaries = []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 60, 300, 600}

// SpaceMetrics holds instruments describing space construction and use.
type SpaceMetrics struct {
	expansions        metric.Int64Counter
	rowsProduced      metric.Int64Counter
	expansionDuration metric.Float64Histogram
	hydrations        metric.Int64Counter
	meter             metric.Meter
}

// NewSpaceMetrics creates space instruments from mt.
func NewSpaceMetrics(mt metric.Meter) (*SpaceMetrics, error) {
	expansions, err := mt.Int64Counter(metricExpansionsTotal,
		metric.WithDescription("Configurations expanded into a space"),
		metric.WithUnit("{config}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricExpansionsTotal, err)
	}

	rows, err := mt.Int64Counter(metricRowsProduced,
		metric.WithDescription("Rows produced by expansion, duplicates included"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRowsProduced, err)
	}

	duration, err := mt.Float64Histogram(metricExpansionDuration,
		metric.WithDescription("Time to expand a set of configurations"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(expansionBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricExpansionDuration, err)
	}

	hydrations, err := mt.Int64Counter(metricHydrationsTotal,
		metric.WithDescription("Row hydrations, constructions and lookups"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricHydrationsTotal, err)
	}

	return &SpaceMetrics{
		expansions:        expansions,
		rowsProduced:      rows,
		expansionDuration: duration,
		hydrations:        hydrations,
		meter:             mt,
	}, nil
}

// RecordExpansion records one Extend call. Safe on a nil receiver.
func (sm *SpaceMetrics) RecordExpansion(ctx context.Context, configs, rows int, duration time.Duration, err error) {
	if sm == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrStatus, statusOf(err)))

	sm.expansions.Add(ctx, int64(configs), attrs)
	sm.rowsProduced.Add(ctx, int64(rows), attrs)
	sm.expansionDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordHydration records one hydrate, construct or lookup. Safe on a nil receiver.
func (sm *SpaceMetrics) RecordHydration(ctx context.Context, op string, err error) {
	if sm == nil {
		return
	}

	sm.hydrations.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrStatus, statusOf(err)),
	))
}

// ObserveRows registers a gauge reporting the current row count of a space.
// The returned function unregisters it.
func (sm *SpaceMetrics) ObserveRows(rows func() int) (func() error, error) {
	if sm == nil {
		return func() error { return nil }, nil
	}

	gauge, err := sm.meter.Int64ObservableGauge(metricSpaceRows,
		metric.WithDescription("Distinct rows interned in the served space"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSpaceRows, err)
	}

	reg, err := sm.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(gauge, int64(rows()))

		return nil
	}, gauge)
	if err != nil {
		return nil, fmt.Errorf("register %s callback: %w", metricSpaceRows, err)
	}

	return reg.Unregister, nil
}

func statusOf(err error) string {
	if err != nil {
		return statusError
	}

	return statusOK
}
