package report

import (
	"context"
)

// Repository is the record store: bulletin persistence plus the read-side
// aggregations the surveillance views are built from.
type Repository interface {
	// InsertRecords stores all rows of one bulletin atomically; either
	// every row lands or none does.
	InsertRecords(ctx context.Context, records []*Record) error

	// SumTotals rolls up the whole store for the dashboard.
	SumTotals(ctx context.Context) (*Totals, error)

	// AggregateDiseases sums cases and deaths per endemic-disease
	// indicator under the filter. Every indicator of the type appears,
	// zero-summed when nothing matches.
	AggregateDiseases(ctx context.Context, f Filter) ([]DiseaseRow, error)

	// AggregateTropical sums notified and isolated per neglected-tropical
	// indicator under the filter.
	AggregateTropical(ctx context.Context, f Filter) ([]TropicalRow, error)

	// AggregateDeaths sums institution, community and total deaths per
	// death-category indicator under the filter.
	AggregateDeaths(ctx context.Context, f Filter) ([]DeathRow, error)
}
