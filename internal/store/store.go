// Package store defines the record store ports used by the query service
// and the seeder. Implementations live in its subpackages.
package store

import (
	"context"

	"salesboard/internal/core"
)

// Ports for record store adapters.
type (
	// Replacer swaps the whole dataset for a new one.
	Replacer interface {
		// ReplaceAll deletes every record and inserts txs, returning the
		// number of inserted records.
		ReplaceAll(ctx context.Context, txs []core.Transaction) (int, error)
	}

	// Finder serves pages of the transaction listing.
	Finder interface {
		// Find returns the records in q.Range matching q.Search, ordered by
		// insertion, skipping q.Offset and returning at most q.Limit.
		Find(ctx context.Context, q core.ListQuery) ([]core.Transaction, error)
	}

	// Aggregator answers the month reports.
	Aggregator interface {
		// SalesSummary sums sold prices and counts sold and unsold records.
		SalesSummary(ctx context.Context, r core.DateRange) (core.Statistics, error)
		// CountInBucket counts records in r priced inside b.
		CountInBucket(ctx context.Context, r core.DateRange, b core.PriceBucket) (int64, error)
		// CountByCategory groups records in r by category.
		CountByCategory(ctx context.Context, r core.DateRange) ([]core.CategoryCount, error)
	}

	// Store is everything a backend has to provide.
	Store interface {
		Replacer
		Finder
		Aggregator
		// Count returns the total number of records.
		Count(ctx context.Context) (int64, error)
		Close() error
	}
)
