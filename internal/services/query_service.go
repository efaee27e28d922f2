package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"salesboard/internal/core"
	"salesboard/internal/store"
)

// QueryService answers the read-only dashboard queries for one month.
type QueryService struct {
	store    store.Store
	resolver core.Resolver
	reports  *ReportCache
}

// NewQueryService builds the service. reports may be nil to disable caching.
func NewQueryService(s store.Store, resolver core.Resolver, reports *ReportCache) *QueryService {
	return &QueryService{
		store:    s,
		resolver: resolver,
		reports:  reports,
	}
}

// List returns one page of the month's transactions matching the search.
func (s *QueryService) List(ctx context.Context, p core.ListParams) ([]core.Transaction, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	r, err := s.resolver.Resolve(p.Month)
	if err != nil {
		return nil, err
	}

	txs, err := s.store.Find(ctx, core.ListQuery{
		Range:  r,
		Search: p.Search,
		Offset: p.Offset(),
		Limit:  p.PerPage,
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return txs, nil
}

func (s *QueryService) Statistics(ctx context.Context, month int) (core.Statistics, error) {
	r, err := s.resolver.Resolve(month)
	if err != nil {
		return core.Statistics{}, err
	}
	return s.statistics(ctx, r)
}

func (s *QueryService) BarChart(ctx context.Context, month int) ([]core.BarChartEntry, error) {
	r, err := s.resolver.Resolve(month)
	if err != nil {
		return nil, err
	}
	return s.barChart(ctx, r)
}

func (s *QueryService) PieChart(ctx context.Context, month int) ([]core.CategoryCount, error) {
	r, err := s.resolver.Resolve(month)
	if err != nil {
		return nil, err
	}
	return s.pieChart(ctx, r)
}

// Combined computes the three month reports concurrently over one resolved
// range. Any failure fails the whole response.
func (s *QueryService) Combined(ctx context.Context, month int) (core.Combined, error) {
	r, err := s.resolver.Resolve(month)
	if err != nil {
		return core.Combined{}, err
	}

	var out core.Combined
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Statistics, err = s.statistics(gctx, r)
		return err
	})
	g.Go(func() error {
		var err error
		out.BarChart, err = s.barChart(gctx, r)
		return err
	})
	g.Go(func() error {
		var err error
		out.PieChart, err = s.pieChart(gctx, r)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Combined{}, err
	}
	return out, nil
}

// Purge drops every cached report. Called after the dataset is replaced.
func (s *QueryService) Purge() {
	if s.reports == nil {
		return
	}
	s.reports.Purge()
	slog.Debug("Report cache purged")
}

func (s *QueryService) statistics(ctx context.Context, r core.DateRange) (core.Statistics, error) {
	if s.reports != nil {
		if v, ok := s.reports.stats.Get(rangeKey(r)); ok {
			return v, nil
		}
	}

	stats, err := s.store.SalesSummary(ctx, r)
	if err != nil {
		return core.Statistics{}, fmt.Errorf("statistics: %w", err)
	}

	if s.reports != nil {
		s.reports.stats.Set(rangeKey(r), stats)
	}
	return stats, nil
}

// barChart issues one count per bucket in parallel; the result keeps the
// bucket table's order and includes empty buckets.
func (s *QueryService) barChart(ctx context.Context, r core.DateRange) ([]core.BarChartEntry, error) {
	if s.reports != nil {
		if v, ok := s.reports.getBars(r); ok {
			return v, nil
		}
	}

	out := make([]core.BarChartEntry, len(core.PriceBuckets))
	g, gctx := errgroup.WithContext(ctx)
	for i, b := range core.PriceBuckets {
		i, b := i, b
		g.Go(func() error {
			n, err := s.store.CountInBucket(gctx, r, b)
			if err != nil {
				return err
			}
			out[i] = core.BarChartEntry{Range: b.Label, Count: n}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("bar chart: %w", err)
	}

	if s.reports != nil {
		s.reports.bars.Set(rangeKey(r), slices.Clone(out))
	}
	return out, nil
}

func (s *QueryService) pieChart(ctx context.Context, r core.DateRange) ([]core.CategoryCount, error) {
	if s.reports != nil {
		if v, ok := s.reports.getPie(r); ok {
			return v, nil
		}
	}

	counts, err := s.store.CountByCategory(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("pie chart: %w", err)
	}
	if counts == nil {
		counts = []core.CategoryCount{}
	}

	if s.reports != nil {
		s.reports.pie.Set(rangeKey(r), slices.Clone(counts))
	}
	return counts, nil
}
