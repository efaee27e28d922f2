package services

import (
	"slices"
	"time"

	"salesboard/internal/cache"
	"salesboard/internal/core"
)

// ReportCache keeps computed month reports keyed by resolved date range.
// Listings are not cached: search and pagination make the key space too wide.
type ReportCache struct {
	stats cache.Cache[core.Statistics]
	bars  cache.Cache[[]core.BarChartEntry]
	pie   cache.Cache[[]core.CategoryCount]
}

func NewReportCache(size int, ttl time.Duration) *ReportCache {
	return &ReportCache{
		stats: cache.NewLRUCache[core.Statistics](size, ttl),
		bars:  cache.NewLRUCache[[]core.BarChartEntry](size, ttl),
		pie:   cache.NewLRUCache[[]core.CategoryCount](size, ttl),
	}
}

// Cleaners exposes the underlying caches to a cache.Janitor.
func (c *ReportCache) Cleaners() []cache.Cleaner {
	var out []cache.Cleaner
	for _, x := range []any{c.stats, c.bars, c.pie} {
		if cl, ok := x.(cache.Cleaner); ok {
			out = append(out, cl)
		}
	}
	return out
}

// Purge empties every report cache.
func (c *ReportCache) Purge() {
	c.stats.Purge()
	c.bars.Purge()
	c.pie.Purge()
}

func (c *ReportCache) Size() int {
	return c.stats.Size() + c.bars.Size() + c.pie.Size()
}

func rangeKey(r core.DateRange) string {
	return r.String()
}

func (c *ReportCache) getBars(r core.DateRange) ([]core.BarChartEntry, bool) {
	v, ok := c.bars.Get(rangeKey(r))
	return slices.Clone(v), ok
}

func (c *ReportCache) getPie(r core.DateRange) ([]core.CategoryCount, bool) {
	v, ok := c.pie.Get(rangeKey(r))
	return slices.Clone(v), ok
}
