// Package storetest is a conformance suite every store.Store backend runs
// from its own tests.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesboard/internal/core"
	"salesboard/internal/store"
)

// Factory returns an empty store; the suite closes it.
type Factory func(t *testing.T) store.Store

func at(y int, m time.Month, d, hh, mm, ss int) time.Time {
	return time.Date(y, m, d, hh, mm, ss, 0, time.UTC)
}

// Fixture is the dataset used by the suite. Seven records fall in March
// 2022; the rest sit just outside it.
func Fixture() []core.Transaction {
	return []core.Transaction{
		{Title: "Men's Cotton Jacket", Description: "great outerwear jackets", Price: 55.99, Category: "men's clothing", Sold: true, DateOfSale: at(2022, time.March, 5, 10, 0, 0)},
		{Title: "Solid Gold Petite Micropave", Description: "Satisfaction Guaranteed", Price: 168, Category: "jewelery", Sold: false, DateOfSale: at(2022, time.March, 10, 8, 30, 0)},
		{Title: "WD 2TB Elements Portable", Description: "USB 3.0 and USB 2.0 compatibility", Price: 64, Category: "electronics", Sold: true, DateOfSale: at(2022, time.March, 15, 12, 0, 0)},
		{Title: "Samsung 49-Inch Monitor", Description: "49 INCH SUPER ULTRAWIDE", Price: 999.99, Category: "electronics", Sold: true, DateOfSale: at(2022, time.March, 31, 23, 59, 59)},
		{Title: "Rain Jacket Women", Description: "Lightweight perfect for trip", Price: 100, Category: "women's clothing", Sold: false, DateOfSale: at(2022, time.March, 1, 0, 0, 0)},
		{Title: "Opna Women's Short Sleeve", Description: "100% Polyester", Price: 900, Category: "women's clothing", Sold: false, DateOfSale: at(2022, time.March, 20, 9, 0, 0)},
		{Title: "Pierced Owl Rose Gold", Description: "Rose Gold Plated", Price: 901, Category: "jewelery", Sold: true, DateOfSale: at(2022, time.March, 21, 17, 0, 0)},
		{Title: "Mens Casual Slim Fit", Description: "color may vary", Price: 15.99, Category: "men's clothing", Sold: true, DateOfSale: at(2022, time.April, 1, 0, 0, 0)},
		{Title: "John Hardy Bracelet", Description: "inspired by the mythical water dragon", Price: 695, Category: "jewelery", Sold: true, DateOfSale: at(2022, time.February, 28, 23, 59, 59)},
		{Title: "Acer SB220Q", Description: "21.5 inches Full HD", Price: 599, Category: "electronics", Sold: true, DateOfSale: at(2021, time.March, 10, 0, 0, 0)},
	}
}

// March2022 is the range the suite queries.
func March2022() core.DateRange {
	r, err := core.ResolveRange(3, at(2022, time.June, 1, 0, 0, 0))
	if err != nil {
		panic(err)
	}
	return r
}

func seeded(t *testing.T, f Factory) store.Store {
	t.Helper()
	s := f(t)
	t.Cleanup(func() { _ = s.Close() })
	n, err := s.ReplaceAll(context.Background(), Fixture())
	require.NoError(t, err)
	require.Equal(t, len(Fixture()), n)
	return s
}

func titles(txs []core.Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.Title
	}
	return out
}

// Run executes the whole suite against stores built by f.
func Run(t *testing.T, f Factory) {
	ctx := context.Background()

	t.Run("replace assigns ids and round-trips fields", func(t *testing.T) {
		s := seeded(t, f)
		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 10, count)

		got, err := s.Find(ctx, core.ListQuery{Range: March2022(), Limit: 100})
		require.NoError(t, err)
		require.Len(t, got, 7)

		seen := map[string]bool{}
		for _, tx := range got {
			require.NotEmpty(t, tx.ID)
			assert.False(t, seen[tx.ID], "duplicate id %s", tx.ID)
			seen[tx.ID] = true
		}
		first := got[0]
		want := Fixture()[0]
		assert.Equal(t, want.Title, first.Title)
		assert.Equal(t, want.Description, first.Description)
		assert.Equal(t, want.Price, first.Price)
		assert.Equal(t, want.Category, first.Category)
		assert.Equal(t, want.Sold, first.Sold)
		assert.True(t, want.DateOfSale.Equal(first.DateOfSale), "date %v != %v", first.DateOfSale, want.DateOfSale)
	})

	t.Run("replace drops previous records", func(t *testing.T) {
		s := seeded(t, f)
		_, err := s.ReplaceAll(ctx, Fixture()[:1])
		require.NoError(t, err)
		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})

	t.Run("find keeps insertion order and range bounds", func(t *testing.T) {
		s := seeded(t, f)
		got, err := s.Find(ctx, core.ListQuery{Range: March2022(), Limit: 100})
		require.NoError(t, err)
		assert.Equal(t, []string{
			"Men's Cotton Jacket", "Solid Gold Petite Micropave", "WD 2TB Elements Portable",
			"Samsung 49-Inch Monitor", "Rain Jacket Women", "Opna Women's Short Sleeve", "Pierced Owl Rose Gold",
		}, titles(got))
	})

	t.Run("find search is case-insensitive over title description and price", func(t *testing.T) {
		s := seeded(t, f)
		cases := map[string][]string{
			"jacket": {"Men's Cotton Jacket", "Rain Jacket Women"},
			"GOLD":   {"Solid Gold Petite Micropave", "Pierced Owl Rose Gold"},
			"100":    {"Rain Jacket Women", "Opna Women's Short Sleeve"},
			"99":     {"Men's Cotton Jacket", "Samsung 49-Inch Monitor"},
			"usb 3":  {"WD 2TB Elements Portable"},
			"%":      {"Opna Women's Short Sleeve"},
			"_":      {},
			"dragon": {},
		}
		for search, want := range cases {
			got, err := s.Find(ctx, core.ListQuery{Range: March2022(), Search: search, Limit: 100})
			require.NoError(t, err, search)
			assert.Equal(t, want, titles(got), "search %q", search)
		}
	})

	t.Run("find search folds non-ASCII case", func(t *testing.T) {
		s := f(t)
		t.Cleanup(func() { _ = s.Close() })
		_, err := s.ReplaceAll(ctx, []core.Transaction{
			{Title: "ÉCLAIR Jacket", Description: "pâtisserie", Price: 12, Category: "food", DateOfSale: at(2022, time.March, 2, 0, 0, 0)},
			{Title: "Straße Map", Description: "ÜBERSICHT der Stadt", Price: 8, Category: "books", DateOfSale: at(2022, time.March, 3, 0, 0, 0)},
		})
		require.NoError(t, err)

		cases := map[string][]string{
			"éclair":     {"ÉCLAIR Jacket"},
			"Éclair":     {"ÉCLAIR Jacket"},
			"PÂTISSERIE": {"ÉCLAIR Jacket"},
			"übersicht":  {"Straße Map"},
			"STRASSE":    {},
		}
		for search, want := range cases {
			got, err := s.Find(ctx, core.ListQuery{Range: March2022(), Search: search, Limit: 100})
			require.NoError(t, err, search)
			assert.Equal(t, want, titles(got), "search %q", search)
		}
	})

	t.Run("find paginates", func(t *testing.T) {
		s := f(t)
		t.Cleanup(func() { _ = s.Close() })
		var txs []core.Transaction
		for i := 1; i <= 12; i++ {
			txs = append(txs, core.Transaction{
				Title:      fmt.Sprintf("item-%02d", i),
				Price:      float64(i),
				Category:   "misc",
				DateOfSale: at(2022, time.March, i, 12, 0, 0),
			})
		}
		_, err := s.ReplaceAll(ctx, txs)
		require.NoError(t, err)

		p := core.ListParams{Month: 3, Page: 2, PerPage: 5}
		got, err := s.Find(ctx, core.ListQuery{Range: March2022(), Offset: p.Offset(), Limit: p.PerPage})
		require.NoError(t, err)
		assert.Equal(t, []string{"item-06", "item-07", "item-08", "item-09", "item-10"}, titles(got))

		got, err = s.Find(ctx, core.ListQuery{Range: March2022(), Offset: 10, Limit: 5})
		require.NoError(t, err)
		assert.Equal(t, []string{"item-11", "item-12"}, titles(got))

		got, err = s.Find(ctx, core.ListQuery{Range: March2022(), Offset: 20, Limit: 5})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("sales summary", func(t *testing.T) {
		s := seeded(t, f)
		stats, err := s.SalesSummary(ctx, March2022())
		require.NoError(t, err)
		assert.InDelta(t, 2020.98, stats.TotalSales, 1e-6)
		assert.EqualValues(t, 4, stats.TotalSoldItems)
		assert.EqualValues(t, 3, stats.TotalNotSoldItems)
	})

	t.Run("sales summary of an empty month is zero", func(t *testing.T) {
		s := seeded(t, f)
		r, _ := core.ResolveRange(1, at(2022, time.June, 1, 0, 0, 0))
		stats, err := s.SalesSummary(ctx, r)
		require.NoError(t, err)
		assert.Equal(t, core.Statistics{}, stats)
	})

	t.Run("bucket counts keep boundary gaps", func(t *testing.T) {
		s := seeded(t, f)
		want := map[string]int64{"0-100": 2, "101-200": 1, "801-900": 0, "901-above": 2, "501-600": 0}
		for _, b := range core.PriceBuckets {
			n, err := s.CountInBucket(ctx, March2022(), b)
			require.NoError(t, err)
			if exp, ok := want[b.Label]; ok {
				assert.Equal(t, exp, n, b.Label)
			}
		}
	})

	t.Run("count by category", func(t *testing.T) {
		s := seeded(t, f)
		got, err := s.CountByCategory(ctx, March2022())
		require.NoError(t, err)
		assert.Equal(t, []core.CategoryCount{
			{Category: "electronics", Count: 2},
			{Category: "jewelery", Count: 2},
			{Category: "men's clothing", Count: 1},
			{Category: "women's clothing", Count: 2},
		}, got)

		r, _ := core.ResolveRange(7, at(2022, time.June, 1, 0, 0, 0))
		got, err = s.CountByCategory(ctx, r)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
