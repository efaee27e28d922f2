package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"salesboard/internal/core"
	"salesboard/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store keeps the dataset in a slice, in insertion order.
type Store struct {
	mu    sync.RWMutex
	items []core.Transaction
}

func New() *Store {
	return &Store{}
}

// NewFromFile loads a JSON array of transactions from path. A missing file
// yields an empty store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dataset file: %w", err)
	}
	var txs []core.Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return nil, fmt.Errorf("decode dataset file %s: %w", path, err)
	}
	if _, err := s.ReplaceAll(context.Background(), txs); err != nil {
		return nil, err
	}
	return s, nil
}

// ReplaceAll builds the new dataset aside and swaps it in under the lock,
// so readers never see a partial dataset.
func (s *Store) ReplaceAll(ctx context.Context, txs []core.Transaction) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	items := make([]core.Transaction, len(txs))
	for i, tx := range txs {
		tx.ID = uuid.NewString()
		tx.DateOfSale = tx.DateOfSale.UTC()
		items[i] = tx
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return len(items), nil
}

func (s *Store) Find(ctx context.Context, q core.ListQuery) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []core.Transaction{}
	skipped := 0
	for _, tx := range s.items {
		if !q.Range.Contains(tx.DateOfSale) || !tx.Matches(q.Search) {
			continue
		}
		if skipped < q.Offset {
			skipped++
			continue
		}
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
		out = append(out, tx)
	}
	return out, nil
}

func (s *Store) SalesSummary(ctx context.Context, r core.DateRange) (core.Statistics, error) {
	if err := ctx.Err(); err != nil {
		return core.Statistics{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats core.Statistics
	total := decimal.Zero
	for _, tx := range s.items {
		if !r.Contains(tx.DateOfSale) {
			continue
		}
		if tx.Sold {
			total = total.Add(decimal.NewFromFloat(tx.Price))
			stats.TotalSoldItems++
		} else {
			stats.TotalNotSoldItems++
		}
	}
	stats.TotalSales = total.InexactFloat64()
	return stats, nil
}

func (s *Store) CountInBucket(ctx context.Context, r core.DateRange, b core.PriceBucket) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, tx := range s.items {
		if r.Contains(tx.DateOfSale) && b.Contains(tx.Price) {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountByCategory(ctx context.Context, r core.DateRange) ([]core.CategoryCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	counts := map[string]int64{}
	for _, tx := range s.items {
		if r.Contains(tx.DateOfSale) {
			counts[tx.Category]++
		}
	}
	s.mu.RUnlock()

	out := make([]core.CategoryCount, 0, len(counts))
	for cat, n := range counts {
		out = append(out, core.CategoryCount{Category: cat, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (s *Store) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.items)), nil
}

func (s *Store) Close() error { return nil }
