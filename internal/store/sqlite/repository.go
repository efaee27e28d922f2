package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"salesboard/internal/core"
	applog "salesboard/internal/log"
	"salesboard/internal/store"
)

var _ store.Store = (*Repository)(nil)

const selectColumns = `id, title, description, price, category, image, sold, date_of_sale`

// rangeFilter is shared by every month query; arguments are start and end
// in unix milliseconds.
const rangeFilter = `date_of_sale >= ? AND date_of_sale < ?`

// Repository is the SQLite record store.
type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReplaceAll deletes and inserts inside one transaction; a failed insert
// rolls back to the previous dataset.
func (r *Repository) ReplaceAll(ctx context.Context, txs []core.Transaction) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM transactions`)
	if err != nil {
		return 0, fmt.Errorf("delete transactions: %w", err)
	}
	deleted, _ := res.RowsAffected()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO transactions
		(title, description, title_lower, description_lower, price, price_text, category, image, sold, date_of_sale)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range txs {
		if _, err := stmt.ExecContext(ctx,
			t.Title, t.Description, strings.ToLower(t.Title), strings.ToLower(t.Description),
			t.Price, t.PriceText(), t.Category, t.Image,
			boolToInt(t.Sold), t.DateOfSale.UTC().UnixMilli(),
		); err != nil {
			return 0, fmt.Errorf("insert transaction %d (%q): %w", i, t.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit replace: %w", err)
	}

	slog.InfoContext(ctx, "Transactions replaced in SQLite",
		applog.FieldComponent, applog.ComponentStore,
		"deleted", deleted,
		"inserted", len(txs))

	return len(txs), nil
}

func (r *Repository) Find(ctx context.Context, q core.ListQuery) ([]core.Transaction, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = -1
	}
	// SQLite lower() folds ASCII only; the *_lower columns are folded in Go.
	search := strings.ToLower(q.Search)

	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM transactions
		WHERE `+rangeFilter+`
		  AND (? = '' OR instr(title_lower, ?) > 0 OR instr(description_lower, ?) > 0 OR instr(price_text, ?) > 0)
		ORDER BY id
		LIMIT ? OFFSET ?`,
		q.Range.Start.UnixMilli(), q.Range.End.UnixMilli(),
		search, search, search, search,
		limit, q.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *Repository) SalesSummary(ctx context.Context, dr core.DateRange) (core.Statistics, error) {
	var stats core.Statistics
	err := r.db.QueryRowContext(ctx, `SELECT
			COALESCE(SUM(CASE WHEN sold = 1 THEN price END), 0),
			COUNT(CASE WHEN sold = 1 THEN 1 END),
			COUNT(CASE WHEN sold = 0 THEN 1 END)
		FROM transactions WHERE `+rangeFilter,
		dr.Start.UnixMilli(), dr.End.UnixMilli(),
	).Scan(&stats.TotalSales, &stats.TotalSoldItems, &stats.TotalNotSoldItems)
	if err != nil {
		return core.Statistics{}, fmt.Errorf("sales summary: %w", err)
	}
	return stats, nil
}

func (r *Repository) CountInBucket(ctx context.Context, dr core.DateRange, b core.PriceBucket) (int64, error) {
	var upper any // NULL for the open-ended bucket
	if !b.Unbounded() {
		upper = b.Max
	}
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions
		WHERE `+rangeFilter+` AND price >= ? AND (? IS NULL OR price < ?)`,
		dr.Start.UnixMilli(), dr.End.UnixMilli(), b.Min, upper, upper,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count bucket %s: %w", b.Label, err)
	}
	return n, nil
}

func (r *Repository) CountByCategory(ctx context.Context, dr core.DateRange) ([]core.CategoryCount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT category, COUNT(*) FROM transactions
		WHERE `+rangeFilter+`
		GROUP BY category
		ORDER BY category`,
		dr.Start.UnixMilli(), dr.End.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	defer rows.Close()

	out := []core.CategoryCount{}
	for rows.Next() {
		var c core.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category counts: %w", err)
	}
	return out, nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var (
		t      core.Transaction
		id     int64
		sold   int64
		millis int64
	)
	if err := rows.Scan(&id, &t.Title, &t.Description, &t.Price, &t.Category, &t.Image, &sold, &millis); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.ID = strconv.FormatInt(id, 10)
	t.Sold = sold == 1
	t.DateOfSale = time.UnixMilli(millis).UTC()
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
