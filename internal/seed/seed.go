// Package seed replaces the record store's contents with the dataset
// published at a remote JSON URL.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"salesboard/internal/amqp"
	"salesboard/internal/core"
	applog "salesboard/internal/log"
	"salesboard/internal/store"
)

// DefaultSourceURL is the public product transaction dataset.
const DefaultSourceURL = "https://s3.amazonaws.com/roxiler.com/product_transaction.json"

// maxBodySize bounds the fetched document.
const maxBodySize = 32 << 20

var ErrEmptyDataset = errors.New("source returned no valid records")

// Purger drops derived state after a reseed.
type Purger interface {
	Purge()
}

// Publisher announces a completed reseed.
type Publisher interface {
	PublishDatasetSeeded(ctx context.Context, msg *amqp.DatasetSeededMessage) error
}

// Result summarizes one seeding run.
type Result struct {
	Fetched  int
	Inserted int
	Skipped  int
}

// record is one element of the source array. Fields the store does not keep
// (the source id) are ignored.
type record struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Sold        bool    `json:"sold"`
	DateOfSale  string  `json:"dateOfSale"`
}

func (r record) toTransaction() (core.Transaction, error) {
	tx := core.Transaction{
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		Image:       r.Image,
		Sold:        r.Sold,
	}
	if r.DateOfSale != "" {
		t, err := time.Parse(time.RFC3339, r.DateOfSale)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("parse dateOfSale %q: %w", r.DateOfSale, err)
		}
		tx.DateOfSale = t.UTC()
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

type Seeder struct {
	client    *http.Client
	source    string
	store     store.Replacer
	purger    Purger
	publisher Publisher
	logger    *slog.Logger
}

type Option func(*Seeder)

// WithPurger registers state to clear after a successful replace.
func WithPurger(p Purger) Option {
	return func(s *Seeder) { s.purger = p }
}

// WithPublisher registers an event sink for completed reseeds.
func WithPublisher(p Publisher) Option {
	return func(s *Seeder) { s.publisher = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Seeder) { s.logger = l }
}

func New(client *http.Client, source string, r store.Replacer, opts ...Option) *Seeder {
	if client == nil {
		client = http.DefaultClient
	}
	if source == "" {
		source = DefaultSourceURL
	}
	s := &Seeder{
		client: client,
		source: source,
		store:  r,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run fetches and decodes the whole dataset before touching the store, so a
// failed fetch leaves the previous contents in place.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	start := time.Now()

	records, err := s.fetch(ctx)
	if err != nil {
		return Result{}, err
	}

	res := Result{Fetched: len(records)}
	txs := make([]core.Transaction, 0, len(records))
	for i, r := range records {
		tx, err := r.toTransaction()
		if err != nil {
			res.Skipped++
			s.logger.WarnContext(ctx, "Skipping invalid source record",
				"index", i, "title", r.Title, "error", err)
			continue
		}
		txs = append(txs, tx)
	}
	if len(txs) == 0 && len(records) > 0 {
		return res, ErrEmptyDataset
	}

	n, err := s.store.ReplaceAll(ctx, txs)
	if err != nil {
		return res, fmt.Errorf("replace transactions: %w", err)
	}
	res.Inserted = n

	if s.purger != nil {
		s.purger.Purge()
	}

	applog.NewStructuredLogger(&applog.Logger{Logger: s.logger.With("duration", time.Since(start))}).
		LogSeedCompleted(ctx, s.source, res.Inserted, res.Skipped)

	if s.publisher != nil {
		msg := amqp.NewDatasetSeededMessage(res.Inserted, res.Skipped, s.source)
		if err := s.publisher.PublishDatasetSeeded(ctx, msg); err != nil {
			// the store is already replaced; a lost event is not a failed seed
			s.logger.ErrorContext(ctx, "Failed to publish dataset seeded event", "error", err)
		}
	}

	return res, nil
}

func (s *Seeder) fetch(ctx context.Context) ([]record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.source, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fetch %s: unexpected status %s", s.source, resp.Status)
	}

	var records []record
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.source, err)
	}
	return records, nil
}
