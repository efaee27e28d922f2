package core

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

type (
	// Transaction is a single sale record of the dataset.
	Transaction struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Price       float64   `json:"price"`
		Category    string    `json:"category"`
		Image       string    `json:"image,omitempty"`
		Sold        bool      `json:"sold"`
		DateOfSale  time.Time `json:"dateOfSale"`
	}

	// Statistics summarizes sales inside a month.
	Statistics struct {
		TotalSales        float64 `json:"totalSales"`
		TotalSoldItems    int64   `json:"totalSoldItems"`
		TotalNotSoldItems int64   `json:"totalNotSoldItems"`
	}

	// BarChartEntry is the number of records falling into one price bucket.
	BarChartEntry struct {
		Range string `json:"range"`
		Count int64  `json:"count"`
	}

	// CategoryCount is the number of records for one category.
	CategoryCount struct {
		Category string `json:"category"`
		Count    int64  `json:"count"`
	}

	// Combined bundles the three month reports into one payload.
	Combined struct {
		Statistics Statistics      `json:"statistics"`
		BarChart   []BarChartEntry `json:"barChart"`
		PieChart   []CategoryCount `json:"pieChart"`
	}
)

var (
	ErrInvalidMonth   = errors.New("invalid month")
	ErrInvalidPage    = errors.New("invalid page")
	ErrInvalidPerPage = errors.New("invalid per_page")
	ErrInvalidPrice   = errors.New("invalid price")
	ErrMissingDate    = errors.New("missing dateOfSale")
)

// Validate checks the basic typing of a record coming from the seed source.
func (t Transaction) Validate() error {
	if t.DateOfSale.IsZero() {
		return ErrMissingDate
	}
	if t.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}

// PriceText renders the price the way search matches it: shortest
// decimal form, no exponent, no trailing zeros (44 -> "44", 329.85 -> "329.85").
func (t Transaction) PriceText() string {
	return FormatPrice(t.Price)
}

// FormatPrice is the text form of a price used for substring search.
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// Matches reports whether the record contains search, case-insensitively,
// in its title, description or price text. An empty search matches.
func (t Transaction) Matches(search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle) ||
		strings.Contains(t.PriceText(), needle)
}
