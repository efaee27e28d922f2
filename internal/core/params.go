package core

import "fmt"

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// ListParams are the validated inputs of the transaction listing.
type ListParams struct {
	Month   int
	Page    int
	PerPage int
	Search  string
}

// Validate checks month and pagination bounds.
func (p ListParams) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: %d (must be between 1 and 12)", ErrInvalidMonth, p.Month)
	}
	if p.Page < 1 {
		return fmt.Errorf("%w: %d (must be at least 1)", ErrInvalidPage, p.Page)
	}
	if p.PerPage < 1 || p.PerPage > MaxPerPage {
		return fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidPerPage, p.PerPage, MaxPerPage)
	}
	return nil
}

// Offset is the number of records skipped before the page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// ListQuery is what a store needs to serve one page of the listing.
type ListQuery struct {
	Range  DateRange
	Search string
	Offset int
	Limit  int
}
