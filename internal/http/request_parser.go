// Package http serves the dashboard's JSON API.
//
// This file turns query strings into validated query inputs.

package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"salesboard/internal/core"
)

const maxSearchLen = 200

// ParseMonth reads the required month parameter (1-12).
func ParseMonth(query url.Values) (int, error) {
	v := strings.TrimSpace(query.Get("month"))
	if v == "" {
		return 0, fmt.Errorf("%w: month is required", core.ErrInvalidMonth)
	}
	m, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", core.ErrInvalidMonth, v)
	}
	if m < 1 || m > 12 {
		return 0, fmt.Errorf("%w: %d (must be between 1 and 12)", core.ErrInvalidMonth, m)
	}
	return m, nil
}

// ParseListParams reads month, page, per_page and search. Absent page and
// per_page take their defaults; present but malformed ones are rejected.
func ParseListParams(query url.Values) (core.ListParams, error) {
	month, err := ParseMonth(query)
	if err != nil {
		return core.ListParams{}, err
	}

	page, err := optionalInt(query, "page", core.DefaultPage, core.ErrInvalidPage)
	if err != nil {
		return core.ListParams{}, err
	}
	perPage, err := optionalInt(query, "per_page", core.DefaultPerPage, core.ErrInvalidPerPage)
	if err != nil {
		return core.ListParams{}, err
	}

	search := sanitizeInput(query.Get("search"))
	if r := []rune(search); len(r) > maxSearchLen {
		search = string(r[:maxSearchLen])
	}

	p := core.ListParams{
		Month:   month,
		Page:    page,
		PerPage: perPage,
		Search:  search,
	}
	if err := p.Validate(); err != nil {
		return core.ListParams{}, err
	}
	return p, nil
}

func optionalInt(query url.Values, key string, def int, sentinel error) (int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", sentinel, key, v)
	}
	return n, nil
}

// sanitizeInput drops control characters and surrounding whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 {
			return -1
		}
		return r
	}, s)
}
