package core

import (
	"errors"
	"testing"
	"time"
)

func TestResolveRangeCoversWholeMonth(t *testing.T) {
	now := time.Date(2024, time.June, 15, 13, 45, 0, 0, time.UTC)
	for m := 1; m <= 12; m++ {
		r, err := ResolveRange(m, now)
		if err != nil {
			t.Fatalf("month %d: unexpected error %v", m, err)
		}
		if r.Start.Year() != 2024 || int(r.Start.Month()) != m || r.Start.Day() != 1 {
			t.Fatalf("month %d: start = %v", m, r.Start)
		}
		if r.Start.Hour() != 0 || r.Start.Minute() != 0 || r.Start.Nanosecond() != 0 {
			t.Fatalf("month %d: start not at midnight: %v", m, r.Start)
		}
		wantEnd := time.Date(2024, time.Month(m)+1, 1, 0, 0, 0, 0, time.UTC)
		if !r.End.Equal(wantEnd) {
			t.Fatalf("month %d: end = %v, want %v", m, r.End, wantEnd)
		}
		// every day of the month is inside, the first day of next month is not
		last := r.End.Add(-time.Nanosecond)
		if !r.Contains(r.Start) || !r.Contains(last) || r.Contains(r.End) {
			t.Fatalf("month %d: bounds not half-open", m)
		}
	}
}

func TestResolveRangeDecemberRollsOverYear(t *testing.T) {
	r, err := ResolveRange(12, time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !r.End.Equal(want) {
		t.Fatalf("end = %v, want %v", r.End, want)
	}
}

func TestResolveRangeRejectsOutOfRangeMonth(t *testing.T) {
	now := time.Now()
	for _, m := range []int{-1, 0, 13, 100} {
		if _, err := ResolveRange(m, now); !errors.Is(err, ErrInvalidMonth) {
			t.Fatalf("month %d: err = %v, want ErrInvalidMonth", m, err)
		}
	}
}

func TestResolverUsesClockYearAndLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	res := Resolver{
		Now:      func() time.Time { return time.Date(2021, time.December, 31, 23, 0, 0, 0, time.UTC) },
		Location: loc,
	}
	// 23:00 UTC on Dec 31 is already 2022 in IST
	r, err := res.Resolve(3)
	if err != nil {
		t.Fatal(err)
	}
	if r.Start.Year() != 2022 || r.Start.Location() != loc {
		t.Fatalf("start = %v", r.Start)
	}
}

func TestResolverAnchorsToCurrentYear(t *testing.T) {
	res := Resolver{Now: func() time.Time { return time.Date(2026, time.May, 2, 0, 0, 0, 0, time.UTC) }, Location: time.UTC}
	r, _ := res.Resolve(11)
	sale := time.Date(2021, time.November, 27, 14, 59, 54, 0, time.UTC)
	if r.Contains(sale) {
		t.Fatalf("range %s should not contain a sale from another year", r)
	}
}
