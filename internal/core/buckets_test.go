package core

import "testing"

func TestBucketForBoundaries(t *testing.T) {
	cases := []struct {
		price  float64
		label  string
		inside bool
	}{
		{0, "0-100", true},
		{99.99, "0-100", true},
		{100, "", false}, // gap between 0-100 and 101-200
		{100.5, "", false},
		{101, "101-200", true},
		{199.99, "101-200", true},
		{200, "", false},
		{450, "401-500", true},
		{899.5, "801-900", true},
		{900, "", false},
		{900.99, "", false},
		{901, "901-above", true},
		{1e9, "901-above", true},
	}
	for _, tc := range cases {
		b, ok := BucketFor(tc.price)
		if ok != tc.inside {
			t.Fatalf("price %v: inside = %v, want %v", tc.price, ok, tc.inside)
		}
		if ok && b.Label != tc.label {
			t.Fatalf("price %v: bucket = %s, want %s", tc.price, b.Label, tc.label)
		}
	}
}

func TestPriceBucketsOrder(t *testing.T) {
	want := []string{"0-100", "101-200", "201-300", "301-400", "401-500", "501-600", "601-700", "701-800", "801-900", "901-above"}
	if len(PriceBuckets) != len(want) {
		t.Fatalf("got %d buckets", len(PriceBuckets))
	}
	for i, b := range PriceBuckets {
		if b.Label != want[i] {
			t.Fatalf("bucket %d = %s, want %s", i, b.Label, want[i])
		}
	}
	if !PriceBuckets[9].Unbounded() || PriceBuckets[8].Unbounded() {
		t.Fatalf("only the last bucket is unbounded")
	}
}
