package core

import "math"

// PriceBucket is a [Min, Max) price interval of the bar chart.
type PriceBucket struct {
	Label string
	Min   float64
	Max   float64
}

// Contains uses "at least Min, less than Max" semantics.
func (b PriceBucket) Contains(price float64) bool {
	return price >= b.Min && price < b.Max
}

// Unbounded reports whether the bucket has no upper limit.
func (b PriceBucket) Unbounded() bool {
	return math.IsInf(b.Max, 1)
}

// PriceBuckets lists the bar chart buckets in display order. The gaps
// between one bucket's Max and the next Min (100 vs 101, ...) are kept as
// published: a price of exactly 100 is counted by no bucket.
var PriceBuckets = []PriceBucket{
	{Label: "0-100", Min: 0, Max: 100},
	{Label: "101-200", Min: 101, Max: 200},
	{Label: "201-300", Min: 201, Max: 300},
	{Label: "301-400", Min: 301, Max: 400},
	{Label: "401-500", Min: 401, Max: 500},
	{Label: "501-600", Min: 501, Max: 600},
	{Label: "601-700", Min: 601, Max: 700},
	{Label: "701-800", Min: 701, Max: 800},
	{Label: "801-900", Min: 801, Max: 900},
	{Label: "901-above", Min: 901, Max: math.Inf(1)},
}

// BucketFor returns the bucket holding price, if any.
func BucketFor(price float64) (PriceBucket, bool) {
	for _, b := range PriceBuckets {
		if b.Contains(price) {
			return b, true
		}
	}
	return PriceBucket{}, false
}
