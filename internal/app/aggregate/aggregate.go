// Package aggregate derives read-only statistics from loaded collections.
//
// Every function here is pure: it reads its input, never mutates it, and
// returns the same value for the same input. Statuses are read from the
// normalized entities; nothing here assigns or re-rolls them.
package aggregate

import (
	"fmt"
	"math"
)

// Bucket is the count of items in one status.
type Bucket struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// DerivedStats is the projection shown above every entity table.
//
// Counts lists the declared statuses first, in declaration order, each
// present even at zero, followed by any status seen in the collection that
// was not declared, in first-seen order. The counts always sum to Total.
type DerivedStats struct {
	Counts []Bucket `json:"counts"`
	Total  int      `json:"total"`
	Growth string   `json:"growth"`
}

// Count returns the count for status, or 0.
func (d DerivedStats) Count(status string) int {
	for _, b := range d.Counts {
		if b.Status == status {
			return b.Count
		}
	}
	return 0
}

// Map returns the counts keyed by status.
func (d DerivedStats) Map() map[string]int {
	m := make(map[string]int, len(d.Counts))
	for _, b := range d.Counts {
		m[b.Status] = b.Count
	}
	return m
}

// Growth supplies the percentage change shown next to a total.
type Growth interface {
	Percent(current int) float64
}

// Fixed is a constant growth percentage.
type Fixed float64

// Percent returns f regardless of current.
func (f Fixed) Percent(int) float64 { return float64(f) }

// SincePrevious is the change relative to a previous collection size.
// A previous size of zero yields 0.
type SincePrevious int

// Percent returns the change from the previous size to current, in percent.
func (p SincePrevious) Percent(current int) float64 {
	if p <= 0 {
		return 0
	}
	return float64(current-int(p)) / float64(p) * 100
}

// FormatGrowth renders a growth percentage for a collection of n items:
// "0%" when the collection is empty, otherwise a signed value with one
// decimal ("+12.5%", "-3.0%", "+0.0%").
func FormatGrowth(n int, pct float64) string {
	if n == 0 {
		return "0%"
	}
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		pct = 0
	}
	r := math.Round(pct*10) / 10
	if r == 0 {
		r = 0 // drop the sign of -0
	}
	return fmt.Sprintf("%+.1f%%", r)
}

// Compute buckets items by status. A nil growth is Fixed(0).
func Compute[T any, S ~string](items []T, statusOf func(T) S, declared []S, growth Growth) DerivedStats {
	if growth == nil {
		growth = Fixed(0)
	}

	idx := make(map[S]int, len(declared))
	counts := make([]Bucket, 0, len(declared))
	for _, s := range declared {
		if _, dup := idx[s]; dup {
			continue
		}
		idx[s] = len(counts)
		counts = append(counts, Bucket{Status: string(s)})
	}

	for _, it := range items {
		s := statusOf(it)
		i, ok := idx[s]
		if !ok {
			i = len(counts)
			idx[s] = i
			counts = append(counts, Bucket{Status: string(s)})
		}
		counts[i].Count++
	}

	return DerivedStats{
		Counts: counts,
		Total:  len(items),
		Growth: FormatGrowth(len(items), growth.Percent(len(items))),
	}
}
