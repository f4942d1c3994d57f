package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/san-kum/corrlab/internal/market"
)

// Return is the log return realized on Date.
type Return struct {
	Date  time.Time
	Value float64
}

// LogReturns sorts prices by date and returns ln(close_t / close_{t-1}) for
// every day after the first. Rows with a non-positive close on either side
// are skipped.
func LogReturns(prices []market.PricePoint) []Return {
	if len(prices) < 2 {
		return []Return{}
	}
	sorted := make([]market.PricePoint, len(prices))
	copy(sorted, prices)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	out := make([]Return, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1].Close, sorted[i].Close
		if prev <= 0 || cur <= 0 {
			continue
		}
		r := math.Log(cur / prev)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		out = append(out, Return{Date: sorted[i].Date, Value: r})
	}
	return out
}

// FilterRange keeps returns dated on or after the start of r relative to ref.
func FilterRange(rs []Return, r market.Range, ref time.Time) []Return {
	start, bounded := r.Start(ref)
	if !bounded {
		return rs
	}
	out := make([]Return, 0, len(rs))
	for _, x := range rs {
		if !x.Date.Before(start) {
			out = append(out, x)
		}
	}
	return out
}

// Align intersects two return series on calendar date and returns the
// common dates in ascending order with the matching values.
func Align(a, b []Return) (dates []time.Time, xa, xb []float64) {
	byDay := make(map[string]float64, len(b))
	for _, r := range b {
		byDay[r.Date.Format(market.DateLayout)] = r.Value
	}

	type pair struct {
		date time.Time
		a, b float64
	}
	seen := make(map[string]bool, len(a))
	pairs := make([]pair, 0, len(a))
	for _, r := range a {
		key := r.Date.Format(market.DateLayout)
		vb, ok := byDay[key]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		pairs = append(pairs, pair{r.Date, r.Value, vb})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].date.Before(pairs[j].date) })

	dates = make([]time.Time, len(pairs))
	xa = make([]float64, len(pairs))
	xb = make([]float64, len(pairs))
	for i, p := range pairs {
		dates[i], xa[i], xb[i] = p.date, p.a, p.b
	}
	return dates, xa, xb
}

// ReferenceDate is the earliest of the per-asset latest dates, so every
// asset has data up to it. now is returned when latest is empty.
func ReferenceDate(latest []time.Time, now time.Time) time.Time {
	if len(latest) == 0 {
		return now
	}
	ref := latest[0]
	for _, t := range latest[1:] {
		if t.Before(ref) {
			ref = t
		}
	}
	return ref
}

// Latest returns the most recent date in prices.
func Latest(prices []market.PricePoint) (time.Time, bool) {
	if len(prices) == 0 {
		return time.Time{}, false
	}
	latest := prices[0].Date
	for _, p := range prices[1:] {
		if p.Date.After(latest) {
			latest = p.Date
		}
	}
	return latest, true
}
