package analysis

import (
	"math"

	"github.com/shopspring/decimal"
)

// TradingDays annualizes daily volatility.
const TradingDays = 252

// Pearson returns the Pearson correlation of a and b, which must have equal
// length. It returns 0 for fewer than two samples or a zero denominator.
func Pearson(a, b []float64) float64 {
	n := len(a)
	if n < 2 || len(b) != n {
		return 0
	}
	meanA, meanB := Mean(a), Mean(b)

	var num, sa, sb float64
	for i := 0; i < n; i++ {
		da, db := a[i]-meanA, b[i]-meanB
		num += da * db
		sa += da * da
		sb += db * db
	}
	den := math.Sqrt(sa * sb)
	if den == 0 {
		return 0
	}
	r := num / den
	// guard against rounding pushing |r| past 1
	return math.Max(-1, math.Min(1, r))
}

func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev is the population standard deviation.
func StdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := Mean(xs)
	ss := 0.0
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// Volatility annualizes the population standard deviation of daily returns.
// Fewer than two returns give 0.
func Volatility(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	return StdDev(returns) * math.Sqrt(TradingDays)
}

// Cumulative compounds log returns from base: v_t = v_{t-1} * e^{r_t}. The
// base itself is not included.
func Cumulative(returns []float64, base float64) []float64 {
	out := make([]float64, len(returns))
	v := base
	for i, r := range returns {
		v *= math.Exp(r)
		out[i] = v
	}
	return out
}

// exactExp is below the smallest float64 exponent, so the decimal holds v exactly.
const exactExp = -1100

// Round rounds the exact binary value of v to places decimal places,
// ties to even. 2.675 rounds to 2.67 because it is stored just below.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloatWithExponent(v, exactExp).RoundBank(places).Float64()
	return f
}
