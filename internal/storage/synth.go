package storage

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/san-kum/corrlab/internal/market"
)

// SynthParams shapes one generated price series. Beta is the loading on the
// shared market factor and lies in [-1, 1].
type SynthParams struct {
	Start float64
	Drift float64
	Vol   float64
	Beta  float64
}

// DefaultSynth gives the bundled assets loosely realistic behaviour.
var DefaultSynth = map[string]SynthParams{
	"SPY":    {Start: 420, Drift: 0.08, Vol: 0.16, Beta: 0.95},
	"QQQ":    {Start: 350, Drift: 0.11, Vol: 0.22, Beta: 0.9},
	"IWM":    {Start: 190, Drift: 0.05, Vol: 0.24, Beta: 0.8},
	"EFA":    {Start: 70, Drift: 0.04, Vol: 0.15, Beta: 0.75},
	"TLT":    {Start: 100, Drift: 0.01, Vol: 0.14, Beta: -0.3},
	"GLD":    {Start: 180, Drift: 0.05, Vol: 0.14, Beta: 0.05},
	"DXY":    {Start: 102, Drift: 0.00, Vol: 0.07, Beta: -0.2},
	"BTCUSD": {Start: 30000, Drift: 0.3, Vol: 0.65, Beta: 0.4},
	"ETHUSD": {Start: 1800, Drift: 0.3, Vol: 0.8, Beta: 0.45},
}

var fallbackSynth = SynthParams{Start: 100, Drift: 0.05, Vol: 0.2, Beta: 0.5}

// Synthesize generates days weekday closes ending at end for every id. The
// series share one market factor so their correlations follow the betas.
// The same seed always yields the same prices.
func Synthesize(ids []string, days int, end time.Time, seed uint64) map[string][]market.PricePoint {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	dates := weekdays(days, end)

	out := make(map[string][]market.PricePoint, len(ids))
	last := make(map[string]float64, len(ids))
	for _, id := range ids {
		out[id] = make([]market.PricePoint, 0, len(dates))
		last[id] = params(id).Start
	}

	dt := 1.0 / 252
	for _, d := range dates {
		factor := rng.NormFloat64()
		for _, id := range ids {
			p := params(id)
			shock := p.Beta*factor + math.Sqrt(1-p.Beta*p.Beta)*rng.NormFloat64()
			r := (p.Drift-0.5*p.Vol*p.Vol)*dt + p.Vol*math.Sqrt(dt)*shock
			last[id] *= math.Exp(r)
			out[id] = append(out[id], market.PricePoint{Date: d, Close: math.Round(last[id]*100) / 100})
		}
	}
	return out
}

func params(id string) SynthParams {
	if p, ok := DefaultSynth[id]; ok {
		return p
	}
	return fallbackSynth
}

func weekdays(n int, end time.Time) []time.Time {
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, 0, n)
	for d := end; len(dates) < n; d = d.AddDate(0, 0, -1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		dates = append(dates, d)
	}
	for i, j := 0, len(dates)-1; i < j; i, j = i+1, j-1 {
		dates[i], dates[j] = dates[j], dates[i]
	}
	return dates
}
