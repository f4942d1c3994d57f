package storage

import (
	"testing"
	"time"

	"github.com/san-kum/corrlab/internal/analysis"
)

func TestSynthesize(t *testing.T) {
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC) // a Sunday
	got := Synthesize([]string{"SPY", "QQQ", "TLT"}, 300, end, 7)

	if len(got) != 3 {
		t.Fatalf("got %d series, want 3", len(got))
	}
	spy := got["SPY"]
	if len(spy) != 300 {
		t.Fatalf("got %d points, want 300", len(spy))
	}
	if want := time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC); !spy[len(spy)-1].Date.Equal(want) {
		t.Errorf("last date = %v, want %v", spy[len(spy)-1].Date, want)
	}
	for i, p := range spy {
		if wd := p.Date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Fatalf("weekend date %v", p.Date)
		}
		if p.Close <= 0 {
			t.Fatalf("non-positive close %v", p.Close)
		}
		if i > 0 && !p.Date.After(spy[i-1].Date) {
			t.Fatalf("dates not increasing at %d", i)
		}
	}

	returns := func(id string) []float64 {
		rs := analysis.LogReturns(got[id])
		out := make([]float64, len(rs))
		for i, r := range rs {
			out[i] = r.Value
		}
		return out
	}
	if c := analysis.Pearson(returns("SPY"), returns("QQQ")); c < 0.6 {
		t.Errorf("SPY/QQQ correlation = %.3f, want strongly positive", c)
	}
	if c := analysis.Pearson(returns("SPY"), returns("TLT")); c > 0 {
		t.Errorf("SPY/TLT correlation = %.3f, want negative", c)
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	end := time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)
	a := Synthesize([]string{"GLD", "NEW"}, 20, end, 42)
	b := Synthesize([]string{"GLD", "NEW"}, 20, end, 42)
	for _, id := range []string{"GLD", "NEW"} {
		for i := range a[id] {
			if a[id][i] != b[id][i] {
				t.Fatalf("%s[%d] differs: %v vs %v", id, i, a[id][i], b[id][i])
			}
		}
	}
	if a["NEW"][0].Close <= 0 {
		t.Error("unknown ids should use fallback parameters")
	}
}
