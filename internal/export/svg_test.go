package export

import (
	"strings"
	"testing"

	"github.com/san-kum/corrlab/internal/market"
	"github.com/san-kum/corrlab/internal/matrix"
	"github.com/san-kum/corrlab/internal/viz"
)

func sampleGrid() *matrix.Grid {
	m := &market.CorrelationMatrix{
		Assets:        []string{"SPY", "GLD"},
		AssetNames:    map[string]string{"SPY": "S&P 500", "GLD": "Gold & Co"},
		ReferenceDate: "2024-06-28",
		Cells: [][]market.CorrelationCell{
			{{AssetA: "SPY", AssetB: "SPY", Correlation: 1, SampleCount: 10}, {AssetA: "SPY", AssetB: "GLD", Correlation: -1, SampleCount: 10}},
			{{AssetA: "GLD", AssetB: "SPY", Correlation: -1, SampleCount: 10}, {AssetA: "GLD", AssetB: "GLD", Correlation: 1, SampleCount: 10}},
		},
	}
	return matrix.NewRenderer().Render(m)
}

func TestMatrixToSVG(t *testing.T) {
	svg := MatrixToSVG(sampleGrid(), viz.ThemeDark, 50)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("not a complete svg document")
	}
	if got := strings.Count(svg, ">1.00</text>"); got != 2 {
		t.Errorf("expected 2 diagonal labels, got %d", got)
	}
	if got := strings.Count(svg, "<title>"); got != 2 {
		t.Errorf("expected 2 tooltips, got %d", got)
	}
	if !strings.Contains(svg, `fill="rgb(231,76,60)" fill-opacity="1"`) {
		t.Error("expected full-strength negative fill")
	}
	if !strings.Contains(svg, "Gold &amp; Co") {
		t.Error("names should be escaped")
	}
	if !strings.Contains(svg, `width="150" height="175"`) {
		t.Error("unexpected document size")
	}
	if !strings.Contains(svg, "reference date 2024-06-28") {
		t.Error("missing reference date")
	}
}

func TestMatrixToSVGEmpty(t *testing.T) {
	if MatrixToSVG(nil, viz.ThemeDark, 0) != "" {
		t.Error("nil grid should produce empty output")
	}
	if MatrixToSVG(matrix.NewRenderer().Render(nil), viz.ThemeDark, 0) != "" {
		t.Error("empty grid should produce empty output")
	}
}

func TestFormatAlpha(t *testing.T) {
	tests := map[float64]string{1: "1", 0.3: "0.3", 0.65: "0.65", 0.3007: "0.301"}
	for in, want := range tests {
		if got := formatAlpha(in); got != want {
			t.Errorf("formatAlpha(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestComparisonToSVG(t *testing.T) {
	cmp := &market.Comparison{
		AssetA: market.AssetSeries{ID: "SPY", Name: "S&P 500", Timeseries: []market.SeriesPoint{
			{Date: "2024-01-02", Value: 100}, {Date: "2024-01-03", Value: 101}, {Date: "2024-01-04", Value: 103},
		}},
		AssetB: market.AssetSeries{ID: "GLD", Timeseries: []market.SeriesPoint{
			{Date: "2024-01-02", Value: 100}, {Date: "2024-01-03", Value: 99}, {Date: "2024-01-04", Value: 98},
		}},
	}

	svg := ComparisonToSVG(cmp, 300, 100, viz.ThemeLight)
	if got := strings.Count(svg, "<path"); got != 2 {
		t.Errorf("expected 2 paths, got %d", got)
	}
	if !strings.Contains(svg, `stroke="#2563eb"`) || !strings.Contains(svg, `stroke="#16a34a"`) {
		t.Error("series should use theme accents")
	}
	if !strings.Contains(svg, ">GLD</text>") {
		t.Error("unnamed series should fall back to its id")
	}
	if !strings.Contains(svg, "M0.0,") {
		t.Error("path should start at the left edge")
	}
}

func TestComparisonToSVGTooShort(t *testing.T) {
	cmp := &market.Comparison{
		AssetA: market.AssetSeries{Timeseries: []market.SeriesPoint{{Value: 100}}},
		AssetB: market.AssetSeries{Timeseries: []market.SeriesPoint{{Value: 100}}},
	}
	if ComparisonToSVG(cmp, 100, 100, viz.ThemeDark) != "" {
		t.Error("expected empty output for a single point")
	}
	if ComparisonToSVG(nil, 100, 100, viz.ThemeDark) != "" {
		t.Error("expected empty output for nil")
	}
}
