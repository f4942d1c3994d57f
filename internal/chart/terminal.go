package chart

import (
	"errors"
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/corrlab/internal/market"
	"github.com/san-kum/corrlab/internal/viz"
)

// ErrTooFewPoints is returned when a comparison has fewer than two common
// dates, which is not enough to draw a line.
var ErrTooFewPoints = errors.New("chart: need at least 2 points")

type TermOptions struct {
	Width  int
	Height int
	Theme  viz.Theme
}

func (o TermOptions) withDefaults() TermOptions {
	if o.Width <= 0 {
		o.Width = 80
	}
	if o.Height <= 0 {
		o.Height = 12
	}
	if o.Theme.Name == "" {
		o.Theme = viz.ThemeDark
	}
	return o
}

// seriesColors picks the closest 256-color entries to the theme accents.
func seriesColors(t viz.Theme) (a, b asciigraph.AnsiColor) {
	if t.IsDark() {
		return asciigraph.DodgerBlue, asciigraph.MediumSeaGreen
	}
	return asciigraph.RoyalBlue, asciigraph.ForestGreen
}

// Terminal plots both base-100 series of cmp on one set of axes.
func Terminal(cmp *market.Comparison, opts TermOptions) (string, error) {
	if cmp == nil || len(cmp.AssetA.Timeseries) < 2 || len(cmp.AssetB.Timeseries) < 2 {
		return "", ErrTooFewPoints
	}
	opts = opts.withDefaults()
	colorA, colorB := seriesColors(opts.Theme)

	caption := fmt.Sprintf("cumulative return, base 100 (%s, %s to %s)",
		cmp.Range, cmp.CommonDates[0], cmp.CommonDates[len(cmp.CommonDates)-1])

	graph := asciigraph.PlotMany(
		[][]float64{Values(cmp.AssetA), Values(cmp.AssetB)},
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colorA, colorB),
		asciigraph.SeriesLegends(label(cmp.AssetA), label(cmp.AssetB)),
	)
	return graph, nil
}

// Values extracts the y values of a series.
func Values(s market.AssetSeries) []float64 {
	out := make([]float64, len(s.Timeseries))
	for i, p := range s.Timeseries {
		out[i] = p.Value
	}
	return out
}

func label(s market.AssetSeries) string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}
