package chart

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/lipgloss"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/san-kum/corrlab/internal/market"
	"github.com/san-kum/corrlab/internal/viz"
)

const (
	DefaultPNGWidth  = 960
	DefaultPNGHeight = 420
)

type PNGOptions struct {
	Width  int
	Height int
	Theme  viz.Theme
}

func color(c lipgloss.Color) drawing.Color {
	rgb := viz.RGB(c)
	return drawing.Color{R: uint8(rgb.R), G: uint8(rgb.G), B: uint8(rgb.B), A: 255}
}

func timeSeries(s market.AssetSeries, stroke drawing.Color) (gochart.TimeSeries, error) {
	ts := gochart.TimeSeries{
		Name: label(s),
		Style: gochart.Style{
			StrokeColor: stroke,
			StrokeWidth: 2,
		},
		XValues: make([]time.Time, 0, len(s.Timeseries)),
		YValues: make([]float64, 0, len(s.Timeseries)),
	}
	for _, p := range s.Timeseries {
		d, err := time.Parse(market.DateLayout, p.Date)
		if err != nil {
			return ts, fmt.Errorf("chart: %s: %w", s.ID, err)
		}
		ts.XValues = append(ts.XValues, d)
		ts.YValues = append(ts.YValues, p.Value)
	}
	return ts, nil
}

// PNG renders the comparison as a line chart image into w.
func PNG(w io.Writer, cmp *market.Comparison, opts PNGOptions) error {
	if cmp == nil || len(cmp.AssetA.Timeseries) < 2 || len(cmp.AssetB.Timeseries) < 2 {
		return ErrTooFewPoints
	}
	if opts.Width <= 0 {
		opts.Width = DefaultPNGWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultPNGHeight
	}
	if opts.Theme.Name == "" {
		opts.Theme = viz.ThemeDark
	}
	th := opts.Theme

	a, err := timeSeries(cmp.AssetA, color(th.AccentA))
	if err != nil {
		return err
	}
	b, err := timeSeries(cmp.AssetB, color(th.AccentB))
	if err != nil {
		return err
	}

	text := gochart.Style{FontColor: color(th.TextSecondary), StrokeColor: color(th.Grid)}
	ch := gochart.Chart{
		Title:      fmt.Sprintf("%s vs %s (%s)", label(cmp.AssetA), label(cmp.AssetB), cmp.Range),
		TitleStyle: gochart.Style{FontColor: color(th.Text)},
		Width:      opts.Width,
		Height:     opts.Height,
		Background: gochart.Style{
			FillColor: color(th.Background),
			Padding:   gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		Canvas: gochart.Style{FillColor: color(th.Background)},
		XAxis: gochart.XAxis{
			Style:          text,
			ValueFormatter: gochart.TimeValueFormatterWithFormat(market.DateLayout),
		},
		YAxis: gochart.YAxis{
			Name:      "index",
			NameStyle: text,
			Style:     text,
			Range:     yRange(a.YValues, b.YValues),
		},
		Series: []gochart.Series{a, b},
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	return ch.Render(gochart.PNG, w)
}

// yRange pads the data bounds so flat series still have a drawable axis.
func yRange(series ...[]float64) *gochart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
