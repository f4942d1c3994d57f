package chart

import (
	"fmt"
	"strings"

	"github.com/san-kum/corrlab/internal/analysis"
	"github.com/san-kum/corrlab/internal/market"
	"github.com/san-kum/corrlab/internal/viz"
)

// Scatter plots daily returns of asset A (x) against asset B (y) on a
// braille canvas, with the least squares line drawn through them.
func Scatter(cmp *market.Comparison, opts TermOptions) (string, error) {
	if cmp == nil {
		return "", ErrTooFewPoints
	}
	pts := analysis.ReturnPairs(Values(cmp.AssetA), Values(cmp.AssetB), 100)
	if len(pts) < 2 {
		return "", ErrTooFewPoints
	}
	opts = opts.withDefaults()
	styles := viz.NewStyles(opts.Theme)

	canvas := viz.NewCanvas(opts.Width, opts.Height)
	b := analysis.PaddedBounds(pts, 0.05)
	w, h := canvas.Dots()
	toDot := func(x, y float64) (int, int) {
		dx := int((x - b.MinX) / (b.MaxX - b.MinX) * float64(w-1))
		dy := h - 1 - int((y-b.MinY)/(b.MaxY-b.MinY)*float64(h-1))
		return dx, dy
	}

	for _, p := range pts {
		canvas.Set(toDot(p.X, p.Y))
	}

	fitNote := "no fit"
	if fit, ok := analysis.LinearFit(pts); ok {
		x0, y0 := toDot(b.MinX, fit.At(b.MinX))
		x1, y1 := toDot(b.MaxX, fit.At(b.MaxX))
		canvas.Line(x0, y0, x1, y1)
		fitNote = fmt.Sprintf("beta %.2f", fit.Beta)
	}

	rows := canvas.Rows()
	for i, row := range rows {
		rows[i] = styles.SeriesA.Render(row)
	}

	caption := fmt.Sprintf("daily log returns, x %s / y %s (%s, n=%d, %s)",
		cmp.AssetA.ID, cmp.AssetB.ID, cmp.Range, len(pts), fitNote)
	yAxis := fmt.Sprintf("%+.1f%% .. %+.1f%%", b.MinY*100, b.MaxY*100)
	xAxis := fmt.Sprintf("%+.1f%% .. %+.1f%%", b.MinX*100, b.MaxX*100)

	var sb strings.Builder
	sb.WriteString(styles.Subtle.Render(cmp.AssetB.ID+" "+yAxis) + "\n")
	sb.WriteString(strings.Join(rows, "\n") + "\n")
	sb.WriteString(styles.Subtle.Render(cmp.AssetA.ID+" "+xAxis) + "\n")
	sb.WriteString(styles.Subtle.Render(caption))
	return sb.String(), nil
}
