package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/san-kum/corrlab/internal/colormap"
	"github.com/san-kum/corrlab/internal/market"
	"github.com/san-kum/corrlab/internal/matrix"
	"github.com/san-kum/corrlab/internal/viz"
)

// DefaultCellSize is the side of one matrix cell in SVG user units.
const DefaultCellSize = 72

func svgColor(c colormap.RGB) string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// MatrixToSVG draws the grid as a table of colored squares. Value cells carry
// a <title> so viewers show the tooltip on hover.
func MatrixToSVG(g *matrix.Grid, theme viz.Theme, cellSize int) string {
	if g == nil || g.Size == 0 {
		return ""
	}
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	side := g.Size * cellSize
	height := side
	if g.ReferenceDate != "" {
		height += cellSize / 2
	}
	fontSize := cellSize / 5

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif" font-size="%d">
<rect width="100%%" height="100%%" fill="%s"/>
`, side, height, side, height, fontSize, theme.Background))

	for _, c := range g.Cells {
		x := c.Col * cellSize
		y := c.Row * cellSize
		cx := x + cellSize/2
		cy := y + cellSize/2

		textFill := string(theme.Text)
		opacity := "1"
		switch c.Kind {
		case matrix.KindCorner:
			continue
		case matrix.KindColumnHeader, matrix.KindRowHeader:
			textFill = string(theme.TextSecondary)
		case matrix.KindDiagonal, matrix.KindMissing:
			textFill = string(theme.Muted)
			sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="%s" stroke="%s"/>
`, x, y, cellSize, cellSize, theme.Surface, theme.Grid))
		case matrix.KindValue:
			textFill = svgColor(c.Text.RGB())
			opacity = formatAlpha(c.Text.A)
			hover, _ := c.Hover()
			sb.WriteString(fmt.Sprintf(`<g><title>%s</title>
<rect x="%d" y="%d" width="%d" height="%d" fill="%s" fill-opacity="%s" stroke="%s"/>
`, html.EscapeString(g.TooltipFor(hover).String()), x, y, cellSize, cellSize,
				svgColor(c.Fill.RGB()), formatAlpha(c.Fill.A), theme.Grid))
		}

		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" fill="%s" fill-opacity="%s" text-anchor="middle" dominant-baseline="central">%s</text>
`, cx, cy, textFill, opacity, html.EscapeString(c.Label)))
		if c.Kind == matrix.KindValue {
			sb.WriteString("</g>\n")
		}
	}

	if g.ReferenceDate != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" fill="%s" font-size="%d">reference date %s</text>
`, cellSize/8, side+cellSize/4, theme.Muted, fontSize*3/4, html.EscapeString(g.ReferenceDate)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func formatAlpha(a float64) string {
	s := fmt.Sprintf("%.3f", a)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

type point struct{ X, Y float64 }

// ComparisonToSVG draws both cumulative series of cmp as lines on shared
// axes. It returns "" when there are fewer than two points to draw.
func ComparisonToSVG(cmp *market.Comparison, width, height int, theme viz.Theme) string {
	if cmp == nil || len(cmp.AssetA.Timeseries) < 2 || len(cmp.AssetB.Timeseries) < 2 {
		return ""
	}

	series := [][]market.SeriesPoint{cmp.AssetA.Timeseries, cmp.AssetB.Timeseries}

	minY, maxY := series[0][0].Value, series[0][0].Value
	maxX := 0
	for _, s := range series {
		for _, p := range s {
			minY = min(minY, p.Value)
			maxY = max(maxY, p.Value)
		}
		maxX = max(maxX, len(s)-1)
	}

	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif" font-size="12">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, theme.Background))

	colors := []string{string(theme.AccentA), string(theme.AccentB)}
	names := []string{cmp.AssetA.Name, cmp.AssetB.Name}
	ids := []string{cmp.AssetA.ID, cmp.AssetB.ID}
	for i, s := range series {
		pts := make([]point, len(s))
		for j, p := range s {
			pts[j] = point{
				X: float64(j) / float64(maxX) * float64(width),
				Y: float64(height) - (p.Value-minY)/rangeY*float64(height),
			}
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="%s"/>
`, colors[i], pathData(pts)))

		name := names[i]
		if name == "" {
			name = ids[i]
		}
		sb.WriteString(fmt.Sprintf(`<text x="8" y="%d" fill="%s">%s</text>
`, 18*(i+1), colors[i], html.EscapeString(name)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func pathData(pts []point) string {
	var sb strings.Builder
	for i, p := range pts {
		if i == 0 {
			sb.WriteString(fmt.Sprintf("M%.1f,%.1f", p.X, p.Y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", p.X, p.Y))
		}
	}
	return sb.String()
}
