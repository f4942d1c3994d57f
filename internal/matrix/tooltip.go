package matrix

import (
	"fmt"

	"github.com/san-kum/corrlab/internal/market"
)

type Tooltip struct {
	Pair        string
	Correlation string
	SampleCount int
}

// TooltipFor describes a hovered cell using the grid's display names.
func (g *Grid) TooltipFor(c market.CorrelationCell) Tooltip {
	return Tooltip{
		Pair:        fmt.Sprintf("%s vs %s", g.Name(c.AssetA), g.Name(c.AssetB)),
		Correlation: fmt.Sprintf("%.3f", c.Correlation),
		SampleCount: c.SampleCount,
	}
}

func (t Tooltip) Lines() []string {
	return []string{
		t.Pair,
		fmt.Sprintf("%-14s%s", "Correlation", t.Correlation),
		fmt.Sprintf("%-14s%d", "Sample count", t.SampleCount),
	}
}

// String joins the lines for single-line contexts such as HTML titles.
func (t Tooltip) String() string {
	return fmt.Sprintf("%s | correlation %s | n=%d", t.Pair, t.Correlation, t.SampleCount)
}
