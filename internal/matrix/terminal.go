package matrix

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/corrlab/internal/colormap"
)

const DefaultCellWidth = 8

// Position addresses a grid cell. Use NoCursor when nothing is highlighted.
type Position struct {
	Row, Col int
}

var NoCursor = Position{-1, -1}

type TermStyle struct {
	// Background is what translucent fills are composited onto.
	Background colormap.RGB
	Header     lipgloss.Style
	Diagonal   lipgloss.Style
	CellWidth  int
}

// Terminal draws the grid as lipgloss blocks, one line per row. The cell at
// cursor is drawn bold and underlined.
func (g *Grid) Terminal(st TermStyle, cursor Position) string {
	w := st.CellWidth
	if w <= 0 {
		w = DefaultCellWidth
	}
	base := lipgloss.NewStyle().Width(w).Align(lipgloss.Center)

	lines := make([]string, 0, g.Size)
	for _, row := range g.Rows() {
		parts := make([]string, 0, len(row))
		for _, c := range row {
			style := base
			switch c.Kind {
			case KindColumnHeader, KindRowHeader:
				style = st.Header.Inherit(base)
			case KindDiagonal:
				style = st.Diagonal.Inherit(base)
			case KindValue:
				bg := c.Fill.Over(st.Background)
				fg := c.Text.Over(bg)
				style = base.Background(lipgloss.Color(bg.Hex())).Foreground(lipgloss.Color(fg.Hex()))
			}
			if c.Row == cursor.Row && c.Col == cursor.Col {
				style = style.Bold(true).Underline(true)
			}
			parts = append(parts, style.Render(truncate(c.Label, w-1)))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, parts...))
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
