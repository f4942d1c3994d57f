package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/corrlab/internal/colormap"
)

// Styles holds the lipgloss styles derived from a Theme.
type Styles struct {
	Theme Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Panel    lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Subtle   lipgloss.Style
	KeyHint  lipgloss.Style
	Active   lipgloss.Style
	Error    lipgloss.Style
	Up       lipgloss.Style
	Down     lipgloss.Style
	SeriesA  lipgloss.Style
	SeriesB  lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Theme: t,
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Text),
		Subtitle: lipgloss.NewStyle().
			Foreground(t.TextSecondary),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Grid).
			Padding(0, 1),
		Label: lipgloss.NewStyle().
			Foreground(t.Muted),
		Value: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Text),
		Subtle: lipgloss.NewStyle().
			Foreground(t.Muted),
		KeyHint: lipgloss.NewStyle().
			Foreground(t.Muted).
			Italic(true),
		Active: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Background).
			Background(t.AccentA).
			Padding(0, 1),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Negative),
		Up:      lipgloss.NewStyle().Foreground(t.Positive),
		Down:    lipgloss.NewStyle().Foreground(t.Negative),
		SeriesA: lipgloss.NewStyle().Bold(true).Foreground(t.AccentA),
		SeriesB: lipgloss.NewStyle().Bold(true).Foreground(t.AccentB),
	}
}

// Signed colors a formatted number by the sign of v.
func (s Styles) Signed(v float64, text string) string {
	if v < 0 {
		return s.Down.Render(text)
	}
	return s.Up.Render(text)
}

// BoxWithTitle renders content in a rounded panel with the title on top.
func (s Styles) BoxWithTitle(title, content string, width int) string {
	box := s.Panel
	if width > 0 {
		box = box.Width(width)
	}
	return lipgloss.JoinVertical(lipgloss.Left, s.Title.Render(title), box.Render(content))
}

// Separator draws a horizontal rule with a centered diamond.
func (s Styles) Separator(width int) string {
	if width < 8 {
		return s.Subtle.Render(strings.Repeat("─", max(width, 0)))
	}
	mid := width / 2
	left := strings.Repeat("─", mid-3)
	right := strings.Repeat("─", width-mid-3)
	return s.Subtle.Render(left + " ◆ " + right)
}

// Sparkline renders values as a one-line bar chart in the given color,
// sampling down to width.
func Sparkline(values []float64, width int, style lipgloss.Style) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		idx = min(max(idx, 0), len(chars)-1)
		b.WriteRune(chars[idx])
	}
	return style.Render(b.String())
}

// CorrelationBar draws |v| as a bar of the given width, colored the way the
// matrix colors v and composited over bg.
func CorrelationBar(v float64, width int, bg colormap.RGB) string {
	if width <= 0 {
		return ""
	}
	filled := int(math.Round(math.Abs(v) * float64(width)))
	filled = min(max(filled, 0), width)

	fill := colormap.Fill(v).Over(bg)
	on := lipgloss.NewStyle().Foreground(lipgloss.Color(fill.Hex()))
	off := lipgloss.NewStyle().Foreground(lipgloss.Color(colormap.Neutral.Hex()))
	return on.Render(strings.Repeat("█", filled)) + off.Render(strings.Repeat("░", width-filled))
}
