package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/corrlab/internal/chart"
	"github.com/san-kum/corrlab/internal/market"
	"github.com/san-kum/corrlab/internal/viz"
)

func (m Model) View() string {
	if m.initErr != nil {
		return m.errorView()
	}
	if !m.ready {
		return fmt.Sprintf("\n  %s loading assets...\n", m.spinner.View())
	}

	sections := []string{
		m.headerView(),
		m.rangeView(),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, m.matrixView(), "  ", m.insightsView()),
		"",
		m.comparisonView(),
		m.styles.Separator(min(m.width, 100)),
		m.styles.KeyHint.Render("1-9 range · ←↓↑→/hjkl move · enter select · a/b cycle pair · s scatter · t theme · r refresh · q quit"),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// errorView replaces the whole dashboard when the asset list cannot be
// loaded.
func (m Model) errorView() string {
	s := m.styles
	lines := []string{
		s.Error.Render("Error loading application"),
		"",
		s.Subtitle.Render("Please ensure the backend server is running:"),
		s.Subtle.Render("  " + m.hint),
		"",
		s.KeyHint.Render("q quit"),
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(lines, "\n"))
}

func (m Model) headerView() string {
	s := m.styles
	icon := "☀️"
	if !m.theme.IsDark() {
		icon = "🌙"
	}
	title := s.Title.Render("corrlab · asset correlations")
	sub := ""
	if m.state.Matrix != nil {
		sub = s.Subtle.Render(fmt.Sprintf("  reference date %s", m.state.Matrix.ReferenceDate))
	}
	busy := ""
	if m.busy() {
		busy = "  " + m.spinner.View()
	}
	return title + sub + busy + "  " + icon
}

func (m Model) rangeView() string {
	s := m.styles
	parts := make([]string, 0, len(market.Ranges))
	for i, r := range market.Ranges {
		label := fmt.Sprintf("%d %s", i+1, r)
		if r == m.state.Range {
			parts = append(parts, s.Active.Render(label))
		} else {
			parts = append(parts, s.Subtle.Padding(0, 1).Render(label))
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) matrixView() string {
	s := m.styles
	st := m.state
	if st.Grid == nil {
		return s.BoxWithTitle("Correlation matrix", m.spinner.View()+" loading", 0)
	}

	body := st.Grid.Terminal(m.theme.MatrixStyle(), st.Cursor)
	if tip, ok := st.Tooltip(); ok {
		lines := tip.Lines()
		lines[0] = s.Value.Render(lines[0])
		body += "\n\n" + strings.Join(lines, "\n")
	} else {
		body += "\n\n" + s.Subtle.Render("move onto a cell to inspect it")
	}
	return s.BoxWithTitle("Correlation matrix · "+string(st.Range), body, 0)
}

func (m Model) insightsView() string {
	s := m.styles
	ins := m.state.Insights
	if ins == nil {
		return s.BoxWithTitle("Insights", s.Subtle.Render("loading"), 44)
	}
	if len(ins.Insights) == 0 {
		return s.BoxWithTitle("Insights", s.Subtle.Render("no pairs to compare"), 44)
	}

	bg := viz.RGB(m.theme.Background)
	lines := make([]string, 0, len(ins.Insights)*3)
	for i, in := range ins.Insights {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines,
			viz.InsightIcon(in.Type)+" "+s.Value.Render(in.Title),
			"   "+s.Subtitle.Render(in.Text),
			"   "+viz.CorrelationBar(in.Correlation, 20, bg),
		)
	}
	return s.BoxWithTitle("Insights", strings.Join(lines, "\n"), 44)
}

func (m Model) comparisonView() string {
	s := m.styles
	st := m.state
	title := fmt.Sprintf("%s vs %s", st.AssetA, st.AssetB)

	cmp := st.Comparison
	if cmp == nil {
		return s.BoxWithTitle(title, s.Subtle.Render("loading"), 0)
	}
	// The view keeps showing the last good comparison while a new pair loads.
	title = fmt.Sprintf("%s vs %s · correlation %.3f (n=%d)", cmp.AssetA.ID, cmp.AssetB.ID, cmp.Correlation, cmp.SampleCount)

	width := max(m.width-16, 30)
	opts := chart.TermOptions{Width: width, Height: 10, Theme: m.theme}
	plot := chart.Terminal
	if m.scatter {
		opts.Width = min(width, 60)
		plot = chart.Scatter
	}
	graph, err := plot(cmp, opts)
	if err != nil {
		graph = s.Subtle.Render("not enough overlapping data for this pair")
	}

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		m.statCard(cmp.AssetA, cmp.VolatilityA, s.SeriesA),
		"  ",
		m.statCard(cmp.AssetB, cmp.VolatilityB, s.SeriesB),
	)
	return s.BoxWithTitle(title, graph+"\n\n"+cards, 0)
}

func (m Model) statCard(series market.AssetSeries, vol float64, accent lipgloss.Style) string {
	s := m.styles
	ret := s.Subtle.Render("-")
	if pct, ok := series.FinalReturn(); ok {
		ret = s.Signed(pct, viz.SignedPercent(pct))
	}
	lines := []string{
		accent.Render(series.ID) + " " + s.Subtle.Render(series.Name),
		s.Label.Render("volatility ") + s.Value.Render(viz.Percent(vol)),
		s.Label.Render("return     ") + ret,
		viz.Sparkline(chart.Values(series), 24, accent),
	}
	return s.Panel.Render(strings.Join(lines, "\n"))
}
