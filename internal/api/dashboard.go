package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gin-gonic/gin"

	"github.com/san-kum/corrlab/internal/market"
	"github.com/san-kum/corrlab/internal/matrix"
	"github.com/san-kum/corrlab/internal/viz"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTmpl = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

// pageState is everything that identifies one dashboard view. It round-trips
// through the query string.
type pageState struct {
	Range  market.Range
	AssetA string
	AssetB string
	Theme  viz.Theme
}

func (p pageState) href(path string) string {
	q := url.Values{}
	q.Set("range", string(p.Range))
	q.Set("asset_a", p.AssetA)
	q.Set("asset_b", p.AssetB)
	q.Set("theme", p.Theme.Name)
	return path + "?" + q.Encode()
}

type pageCell struct {
	Kind     string
	Label    string
	Style    template.CSS
	Title    string
	Href     string
	Selected bool
}

type pageRange struct {
	Label  string
	Href   string
	Active bool
}

type statCard struct {
	ID         string
	Name       string
	Volatility string
	Return     string
	Tone       string
	Color      template.CSS
}

type pageInsight struct {
	Icon  string
	Tone  string
	Title string
	Text  string
}

type pageData struct {
	State         pageState
	ThemeVars     template.CSS
	ThemeHref     string
	ThemeIcon     string
	Ranges        []pageRange
	Rows          [][]pageCell
	ReferenceDate string
	Correlation   string
	SampleCount   int
	Stats         []statCard
	ChartSrc      string
	Insights      []pageInsight
	Error         string
}

func themeVars(t viz.Theme) template.CSS {
	vars := []struct {
		name  string
		value string
	}{
		{"bg", string(t.Background)},
		{"surface", string(t.Surface)},
		{"grid", string(t.Grid)},
		{"text", string(t.Text)},
		{"text-secondary", string(t.TextSecondary)},
		{"muted", string(t.Muted)},
		{"accent-a", string(t.AccentA)},
		{"accent-b", string(t.AccentB)},
		{"positive", string(t.Positive)},
		{"negative", string(t.Negative)},
	}
	var sb strings.Builder
	for _, v := range vars {
		fmt.Fprintf(&sb, "--%s: %s; ", v.name, v.value)
	}
	return template.CSS(sb.String())
}

// defaultPair prefers SPY/QQQ and falls back to the first two assets.
func (s *Server) defaultPair() (string, string) {
	assets := s.svc.Assets()
	a, b := "SPY", "QQQ"
	has := func(id string) bool {
		for _, x := range assets {
			if x.ID == id {
				return true
			}
		}
		return false
	}
	if has(a) && has(b) {
		return a, b
	}
	switch len(assets) {
	case 0:
		return "", ""
	case 1:
		return assets[0].ID, assets[0].ID
	}
	return assets[0].ID, assets[1].ID
}

func (s *Server) pageState(c *gin.Context) (pageState, error) {
	st := pageState{
		AssetA: c.Query("asset_a"),
		AssetB: c.Query("asset_b"),
		Theme:  viz.GetTheme(c.Query("theme")),
	}
	if st.AssetA == "" || st.AssetB == "" {
		st.AssetA, st.AssetB = s.defaultPair()
	}
	r, err := market.ParseRange(c.Query("range"))
	if err != nil {
		st.Range = market.DefaultRange
		return st, err
	}
	st.Range = r
	return st, nil
}

func (s *Server) dashboard(c *gin.Context) {
	st, err := s.pageState(c)
	data := pageData{
		State:     st,
		ThemeVars: themeVars(st.Theme),
		ThemeIcon: "☀️",
	}
	if !st.Theme.IsDark() {
		data.ThemeIcon = "🌙"
	}
	toggled := st
	toggled.Theme = st.Theme.Toggle()
	data.ThemeHref = toggled.href("/")

	for _, r := range market.Ranges {
		link := st
		link.Range = r
		data.Ranges = append(data.Ranges, pageRange{Label: string(r), Href: link.href("/"), Active: r == st.Range})
	}

	status := http.StatusOK
	fail := func(err error) {
		code, msg, ok := errorStatus(err)
		if !ok {
			s.logFailure(c, err)
		}
		if status == http.StatusOK {
			status = code
		}
		data.Error = msg
	}

	if err != nil {
		fail(err)
	} else {
		s.fillPage(c, st, &data, fail)
	}

	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, data); err != nil {
		s.writeError(c, err)
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) fillPage(c *gin.Context, st pageState, data *pageData, fail func(error)) {
	ctx := c.Request.Context()

	m, err := s.svc.Matrix(ctx, st.Range)
	if err != nil {
		fail(err)
		return
	}
	grid := s.renderer.Render(m)
	data.ReferenceDate = m.ReferenceDate
	data.Rows = pageRows(grid, st)

	if ins, err := s.svc.Insights(ctx, st.Range); err != nil {
		fail(err)
	} else {
		for _, in := range ins.Insights {
			data.Insights = append(data.Insights, pageInsight{
				Icon:  viz.InsightIcon(in.Type),
				Tone:  viz.Tone(in.Type),
				Title: in.Title,
				Text:  in.Text,
			})
		}
	}

	cmp, err := s.svc.Comparison(ctx, st.AssetA, st.AssetB, st.Range)
	if err != nil {
		fail(err)
		return
	}
	data.Correlation = fmt.Sprintf("%.3f", cmp.Correlation)
	data.SampleCount = cmp.SampleCount
	data.Stats = []statCard{
		stat(cmp.AssetA, cmp.VolatilityA, st.Theme.AccentA),
		stat(cmp.AssetB, cmp.VolatilityB, st.Theme.AccentB),
	}
	if cmp.SampleCount >= 2 {
		data.ChartSrc = st.href("/chart/comparison.png")
	} else if data.Error == "" {
		data.Error = "not enough overlapping data for this pair"
	}
}

func stat(s market.AssetSeries, vol float64, accent lipgloss.Color) statCard {
	card := statCard{
		ID:         s.ID,
		Name:       s.Name,
		Volatility: viz.Percent(vol),
		Return:     "-",
		Tone:       "neutral",
		Color:      template.CSS("color: " + string(accent)),
	}
	if pct, ok := s.FinalReturn(); ok {
		card.Return = viz.SignedPercent(pct)
		card.Tone = "positive"
		if pct < 0 {
			card.Tone = "negative"
		}
	}
	return card
}

func pageRows(g *matrix.Grid, st pageState) [][]pageCell {
	rows := make([][]pageCell, 0, g.Size)
	for _, row := range g.Rows() {
		cells := make([]pageCell, 0, len(row))
		for _, c := range row {
			pc := pageCell{Kind: c.Kind.String(), Label: c.Label}
			if sel, ok := c.Select(); ok {
				link := st
				link.AssetA, link.AssetB = sel.AssetA, sel.AssetB
				hover, _ := c.Hover()
				pc.Href = link.href("/")
				pc.Title = g.TooltipFor(hover).String()
				pc.Style = template.CSS(fmt.Sprintf("background-color: %s; color: %s", c.Fill.CSS(), c.Text.CSS()))
				pc.Selected = sel.AssetA == st.AssetA && sel.AssetB == st.AssetB
			}
			if c.Kind == matrix.KindColumnHeader || c.Kind == matrix.KindRowHeader {
				pc.Title = g.Name(c.Label)
			}
			cells = append(cells, pc)
		}
		rows = append(rows, cells)
	}
	return rows
}
