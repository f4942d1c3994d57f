package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/corrlab/internal/market"
	"github.com/san-kum/corrlab/internal/matrix"
	"github.com/san-kum/corrlab/internal/viz"
)

var testAssets = []market.Asset{
	{ID: "SPY", Name: "S&P 500 (SPY)"},
	{ID: "QQQ", Name: "Nasdaq 100 (QQQ)"},
	{ID: "GLD", Name: "Gold (GLD)"},
}

type fakeFetcher struct {
	mu        sync.Mutex
	calls     []string
	assetsErr error
	matrixErr error
	cmpErr    error
}

func (f *fakeFetcher) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeFetcher) Assets(ctx context.Context) ([]market.Asset, error) {
	f.record("assets")
	if f.assetsErr != nil {
		return nil, f.assetsErr
	}
	return testAssets, nil
}

func (f *fakeFetcher) Matrix(ctx context.Context, r market.Range) (*market.CorrelationMatrix, error) {
	f.record("matrix " + string(r))
	if f.matrixErr != nil {
		return nil, f.matrixErr
	}
	n := len(testAssets)
	m := &market.CorrelationMatrix{
		AssetNames:    map[string]string{},
		Cells:         make([][]market.CorrelationCell, n),
		ReferenceDate: "2024-06-28",
		Range:         r,
	}
	for i, a := range testAssets {
		m.Assets = append(m.Assets, a.ID)
		m.AssetNames[a.ID] = a.Name
		for j, b := range testAssets {
			corr := 1.0
			if i != j {
				corr = 0.9 - 0.4*float64(i+j)
			}
			m.Cells[i] = append(m.Cells[i], market.CorrelationCell{AssetA: a.ID, AssetB: b.ID, Correlation: corr, SampleCount: 100})
		}
	}
	return m, nil
}

func (f *fakeFetcher) Comparison(ctx context.Context, a, b string, r market.Range) (*market.Comparison, error) {
	f.record(fmt.Sprintf("comparison %s %s %s", a, b, r))
	if f.cmpErr != nil {
		return nil, f.cmpErr
	}
	cmp := &market.Comparison{
		AssetA:      market.AssetSeries{ID: a, Name: a},
		AssetB:      market.AssetSeries{ID: b, Name: b},
		SampleCount: 5,
		Correlation: 0.5,
		Range:       r,
		VolatilityA: 0.12,
		VolatilityB: 0.2,
	}
	for i := 0; i < 5; i++ {
		d := fmt.Sprintf("2024-06-%02d", i+1)
		cmp.CommonDates = append(cmp.CommonDates, d)
		cmp.AssetA.Timeseries = append(cmp.AssetA.Timeseries, market.SeriesPoint{Date: d, Value: 100 + float64(i)})
		cmp.AssetB.Timeseries = append(cmp.AssetB.Timeseries, market.SeriesPoint{Date: d, Value: 100 - float64(i)})
	}
	return cmp, nil
}

func (f *fakeFetcher) Insights(ctx context.Context, r market.Range) (*market.Insights, error) {
	f.record("insights " + string(r))
	return &market.Insights{
		Range: r,
		Insights: []market.Insight{{
			Type:        market.InsightNearZero,
			Title:       "Pair closest to zero correlation",
			Text:        "QQQ–GLD (0.100, n=100)",
			Correlation: 0.1,
			SampleCount: 100,
		}},
	}, nil
}

// collect runs cmd and flattens batches into their messages. Spinner ticks
// are dropped so nothing sleeps.
func collect(cmd tea.Cmd) []tea.Msg {
	var out []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case spinner.TickMsg:
		default:
			out = append(out, msg)
		}
	}
	return out
}

// run feeds cmd's messages back into m until no work remains.
func run(m Model, cmd tea.Cmd) Model {
	pending := collect(cmd)
	for len(pending) > 0 {
		msg := pending[0]
		pending = pending[1:]
		if _, ok := msg.(tea.QuitMsg); ok {
			continue
		}
		next, c := m.Update(msg)
		m = next.(Model)
		pending = append(pending, collect(c)...)
	}
	return m
}

func press(m Model, key string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func pressRun(m Model, key string) Model {
	m, cmd := press(m, key)
	return run(m, cmd)
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

var _ = Describe("State", func() {
	It("tracks the latest generation per kind", func() {
		s := NewState(market.Range1Y, "SPY", "QQQ", true)
		first := s.Issue(KindMatrix)
		second := s.Issue(KindMatrix)
		Expect(s.Current(KindMatrix, first)).To(BeFalse())
		Expect(s.Current(KindMatrix, second)).To(BeTrue())

		Expect(s.Current(KindInsights, s.Issue(KindInsights))).To(BeTrue())
		Expect(s.Current(KindMatrix, second)).To(BeTrue(), "kinds are independent")
	})

	It("ignores stale payloads", func() {
		s := NewState(market.Range1Y, "SPY", "QQQ", true)
		old := s.Issue(KindInsights)
		s.Issue(KindInsights)
		Expect(s.ApplyInsights(old, &market.Insights{Range: market.Range1M})).To(BeFalse())
		Expect(s.Insights).To(BeNil())
	})

	It("repairs a selected pair outside the universe", func() {
		s := NewState(market.Range1Y, "XXX", "QQQ", true)
		s.SetAssets(testAssets)
		Expect(s.AssetA).To(Equal("SPY"))
		Expect(s.AssetB).To(Equal("QQQ"))
		Expect(s.AssetName("GLD")).To(Equal("Gold (GLD)"))
		Expect(s.AssetName("NOPE")).To(Equal("NOPE"))
	})

	It("cycles assets in both directions", func() {
		s := NewState(market.Range1Y, "SPY", "QQQ", true)
		s.SetAssets(testAssets)
		s.CycleAsset(0, -1)
		Expect(s.AssetA).To(Equal("GLD"))
		s.CycleAsset(1, 1)
		Expect(s.AssetB).To(Equal("GLD"))
	})

	It("has no cursor without a grid", func() {
		s := NewState(market.Range1Y, "SPY", "QQQ", true)
		s.MoveCursor(1, 1)
		Expect(s.Cursor).To(Equal(matrix.NoCursor))
		_, ok := s.Tooltip()
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Model", func() {
	var (
		fetcher *fakeFetcher
		saved   []string
		m       Model
	)

	newModel := func() Model {
		return New(Options{
			Fetcher: fetcher,
			Range:   market.Range1Y,
			AssetA:  "SPY",
			AssetB:  "QQQ",
			Theme:   viz.ThemeDark,
			SaveTheme: func(name string) error {
				saved = append(saved, name)
				return nil
			},
			Logger: quiet,
		})
	}

	BeforeEach(func() {
		fetcher = &fakeFetcher{}
		saved = nil
		m = newModel()
	})

	Context("on startup", func() {
		It("loads assets, then matrix, comparison and insights in order", func() {
			m = run(m, m.Init())

			Expect(m.Ready()).To(BeTrue())
			Expect(fetcher.Calls()).To(Equal([]string{
				"assets",
				"matrix 1Y",
				"comparison SPY QQQ 1Y",
				"insights 1Y",
			}))
			st := m.State()
			Expect(st.Matrix).NotTo(BeNil())
			Expect(st.Grid.Size).To(Equal(4))
			Expect(st.Comparison.AssetA.ID).To(Equal("SPY"))
			Expect(st.Insights.Insights).To(HaveLen(1))
			Expect(m.Loading(KindMatrix)).To(BeFalse())
			Expect(m.Loading(KindInsights)).To(BeFalse())
		})

		It("renders the loaded dashboard", func() {
			m = run(m, m.Init())
			view := m.View()
			Expect(view).To(ContainSubstring("corrlab"))
			Expect(view).To(ContainSubstring("1.00"))
			Expect(view).To(ContainSubstring("SPY vs QQQ"))
			Expect(view).To(ContainSubstring("S&P 500 (SPY) vs Nasdaq 100 (QQQ)"))
			Expect(view).To(ContainSubstring("Pair closest to zero correlation"))
			Expect(view).To(ContainSubstring("12.0%"))
		})

		It("shows a static error view when assets cannot be loaded", func() {
			fetcher.assetsErr = errors.New("connection refused")
			m = run(m, m.Init())

			Expect(m.Ready()).To(BeFalse())
			Expect(m.InitErr()).To(HaveOccurred())
			Expect(m.View()).To(ContainSubstring("Error loading application"))
			Expect(m.View()).To(ContainSubstring("corrlab serve"))
			Expect(fetcher.Calls()).To(Equal([]string{"assets"}))

			m = pressRun(m, "r")
			Expect(fetcher.Calls()).To(Equal([]string{"assets"}), "keys other than quit are ignored")
		})

		It("shows a spinner until assets arrive", func() {
			Expect(m.View()).To(ContainSubstring("loading assets"))
		})
	})

	Context("once loaded", func() {
		BeforeEach(func() {
			m = run(m, m.Init())
			fetcher.calls = nil
		})

		It("refetches everything for a new range", func() {
			m = pressRun(m, "1")
			Expect(m.State().Range).To(Equal(market.Range1M))
			Expect(fetcher.Calls()).To(Equal([]string{
				"matrix 1M",
				"comparison SPY QQQ 1M",
				"insights 1M",
			}))
			Expect(m.State().Matrix.Range).To(Equal(market.Range1M))
		})

		It("does nothing when the range is unchanged", func() {
			_, cmd := press(m, "4")
			Expect(cmd).To(BeNil())
		})

		It("drops responses to superseded range selections", func() {
			m, first := press(m, "1")
			m, second := press(m, "2")

			firstMsgs := collect(first)
			secondMsgs := collect(second)

			for _, msg := range secondMsgs {
				next, _ := m.Update(msg)
				m = next.(Model)
			}
			for _, msg := range firstMsgs {
				next, _ := m.Update(msg)
				m = next.(Model)
			}

			Expect(m.State().Range).To(Equal(market.Range3M))
			Expect(m.State().Matrix.Range).To(Equal(market.Range3M))
		})

		It("keeps the panels on the latest range when an older comparison lands late", func() {
			m, first := press(m, "1")
			var held tea.Cmd
			for _, msg := range collect(first) {
				var next tea.Model
				next, held = m.Update(msg)
				m = next.(Model)
			}
			Expect(held).NotTo(BeNil())

			m = pressRun(m, "2")
			m = run(m, held)

			st := m.State()
			Expect(st.Range).To(Equal(market.Range3M))
			Expect(st.Comparison.Range).To(Equal(st.Range))
			Expect(st.Insights.Range).To(Equal(st.Range))
		})

		It("drops follow-ups of a superseded range when the new matrix fails", func() {
			m, first := press(m, "1")
			var held tea.Cmd
			for _, msg := range collect(first) {
				var next tea.Model
				next, held = m.Update(msg)
				m = next.(Model)
			}

			fetcher.matrixErr = errors.New("boom")
			m = pressRun(m, "2")
			m = run(m, held)

			st := m.State()
			Expect(st.Range).To(Equal(market.Range3M))
			Expect(st.Comparison.Range).To(Equal(market.Range1Y))
			Expect(st.Insights.Range).To(Equal(market.Range1Y))
			Expect(fetcher.Calls()).NotTo(ContainElement("insights 1M"))
			Expect(m.Loading(KindComparison)).To(BeFalse())
			Expect(m.Loading(KindInsights)).To(BeFalse())
		})

		It("keeps the last good matrix when a refresh fails", func() {
			before := m.State().Matrix
			fetcher.matrixErr = errors.New("boom")

			m = pressRun(m, "r")
			Expect(m.State().Matrix).To(BeIdenticalTo(before))
			Expect(fetcher.Calls()).To(Equal([]string{"matrix 1Y"}))
			Expect(m.Loading(KindMatrix)).To(BeFalse())
		})

		It("still loads insights when the comparison fails", func() {
			fetcher.cmpErr = errors.New("boom")
			before := m.State().Comparison

			m = pressRun(m, "r")
			Expect(m.State().Comparison).To(BeIdenticalTo(before))
			Expect(fetcher.Calls()).To(ContainElement("insights 1Y"))
		})

		It("moves the cursor and shows the hovered tooltip", func() {
			tip, ok := m.State().Tooltip()
			Expect(ok).To(BeTrue())
			Expect(tip.Pair).To(Equal("S&P 500 (SPY) vs Nasdaq 100 (QQQ)"))

			m = pressRun(m, "left")
			_, ok = m.State().Tooltip()
			Expect(ok).To(BeFalse(), "diagonal cells have no tooltip")
		})

		It("clamps the cursor to the asset cells", func() {
			for i := 0; i < 10; i++ {
				m = pressRun(m, "up")
				m = pressRun(m, "h")
			}
			Expect(m.State().Cursor).To(Equal(matrix.Position{Row: 1, Col: 1}))
			for i := 0; i < 10; i++ {
				m = pressRun(m, "j")
				m = pressRun(m, "right")
			}
			Expect(m.State().Cursor).To(Equal(matrix.Position{Row: 3, Col: 3}))
		})

		It("selects the hovered pair", func() {
			m = pressRun(m, "down")
			m = pressRun(m, "down")
			m = pressRun(m, "left")

			m = pressRun(m, "enter")
			Expect(m.State().AssetA).To(Equal("GLD"))
			Expect(m.State().AssetB).To(Equal("SPY"))
			Expect(fetcher.Calls()).To(Equal([]string{"comparison GLD SPY 1Y"}))
			Expect(m.State().Comparison.AssetA.ID).To(Equal("GLD"))
		})

		It("does not select from a diagonal cell", func() {
			m = pressRun(m, "left")
			_, cmd := press(m, "enter")
			Expect(cmd).To(BeNil())
		})

		It("cycles the pair with a and b", func() {
			m = pressRun(m, "a")
			Expect(m.State().AssetA).To(Equal("QQQ"))
			m = pressRun(m, "b")
			Expect(m.State().AssetB).To(Equal("GLD"))
			Expect(fetcher.Calls()).To(Equal([]string{
				"comparison QQQ QQQ 1Y",
				"comparison QQQ GLD 1Y",
			}))
		})

		It("toggles and persists the theme", func() {
			m = pressRun(m, "t")
			Expect(m.Theme().Name).To(Equal("light"))
			Expect(m.State().Dark).To(BeFalse())

			m = pressRun(m, "t")
			Expect(m.Theme().Name).To(Equal("dark"))
			Expect(saved).To(Equal([]string{"light", "dark"}))
		})

		It("switches the comparison panel to the return scatter", func() {
			m = pressRun(m, "s")
			Expect(m.Scatter()).To(BeTrue())
			Expect(m.View()).To(ContainSubstring("daily log returns, x SPY / y QQQ"))

			m = pressRun(m, "s")
			Expect(m.Scatter()).To(BeFalse())
			Expect(m.View()).To(ContainSubstring("cumulative return, base 100"))
		})

		It("quits on q", func() {
			_, cmd := press(m, "q")
			Expect(cmd).NotTo(BeNil())
			Expect(cmd()).To(BeAssignableToTypeOf(tea.QuitMsg{}))
		})

		It("tracks the window size", func() {
			next, _ := m.Update(tea.WindowSizeMsg{Width: 160, Height: 50})
			view := next.(Model).View()
			Expect(strings.Count(view, "\n")).To(BeNumerically(">", 20))
		})
	})
})
