package dashboard

import (
	"log/slog"
	"strconv"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/corrlab/internal/market"
	"github.com/san-kum/corrlab/internal/viz"
)

type Options struct {
	Fetcher Fetcher
	Range   market.Range
	AssetA  string
	AssetB  string
	Theme   viz.Theme
	// SaveTheme persists the theme name after a toggle. Optional.
	SaveTheme func(name string) error
	Logger    *slog.Logger
	// ServerHint is shown when the initial load fails.
	ServerHint string
}

type Model struct {
	state     *State
	fetcher   Fetcher
	theme     viz.Theme
	styles    viz.Styles
	spinner   spinner.Model
	loading   [numKinds]bool
	scatter   bool
	ready     bool
	initErr   error
	saveTheme func(string) error
	logger    *slog.Logger
	hint      string
	width     int
	height    int
}

func New(opts Options) Model {
	if opts.Theme.Name == "" {
		opts.Theme = viz.ThemeDark
	}
	if !opts.Range.Valid() {
		opts.Range = market.DefaultRange
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ServerHint == "" {
		opts.ServerHint = "corrlab serve"
	}
	styles := viz.NewStyles(opts.Theme)
	return Model{
		state:     NewState(opts.Range, opts.AssetA, opts.AssetB, opts.Theme.IsDark()),
		fetcher:   opts.Fetcher,
		theme:     opts.Theme,
		styles:    styles,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.SeriesA)),
		saveTheme: opts.SaveTheme,
		logger:    opts.Logger,
		hint:      opts.ServerHint,
		width:     100,
		height:    40,
	}
}

// State exposes the view state, mainly for tests.
func (m Model) State() *State { return m.state }

func (m Model) Loading(k Kind) bool { return m.loading[k] }

func (m Model) Ready() bool { return m.ready }

func (m Model) InitErr() error { return m.initErr }

func (m Model) Theme() viz.Theme { return m.theme }

// Scatter reports whether the comparison panel shows the return scatter
// instead of the performance lines.
func (m Model) Scatter() bool { return m.scatter }

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, fetchAssets(m.fetcher))
}

func (m Model) busy() bool {
	if !m.ready && m.initErr == nil {
		return true
	}
	for _, l := range m.loading {
		if l {
			return true
		}
	}
	return false
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case assetsMsg:
		return m.onAssets(msg)
	case matrixMsg:
		return m.onMatrix(msg)
	case comparisonMsg:
		return m.onComparison(msg)
	case insightsMsg:
		return m.onInsights(msg)
	case themeSavedMsg:
		if msg.err != nil {
			m.logger.Warn("saving theme failed", "error", msg.err)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) onAssets(msg assetsMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Error("initializing dashboard failed", "error", msg.err)
		m.initErr = msg.err
		return m, nil
	}
	m.state.SetAssets(msg.assets)
	m.ready = true
	cmd := m.refresh()
	return m, cmd
}

func (m Model) onMatrix(msg matrixMsg) (tea.Model, tea.Cmd) {
	if !m.state.Current(KindMatrix, msg.gen) {
		m.logger.Debug("dropping stale response", "kind", "matrix", "generation", msg.gen)
		return m, nil
	}
	m.loading[KindMatrix] = false
	if msg.err != nil {
		m.logger.Error("fetching correlation matrix failed", "range", m.state.Range, "error", msg.err)
		return m, nil
	}
	m.state.ApplyMatrix(msg.gen, msg.m)
	cmd := m.loadComparison(true)
	return m, cmd
}

func (m Model) onComparison(msg comparisonMsg) (tea.Model, tea.Cmd) {
	if !m.state.Current(KindComparison, msg.gen) {
		m.logger.Debug("dropping stale response", "kind", "comparison", "generation", msg.gen)
		return m, nil
	}
	m.loading[KindComparison] = false
	if msg.err != nil {
		m.logger.Error("fetching comparison failed",
			"asset_a", m.state.AssetA, "asset_b", m.state.AssetB, "error", msg.err)
	} else {
		m.state.ApplyComparison(msg.gen, msg.cmp)
	}
	if msg.chain {
		cmd := m.loadInsights()
		return m, cmd
	}
	return m, nil
}

func (m Model) onInsights(msg insightsMsg) (tea.Model, tea.Cmd) {
	if !m.state.Current(KindInsights, msg.gen) {
		m.logger.Debug("dropping stale response", "kind", "insights", "generation", msg.gen)
		return m, nil
	}
	m.loading[KindInsights] = false
	if msg.err != nil {
		m.logger.Error("fetching insights failed", "range", m.state.Range, "error", msg.err)
		return m, nil
	}
	m.state.ApplyInsights(msg.gen, msg.ins)
	return m, nil
}

// refresh refetches the matrix; comparison and insights follow once it
// arrives.
func (m *Model) refresh() tea.Cmd {
	gen := m.state.Issue(KindMatrix)
	m.loading[KindMatrix] = true
	// Follow-ups in flight belong to the old range; the new matrix re-issues them.
	m.state.Issue(KindComparison)
	m.state.Issue(KindInsights)
	m.loading[KindComparison] = false
	m.loading[KindInsights] = false
	return tea.Batch(fetchMatrix(m.fetcher, gen, m.state.Range), m.spinner.Tick)
}

func (m *Model) loadComparison(chain bool) tea.Cmd {
	gen := m.state.Issue(KindComparison)
	m.loading[KindComparison] = true
	st := m.state
	return tea.Batch(fetchComparison(m.fetcher, gen, st.AssetA, st.AssetB, st.Range, chain), m.spinner.Tick)
}

func (m *Model) loadInsights() tea.Cmd {
	gen := m.state.Issue(KindInsights)
	m.loading[KindInsights] = true
	return fetchInsights(m.fetcher, gen, m.state.Range)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "q" || key == "ctrl+c" {
		return m, tea.Quit
	}
	if !m.ready {
		return m, nil
	}

	switch key {
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		n, _ := strconv.Atoi(key)
		if n > len(market.Ranges) {
			return m, nil
		}
		if m.state.SetRange(market.Ranges[n-1]) {
			cmd := m.refresh()
			return m, cmd
		}
	case "up", "k":
		m.state.MoveCursor(-1, 0)
	case "down", "j":
		m.state.MoveCursor(1, 0)
	case "left", "h":
		m.state.MoveCursor(0, -1)
	case "right", "l":
		m.state.MoveCursor(0, 1)
	case "enter", " ":
		if m.state.SelectHovered() {
			cmd := m.loadComparison(false)
			return m, cmd
		}
	case "a":
		m.state.CycleAsset(0, 1)
		cmd := m.loadComparison(false)
		return m, cmd
	case "A":
		m.state.CycleAsset(0, -1)
		cmd := m.loadComparison(false)
		return m, cmd
	case "b":
		m.state.CycleAsset(1, 1)
		cmd := m.loadComparison(false)
		return m, cmd
	case "B":
		m.state.CycleAsset(1, -1)
		cmd := m.loadComparison(false)
		return m, cmd
	case "s":
		m.scatter = !m.scatter
	case "t":
		cmd := m.toggleTheme()
		return m, cmd
	case "r":
		cmd := m.refresh()
		return m, cmd
	}
	return m, nil
}

func (m *Model) toggleTheme() tea.Cmd {
	m.theme = m.theme.Toggle()
	m.styles = viz.NewStyles(m.theme)
	m.state.Dark = m.theme.IsDark()
	if m.saveTheme == nil {
		return nil
	}
	save, name := m.saveTheme, m.theme.Name
	return func() tea.Msg {
		return themeSavedMsg{err: save(name)}
	}
}
