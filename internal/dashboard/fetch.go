package dashboard

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/corrlab/internal/market"
)

// Fetcher is the subset of the API client the dashboard uses.
type Fetcher interface {
	Assets(ctx context.Context) ([]market.Asset, error)
	Matrix(ctx context.Context, r market.Range) (*market.CorrelationMatrix, error)
	Comparison(ctx context.Context, a, b string, r market.Range) (*market.Comparison, error)
	Insights(ctx context.Context, r market.Range) (*market.Insights, error)
}

type assetsMsg struct {
	assets []market.Asset
	err    error
}

type matrixMsg struct {
	gen uint64
	m   *market.CorrelationMatrix
	err error
}

// comparisonMsg.chain is set when insights should be fetched next, as part of
// a full refresh.
type comparisonMsg struct {
	gen   uint64
	cmp   *market.Comparison
	chain bool
	err   error
}

type insightsMsg struct {
	gen uint64
	ins *market.Insights
	err error
}

type themeSavedMsg struct {
	err error
}

func fetchAssets(f Fetcher) tea.Cmd {
	return func() tea.Msg {
		assets, err := f.Assets(context.Background())
		return assetsMsg{assets: assets, err: err}
	}
}

func fetchMatrix(f Fetcher, gen uint64, r market.Range) tea.Cmd {
	return func() tea.Msg {
		m, err := f.Matrix(context.Background(), r)
		return matrixMsg{gen: gen, m: m, err: err}
	}
}

func fetchComparison(f Fetcher, gen uint64, a, b string, r market.Range, chain bool) tea.Cmd {
	return func() tea.Msg {
		cmp, err := f.Comparison(context.Background(), a, b, r)
		return comparisonMsg{gen: gen, cmp: cmp, chain: chain, err: err}
	}
}

func fetchInsights(f Fetcher, gen uint64, r market.Range) tea.Cmd {
	return func() tea.Msg {
		ins, err := f.Insights(context.Background(), r)
		return insightsMsg{gen: gen, ins: ins, err: err}
	}
}
