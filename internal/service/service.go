// Package service computes the correlation payloads served by the API:
// matrices, pairwise comparisons and insights.
package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/corrlab/internal/analysis"
	"github.com/san-kum/corrlab/internal/market"
	"github.com/san-kum/corrlab/internal/storage"
)

// MatrixCache stores computed matrices by key. A miss is (nil, false, nil).
type MatrixCache interface {
	GetMatrix(ctx context.Context, key string) (*market.CorrelationMatrix, bool, error)
	SetMatrix(ctx context.Context, key string, m *market.CorrelationMatrix) error
}

type Service struct {
	source storage.PriceSource
	assets []market.Asset
	// universe fingerprints the asset ids so caches shared between
	// deployments never mix matrices of different universes.
	universe string
	cache    MatrixCache
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithCache(c MatrixCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock sets the time used as the reference date when no asset has data.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(source storage.PriceSource, assets []market.Asset, opts ...Option) *Service {
	if len(assets) == 0 {
		assets = market.DefaultAssets
	}
	s := &Service{
		source:   source,
		assets:   assets,
		universe: universeHash(assets),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Assets() []market.Asset {
	out := make([]market.Asset, len(s.assets))
	copy(out, s.assets)
	return out
}

func (s *Service) Asset(id string) (market.Asset, error) {
	for _, a := range s.assets {
		if a.ID == id {
			return a, nil
		}
	}
	return market.Asset{}, market.NotFound(id)
}

func (s *Service) names() map[string]string {
	names := make(map[string]string, len(s.assets))
	for _, a := range s.assets {
		names[a.ID] = a.Name
	}
	return names
}

// snapshot holds every asset's prices loaded in one pass. Per-asset load
// failures are kept in errs rather than failing the whole snapshot.
type snapshot struct {
	prices map[string][]market.PricePoint
	errs   map[string]error
	ref    time.Time
}

func (s *Service) load(ctx context.Context) (*snapshot, error) {
	prices := make([][]market.PricePoint, len(s.assets))
	errs := make([]error, len(s.assets))

	g, gctx := errgroup.WithContext(ctx)
	for i, a := range s.assets {
		g.Go(func() error {
			p, err := s.source.Prices(gctx, a.ID)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				errs[i] = err
				return nil
			}
			prices[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &snapshot{
		prices: make(map[string][]market.PricePoint, len(s.assets)),
		errs:   make(map[string]error),
	}
	latest := make([]time.Time, 0, len(s.assets))
	for i, a := range s.assets {
		if errs[i] != nil {
			s.logger.Debug("asset prices unavailable", "asset", a.ID, "error", errs[i])
			snap.errs[a.ID] = errs[i]
			continue
		}
		snap.prices[a.ID] = prices[i]
		if t, ok := analysis.Latest(prices[i]); ok {
			latest = append(latest, t)
		}
	}
	snap.ref = analysis.ReferenceDate(latest, s.now())
	return snap, nil
}

func (snap *snapshot) returns(id string, r market.Range) ([]analysis.Return, error) {
	if err, ok := snap.errs[id]; ok {
		return nil, err
	}
	rs := analysis.LogReturns(snap.prices[id])
	return analysis.FilterRange(rs, r, snap.ref), nil
}

func universeHash(assets []market.Asset) string {
	h := fnv.New64a()
	for _, a := range assets {
		h.Write([]byte(a.ID))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

func (s *Service) matrixKey(r market.Range) string {
	return "corrlab:matrix:" + s.universe + ":" + string(r)
}

// Matrix computes the correlation of every asset pair over r. Cells with
// fewer than two common dates have correlation 0 and sample count 0.
func (s *Service) Matrix(ctx context.Context, r market.Range) (*market.CorrelationMatrix, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %q", market.ErrInvalidRange, r)
	}

	key := s.matrixKey(r)
	if s.cache != nil {
		m, ok, err := s.cache.GetMatrix(ctx, key)
		if err != nil {
			s.logger.Warn("matrix cache read failed", "key", key, "error", err)
		} else if ok {
			return m, nil
		}
	}

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	n := len(s.assets)
	ids := make([]string, n)
	series := make([][]analysis.Return, n)
	for i, a := range s.assets {
		ids[i] = a.ID
		if series[i], err = snap.returns(a.ID, r); err != nil {
			return nil, err
		}
	}

	cells := make([][]market.CorrelationCell, n)
	for i := range cells {
		cells[i] = make([]market.CorrelationCell, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			corr, count := pairCorrelation(series[i], series[j])
			cells[i][j] = market.CorrelationCell{AssetA: ids[i], AssetB: ids[j], Correlation: corr, SampleCount: count}
			cells[j][i] = market.CorrelationCell{AssetA: ids[j], AssetB: ids[i], Correlation: corr, SampleCount: count}
		}
	}

	m := &market.CorrelationMatrix{
		Assets:        ids,
		AssetNames:    s.names(),
		Cells:         cells,
		ReferenceDate: snap.ref.Format(market.DateLayout),
		Range:         r,
	}

	if s.cache != nil {
		if err := s.cache.SetMatrix(ctx, key, m); err != nil {
			s.logger.Warn("matrix cache write failed", "key", key, "error", err)
		}
	}
	return m, nil
}

func pairCorrelation(a, b []analysis.Return) (float64, int) {
	dates, xa, xb := analysis.Align(a, b)
	if len(dates) < 2 {
		return 0, 0
	}
	return analysis.Round(analysis.Pearson(xa, xb), 4), len(dates)
}

// Comparison aligns assets a and b on their common return dates within r and
// compounds each from a base of 100.
func (s *Service) Comparison(ctx context.Context, a, b string, r market.Range) (*market.Comparison, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %q", market.ErrInvalidRange, r)
	}
	assetA, err := s.Asset(a)
	if err != nil {
		return nil, err
	}
	assetB, err := s.Asset(b)
	if err != nil {
		return nil, err
	}

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	ra, err := snap.returns(a, r)
	if err != nil {
		return nil, err
	}
	rb, err := snap.returns(b, r)
	if err != nil {
		return nil, err
	}

	out := &market.Comparison{
		AssetA:        market.AssetSeries{ID: assetA.ID, Name: assetA.Name, Timeseries: []market.SeriesPoint{}},
		AssetB:        market.AssetSeries{ID: assetB.ID, Name: assetB.Name, Timeseries: []market.SeriesPoint{}},
		CommonDates:   []string{},
		ReferenceDate: snap.ref.Format(market.DateLayout),
		Range:         r,
	}

	dates, xa, xb := analysis.Align(ra, rb)
	if len(dates) < 2 {
		return out, nil
	}

	labels := make([]string, len(dates))
	for i, d := range dates {
		labels[i] = d.Format(market.DateLayout)
	}
	out.CommonDates = labels
	out.SampleCount = len(dates)
	out.AssetA.Timeseries = series(labels, analysis.Cumulative(xa, 100))
	out.AssetB.Timeseries = series(labels, analysis.Cumulative(xb, 100))
	out.Correlation = analysis.Round(analysis.Pearson(xa, xb), 4)
	out.VolatilityA = analysis.Round(analysis.Volatility(xa), 4)
	out.VolatilityB = analysis.Round(analysis.Volatility(xb), 4)
	return out, nil
}

func series(dates []string, values []float64) []market.SeriesPoint {
	out := make([]market.SeriesPoint, len(dates))
	for i := range dates {
		out[i] = market.SeriesPoint{Date: dates[i], Value: analysis.Round(values[i], 2)}
	}
	return out
}

// IsNotFound reports whether err means an unknown asset.
func IsNotFound(err error) bool {
	return errors.Is(err, market.ErrAssetNotFound)
}
