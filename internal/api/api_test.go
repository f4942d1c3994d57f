package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/corrlab/internal/market"
	"github.com/san-kum/corrlab/internal/service"
	"github.com/san-kum/corrlab/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testAssets = []market.Asset{
	{ID: "SPY", Name: "S&P 500 (SPY)"},
	{ID: "QQQ", Name: "Nasdaq 100 (QQQ)"},
	{ID: "GLD", Name: "Gold (GLD)"},
}

func prices(sign float64, n int, last time.Time) []market.PricePoint {
	start := last.AddDate(0, 0, -n)
	out := []market.PricePoint{{Date: start, Close: 100}}
	p := 100.0
	for i := 0; i < n; i++ {
		p *= math.Exp(sign * 0.01 * math.Sin(float64(i)*1.3))
		out = append(out, market.PricePoint{Date: start.AddDate(0, 0, i+1), Close: p})
	}
	return out
}

type staticHealth string

func (h staticHealth) Ping(context.Context) string { return string(h) }

func newTestServer(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	store := storage.NewCSV(t.TempDir())
	last := time.Date(2024, time.June, 28, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save("SPY", prices(1, 60, last)))
	require.NoError(t, store.Save("QQQ", prices(1, 60, last)))
	require.NoError(t, store.Save("GLD", prices(-1, 60, last)))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(store, testAssets, service.WithLogger(logger))
	opts = append([]Option{WithLogger(logger)}, opts...)
	return NewServer(svc, opts...).Handler()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestAssets(t *testing.T) {
	w := get(t, newTestServer(t), "/api/assets")
	require.Equal(t, http.StatusOK, w.Code)

	var assets []market.Asset
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &assets))
	assert.Equal(t, testAssets, assets)
}

func TestCorrelationMatrix(t *testing.T) {
	w := get(t, newTestServer(t), "/api/correlation-matrix?range=1Y")
	require.Equal(t, http.StatusOK, w.Code)

	var m market.CorrelationMatrix
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, []string{"SPY", "QQQ", "GLD"}, m.Assets)
	assert.Equal(t, "2024-06-28", m.ReferenceDate)
	assert.Equal(t, market.Range1Y, m.Range)
	assert.Equal(t, "Gold (GLD)", m.AssetNames["GLD"])

	spyQQQ, ok := m.Cell(0, 1)
	require.True(t, ok)
	assert.InDelta(t, 1.0, spyQQQ.Correlation, 1e-9)
	assert.Equal(t, 60, spyQQQ.SampleCount)

	spyGLD, _ := m.Cell(0, 2)
	assert.InDelta(t, -1.0, spyGLD.Correlation, 1e-9)
}

func TestCorrelationMatrixDefaultRange(t *testing.T) {
	w := get(t, newTestServer(t), "/api/correlation-matrix")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"range":"1Y"`)
}

func TestInvalidRange(t *testing.T) {
	h := newTestServer(t)
	for _, target := range []string{
		"/api/correlation-matrix?range=2W",
		"/api/insights?range=2W",
		"/api/comparison?asset_a=SPY&asset_b=QQQ&range=2W",
	} {
		w := get(t, h, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.Contains(t, decodeError(t, w), "invalid range", target)
	}
}

func TestComparison(t *testing.T) {
	w := get(t, newTestServer(t), "/api/comparison?asset_a=SPY&asset_b=GLD&range=1Y")
	require.Equal(t, http.StatusOK, w.Code)

	var cmp market.Comparison
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cmp))
	assert.Equal(t, "SPY", cmp.AssetA.ID)
	assert.Equal(t, "Gold (GLD)", cmp.AssetB.Name)
	assert.Equal(t, 60, cmp.SampleCount)
	assert.Len(t, cmp.AssetA.Timeseries, 60)
	assert.InDelta(t, -1.0, cmp.Correlation, 1e-9)
	assert.Greater(t, cmp.VolatilityA, 0.0)
}

func TestComparisonUnknownAsset(t *testing.T) {
	w := get(t, newTestServer(t), "/api/comparison?asset_a=SPY&asset_b=XYZ")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "asset XYZ not found", decodeError(t, w))
}

func TestComparisonMissingParams(t *testing.T) {
	w := get(t, newTestServer(t), "/api/comparison?asset_a=SPY")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w), "asset_a and asset_b")
}

func TestInsights(t *testing.T) {
	w := get(t, newTestServer(t), "/api/insights?range=6M")
	require.Equal(t, http.StatusOK, w.Code)

	var ins market.Insights
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ins))
	assert.Equal(t, market.Range6M, ins.Range)
	require.Len(t, ins.Insights, 3)
	assert.Equal(t, market.InsightHighestPositive, ins.Insights[0].Type)
	assert.Equal(t, market.InsightStrongestNegative, ins.Insights[1].Type)
	assert.Equal(t, market.InsightNearZero, ins.Insights[2].Type)
}

func TestHealth(t *testing.T) {
	w := get(t, newTestServer(t), "/api/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","cache":"disabled"}`, w.Body.String())

	w = get(t, newTestServer(t, WithCacheHealth(staticHealth("up"))), "/api/health")
	assert.JSONEq(t, `{"status":"ok","cache":"up"}`, w.Body.String())
}

func TestRequestIDAndCORS(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/assets", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/api/assets", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestComparisonChart(t *testing.T) {
	w := get(t, newTestServer(t), "/chart/comparison.png?asset_a=SPY&asset_b=GLD&range=1Y&theme=light")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "\x89PNG"))
}

func TestComparisonChartUnknownAsset(t *testing.T) {
	w := get(t, newTestServer(t), "/chart/comparison.png?asset_a=SPY&asset_b=NOPE")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestDashboardPage(t *testing.T) {
	w := get(t, newTestServer(t), "/?range=1Y")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	body := w.Body.String()
	assert.Equal(t, 3, strings.Count(body, ">1.00</td>"), "diagonal cells")
	assert.Contains(t, body, "SPY vs QQQ")
	assert.Contains(t, body, "/chart/comparison.png?")
	assert.Contains(t, body, "reference date 2024-06-28")
	assert.Contains(t, body, "Highest positive correlation")
	assert.Contains(t, body, "S&amp;P 500 (SPY) vs Gold (GLD)", "tooltip title")
	assert.Contains(t, body, "background-color: rgba(")
}

func TestDashboardSelection(t *testing.T) {
	w := get(t, newTestServer(t), "/?range=1Y&asset_a=QQQ&asset_b=GLD&theme=light")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "QQQ vs GLD")
	assert.Contains(t, body, `class="value selected"`)
	assert.Contains(t, body, "--bg: #f8fafc")
}

func TestDashboardInvalidRange(t *testing.T) {
	w := get(t, newTestServer(t), "/?range=2W")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid range")
}

func TestDashboardUnknownPair(t *testing.T) {
	w := get(t, newTestServer(t), "/?asset_a=SPY&asset_b=NOPE")
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "asset NOPE not found")
	assert.Contains(t, body, ">1.00</td>", "matrix still renders")
}
