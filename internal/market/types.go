package market

import "time"

// DateLayout is the wire format for all dates.
const DateLayout = "2006-01-02"

type Asset struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// DefaultAssets is the universe served when no asset list is configured.
var DefaultAssets = []Asset{
	{ID: "SPY", Name: "S&P 500 (SPY)"},
	{ID: "QQQ", Name: "Nasdaq 100 (QQQ)"},
	{ID: "GLD", Name: "Gold (GLD)"},
	{ID: "BTCUSD", Name: "Bitcoin (BTC-USD)"},
	{ID: "TLT", Name: "US 20Y+ Treasury (TLT)"},
	{ID: "DXY", Name: "US Dollar Index (DXY)"},
}

type PricePoint struct {
	Date  time.Time
	Close float64
}

// CorrelationCell is one entry of a correlation matrix.
type CorrelationCell struct {
	AssetA      string  `json:"asset_a"`
	AssetB      string  `json:"asset_b"`
	Correlation float64 `json:"correlation"`
	SampleCount int     `json:"sample_count"`
}

// CorrelationMatrix is a square matrix of cells indexed in Assets order.
// Cells[i][j] relates Assets[i] to Assets[j]. Diagonal cells are present in
// the payload but are treated as 1.0 by every consumer.
type CorrelationMatrix struct {
	Assets        []string            `json:"assets"`
	AssetNames    map[string]string   `json:"asset_names"`
	Cells         [][]CorrelationCell `json:"matrix"`
	ReferenceDate string              `json:"reference_date"`
	Range         Range               `json:"range"`
}

// Size returns the number of assets.
func (m *CorrelationMatrix) Size() int {
	return len(m.Assets)
}

// Name returns the display name for id, falling back to the id itself.
func (m *CorrelationMatrix) Name(id string) string {
	if n, ok := m.AssetNames[id]; ok && n != "" {
		return n
	}
	return id
}

// Cell returns the cell at (i, j) and whether it exists.
func (m *CorrelationMatrix) Cell(i, j int) (CorrelationCell, bool) {
	if i < 0 || i >= len(m.Cells) || j < 0 || j >= len(m.Cells[i]) {
		return CorrelationCell{}, false
	}
	return m.Cells[i][j], true
}

// Index returns the position of id in Assets, or -1.
func (m *CorrelationMatrix) Index(id string) int {
	for i, a := range m.Assets {
		if a == id {
			return i
		}
	}
	return -1
}

type SeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type AssetSeries struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Timeseries []SeriesPoint `json:"timeseries"`
}

// FinalReturn is the cumulative return in percent implied by the last point
// of a base-100 series. ok is false for an empty series.
func (s AssetSeries) FinalReturn() (pct float64, ok bool) {
	if len(s.Timeseries) == 0 {
		return 0, false
	}
	last := s.Timeseries[len(s.Timeseries)-1].Value
	return (last - 100) / 100 * 100, true
}

// Comparison holds two base-100 cumulative series aligned on common dates.
type Comparison struct {
	AssetA        AssetSeries `json:"asset_a"`
	AssetB        AssetSeries `json:"asset_b"`
	CommonDates   []string    `json:"common_dates"`
	SampleCount   int         `json:"sample_count"`
	Correlation   float64     `json:"correlation"`
	ReferenceDate string      `json:"reference_date"`
	Range         Range       `json:"range"`
	VolatilityA   float64     `json:"volatility_a"`
	VolatilityB   float64     `json:"volatility_b"`
}

type InsightType string

const (
	InsightHighestPositive   InsightType = "highest_positive"
	InsightStrongestNegative InsightType = "strongest_negative"
	InsightNearZero          InsightType = "near_zero"
)

type Insight struct {
	Type        InsightType `json:"type"`
	Title       string      `json:"title"`
	Text        string      `json:"text"`
	Correlation float64     `json:"correlation"`
	SampleCount int         `json:"sample_count"`
}

type Insights struct {
	Insights      []Insight `json:"insights"`
	Range         Range     `json:"range"`
	ReferenceDate string    `json:"reference_date,omitempty"`
}
