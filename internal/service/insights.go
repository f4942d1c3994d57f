package service

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/corrlab/internal/market"
)

const maxInsights = 3

var insightTitles = map[market.InsightType]string{
	market.InsightHighestPositive:   "Highest positive correlation",
	market.InsightStrongestNegative: "Strongest negative correlation",
	market.InsightNearZero:          "Pair closest to zero correlation",
}

type pair struct {
	a, b  string
	corr  float64
	count int
}

// Insights summarizes the upper triangle of the matrix for r.
func (s *Service) Insights(ctx context.Context, r market.Range) (*market.Insights, error) {
	m, err := s.Matrix(ctx, r)
	if err != nil {
		return nil, err
	}
	return &market.Insights{
		Insights:      BuildInsights(m),
		Range:         r,
		ReferenceDate: m.ReferenceDate,
	}, nil
}

// BuildInsights picks the highest positive pair (if any is > 0), the most
// negative pair (if any is < 0) and the pair closest to zero. Ties keep the
// first pair in row-major order.
func BuildInsights(m *market.CorrelationMatrix) []market.Insight {
	pairs := make([]pair, 0)
	for i := range m.Assets {
		for j := i + 1; j < len(m.Assets); j++ {
			c, ok := m.Cell(i, j)
			if !ok {
				continue
			}
			pairs = append(pairs, pair{a: m.Assets[i], b: m.Assets[j], corr: c.Correlation, count: c.SampleCount})
		}
	}
	if len(pairs) == 0 {
		return []market.Insight{}
	}

	maxPos, minNeg, nearZero := pairs[0], pairs[0], pairs[0]
	for _, p := range pairs[1:] {
		if p.corr > maxPos.corr {
			maxPos = p
		}
		if p.corr < minNeg.corr {
			minNeg = p
		}
		if math.Abs(p.corr) < math.Abs(nearZero.corr) {
			nearZero = p
		}
	}

	out := make([]market.Insight, 0, maxInsights)
	if maxPos.corr > 0 {
		out = append(out, newInsight(market.InsightHighestPositive, maxPos))
	}
	if minNeg.corr < 0 {
		out = append(out, newInsight(market.InsightStrongestNegative, minNeg))
	}
	out = append(out, newInsight(market.InsightNearZero, nearZero))

	if len(out) > maxInsights {
		out = out[:maxInsights]
	}
	return out
}

func newInsight(t market.InsightType, p pair) market.Insight {
	return market.Insight{
		Type:        t,
		Title:       insightTitles[t],
		Text:        fmt.Sprintf("%s–%s (%.3f, n=%d)", p.a, p.b, p.corr, p.count),
		Correlation: p.corr,
		SampleCount: p.count,
	}
}
