package viz

import (
	"fmt"
	"math"

	"github.com/san-kum/corrlab/internal/market"
)

// Percent formats an annualized volatility fraction, e.g. 0.1834 -> "18.3%".
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// SignedPercent formats a return already expressed in percent with an
// explicit sign, e.g. 4.26 -> "+4.3%".
func SignedPercent(pct float64) string {
	if pct >= 0 || math.Abs(pct) < 0.05 {
		return fmt.Sprintf("+%.1f%%", math.Abs(pct))
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// Tone classifies an insight for coloring: "positive", "negative" or
// "neutral".
func Tone(t market.InsightType) string {
	switch t {
	case market.InsightHighestPositive:
		return "positive"
	case market.InsightStrongestNegative:
		return "negative"
	}
	return "neutral"
}

func InsightIcon(t market.InsightType) string {
	switch t {
	case market.InsightHighestPositive:
		return "📈"
	case market.InsightStrongestNegative:
		return "📉"
	case market.InsightNearZero:
		return "⚖️"
	}
	return "📊"
}
