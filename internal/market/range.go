package market

import (
	"fmt"
	"time"
)

// Range is a lookback window label.
type Range string

const (
	Range1M  Range = "1M"
	Range3M  Range = "3M"
	Range6M  Range = "6M"
	Range1Y  Range = "1Y"
	Range3Y  Range = "3Y"
	Range5Y  Range = "5Y"
	Range10Y Range = "10Y"
	RangeMax Range = "MAX"
	RangeYTD Range = "YTD"

	DefaultRange = Range1Y
)

// Ranges lists every valid range in display order.
var Ranges = []Range{Range1M, Range3M, Range6M, Range1Y, Range3Y, Range5Y, Range10Y, RangeMax, RangeYTD}

var rangeDays = map[Range]int{
	Range1M:  30,
	Range3M:  90,
	Range6M:  180,
	Range1Y:  365,
	Range3Y:  365 * 3,
	Range5Y:  365 * 5,
	Range10Y: 365 * 10,
}

// ParseRange validates s. The empty string yields DefaultRange.
func ParseRange(s string) (Range, error) {
	if s == "" {
		return DefaultRange, nil
	}
	r := Range(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	return r, nil
}

func (r Range) Valid() bool {
	for _, v := range Ranges {
		if v == r {
			return true
		}
	}
	return false
}

// Start returns the first date included by r relative to ref. bounded is
// false for MAX, which keeps everything.
func (r Range) Start(ref time.Time) (start time.Time, bounded bool) {
	switch r {
	case RangeMax:
		return time.Time{}, false
	case RangeYTD:
		return time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, ref.Location()), true
	}
	days, ok := rangeDays[r]
	if !ok {
		days = rangeDays[DefaultRange]
	}
	return ref.AddDate(0, 0, -days), true
}
