// Package colormap maps correlation coefficients to display colors.
//
// A coefficient v in [-1, 1] is rendered by interpolating each RGB channel
// from a neutral color toward the positive color (v >= 0) or the negative
// color (v < 0) by t = |v|. Alpha grows linearly from 0.3 at v = 0 to 1.0 at
// |v| = 1. Text drawn on top switches to white once |v| > 0.5.
//
// No clamping is performed: callers pass values in [-1, 1].
package colormap

import (
	"fmt"
	"math"
	"strconv"
)

const (
	// MinAlpha is the fill alpha at v = 0.
	MinAlpha = 0.3
	// AlphaSpan is added to MinAlpha proportionally to |v|.
	AlphaSpan = 0.7
	// ContrastThreshold is the |v| above which the high-contrast text color is used.
	ContrastThreshold = 0.5
)

type RGB struct {
	R, G, B int
}

type RGBA struct {
	R, G, B int
	A       float64
}

var (
	Positive = RGB{46, 204, 113} // #2ecc71
	Negative = RGB{231, 76, 60}  // #e74c3c
	Neutral  = RGB{30, 30, 35}

	HighContrastText = RGBA{255, 255, 255, 1}
	DefaultText      = RGBA{230, 237, 243, 0.9}
)

// Palette holds the three anchor colors and the two text colors.
type Palette struct {
	Positive     RGB
	Negative     RGB
	Neutral      RGB
	Text         RGBA
	HighContrast RGBA
}

// DefaultPalette is the green/red palette used by every view.
var DefaultPalette = Palette{
	Positive:     Positive,
	Negative:     Negative,
	Neutral:      Neutral,
	Text:         DefaultText,
	HighContrast: HighContrastText,
}

// Map returns the fill and text colors for v using DefaultPalette.
func Map(v float64) (fill, text RGBA) {
	return DefaultPalette.Map(v)
}

// Fill returns the background color for v using DefaultPalette.
func Fill(v float64) RGBA { return DefaultPalette.Fill(v) }

// Text returns the text color for v using DefaultPalette.
func Text(v float64) RGBA { return DefaultPalette.TextColor(v) }

// Alpha returns 0.3 + 0.7|v|.
func Alpha(v float64) float64 {
	return MinAlpha + AlphaSpan*math.Abs(v)
}

func (p Palette) Map(v float64) (fill, text RGBA) {
	return p.Fill(v), p.TextColor(v)
}

func (p Palette) Fill(v float64) RGBA {
	target := p.Positive
	if v < 0 {
		target = p.Negative
	}
	t := math.Abs(v)
	return RGBA{
		R: lerp(p.Neutral.R, target.R, t),
		G: lerp(p.Neutral.G, target.G, t),
		B: lerp(p.Neutral.B, target.B, t),
		A: Alpha(v),
	}
}

func (p Palette) TextColor(v float64) RGBA {
	if math.Abs(v) > ContrastThreshold {
		return p.HighContrast
	}
	return p.Text
}

// lerp rounds half up, so x.5 goes toward +Inf.
func lerp(from, to int, t float64) int {
	return int(math.Floor(float64(from) + float64(to-from)*t + 0.5))
}

// CSS formats c as rgba(r, g, b, a).
func (c RGBA) CSS() string {
	a := math.Round(c.A*1000) / 1000
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(a, 'f', -1, 64))
}

// RGB drops the alpha channel.
func (c RGBA) RGB() RGB {
	return RGB{c.R, c.G, c.B}
}

// Over composites c onto an opaque background. Terminals have no alpha
// channel, so this is how fills are shown there.
func (c RGBA) Over(bg RGB) RGB {
	mix := func(fg, b int) int {
		return clampByte(int(math.Round(float64(fg)*c.A + float64(b)*(1-c.A))))
	}
	return RGB{mix(c.R, bg.R), mix(c.G, bg.G), mix(c.B, bg.B)}
}

func (c RGB) Hex() string {
	return "#" + hexByte(c.R) + hexByte(c.G) + hexByte(c.B)
}

// ParseHex parses #rrggbb. ok is false for anything else.
func ParseHex(s string) (c RGB, ok bool) {
	if len(s) != 7 || s[0] != '#' {
		return RGB{}, false
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}, true
}

func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

func hexByte(v int) string {
	const hex = "0123456789abcdef"
	v = clampByte(v)
	return string(hex[v/16]) + string(hex[v%16])
}
