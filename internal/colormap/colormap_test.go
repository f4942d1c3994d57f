package colormap

import (
	"math"
	"testing"
)

func TestAlphaLinearAndMonotonic(t *testing.T) {
	prev := -1.0
	for i := 0; i <= 100; i++ {
		mag := float64(i) / 100
		for _, v := range []float64{mag, -mag} {
			fill := Fill(v)
			want := 0.3 + 0.7*math.Abs(v)
			if math.Abs(fill.A-want) > 1e-12 {
				t.Errorf("Fill(%v).A = %v, want %v", v, fill.A, want)
			}
		}
		a := Fill(mag).A
		if a < prev {
			t.Errorf("alpha decreased at |v|=%v: %v < %v", mag, a, prev)
		}
		prev = a
	}
}

func TestZeroIsNeutral(t *testing.T) {
	want := RGBA{Neutral.R, Neutral.G, Neutral.B, MinAlpha}
	for _, v := range []float64{0, math.Copysign(0, -1)} {
		if got := Fill(v); got != want {
			t.Errorf("Fill(%v) = %+v, want %+v", v, got, want)
		}
	}
}

func TestExtremes(t *testing.T) {
	tests := []struct {
		v    float64
		want RGBA
	}{
		{1, RGBA{Positive.R, Positive.G, Positive.B, 1}},
		{-1, RGBA{Negative.R, Negative.G, Negative.B, 1}},
	}
	for _, tt := range tests {
		if got := Fill(tt.v); got != tt.want {
			t.Errorf("Fill(%v) = %+v, want %+v", tt.v, got, tt.want)
		}
	}
}

func TestInterpolationMidpoint(t *testing.T) {
	got := Fill(0.5)
	// 30 + 16*0.5 = 38, 30 + 174*0.5 = 117, 35 + 78*0.5 = 74
	if got.R != 38 || got.G != 117 || got.B != 74 {
		t.Errorf("Fill(0.5) = %+v", got)
	}

	got = Fill(-0.5)
	// 30 + 201*0.5 = 130.5 -> 131, 30 + 46*0.5 = 53, 35 + 25*0.5 = 47.5 -> 48
	if got.R != 131 || got.G != 53 || got.B != 48 {
		t.Errorf("Fill(-0.5) = %+v", got)
	}
}

func TestTextContrast(t *testing.T) {
	tests := []struct {
		v        float64
		contrast bool
	}{
		{0, false},
		{0.5, false},
		{-0.5, false},
		{0.5000001, true},
		{-0.51, true},
		{1, true},
		{-1, true},
		{0.49, false},
	}
	for _, tt := range tests {
		got := Text(tt.v)
		if (got == HighContrastText) != tt.contrast {
			t.Errorf("Text(%v) = %+v, high contrast expected: %v", tt.v, got, tt.contrast)
		}
	}
}

func TestCSS(t *testing.T) {
	if got := Fill(0).CSS(); got != "rgba(30, 30, 35, 0.3)" {
		t.Errorf("unexpected css %q", got)
	}
	if got := Fill(1).CSS(); got != "rgba(46, 204, 113, 1)" {
		t.Errorf("unexpected css %q", got)
	}
	if got := DefaultText.CSS(); got != "rgba(230, 237, 243, 0.9)" {
		t.Errorf("unexpected css %q", got)
	}
}

func TestOver(t *testing.T) {
	bg := RGB{0, 0, 0}
	if got := (RGBA{200, 100, 50, 1}).Over(bg); got != (RGB{200, 100, 50}) {
		t.Errorf("opaque composite changed color: %+v", got)
	}
	if got := (RGBA{200, 100, 50, 0.5}).Over(bg); got != (RGB{100, 50, 25}) {
		t.Errorf("half composite = %+v", got)
	}
}

func TestHexRoundTrip(t *testing.T) {
	c := RGB{46, 204, 113}
	if c.Hex() != "#2ecc71" {
		t.Errorf("Hex() = %s", c.Hex())
	}
	parsed, ok := ParseHex("#2ecc71")
	if !ok || parsed != c {
		t.Errorf("ParseHex = %+v, %v", parsed, ok)
	}
	if _, ok := ParseHex("2ecc71"); ok {
		t.Error("expected failure without #")
	}
	if _, ok := ParseHex("#zzzzzz"); ok {
		t.Error("expected failure for non-hex")
	}
}
