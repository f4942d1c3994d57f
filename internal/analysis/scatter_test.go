package analysis

import (
	"math"
	"testing"
)

func TestReturnPairs(t *testing.T) {
	a := []float64{110, 121, 0, 100}
	b := []float64{100, 50, 50, 100}

	got := ReturnPairs(a, b, 100)
	want := []Point{
		{X: math.Log(1.1), Y: 0},
		{X: math.Log(1.1), Y: math.Log(0.5)},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d pairs, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if math.Abs(got[i].X-want[i].X) > 1e-12 || math.Abs(got[i].Y-want[i].Y) > 1e-12 {
			t.Errorf("pair %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestReturnPairsUnevenLengths(t *testing.T) {
	got := ReturnPairs([]float64{101, 102, 103}, []float64{99}, 100)
	if len(got) != 1 {
		t.Fatalf("got %d pairs, want 1", len(got))
	}
}

func TestLinearFit(t *testing.T) {
	pts := []Point{{0, 1}, {1, 3}, {2, 5}, {3, 7}}
	fit, ok := LinearFit(pts)
	if !ok {
		t.Fatal("expected a fit")
	}
	if math.Abs(fit.Alpha-1) > 1e-12 || math.Abs(fit.Beta-2) > 1e-12 {
		t.Errorf("fit = %+v, want alpha 1 beta 2", fit)
	}
	if got := fit.At(10); math.Abs(got-21) > 1e-12 {
		t.Errorf("At(10) = %v, want 21", got)
	}
}

func TestLinearFitDegenerate(t *testing.T) {
	if _, ok := LinearFit([]Point{{1, 1}}); ok {
		t.Error("single point should not fit")
	}
	if _, ok := LinearFit([]Point{{1, 1}, {1, 2}, {1, 3}}); ok {
		t.Error("constant x should not fit")
	}
}

func TestPaddedBounds(t *testing.T) {
	b := PaddedBounds([]Point{{0, 5}, {10, 5}}, 0.1)
	want := Bounds{MinX: -1, MaxX: 11, MinY: 4.9, MaxY: 5.1}
	if math.Abs(b.MinX-want.MinX) > 1e-12 || math.Abs(b.MaxX-want.MaxX) > 1e-12 ||
		math.Abs(b.MinY-want.MinY) > 1e-12 || math.Abs(b.MaxY-want.MaxY) > 1e-12 {
		t.Errorf("bounds = %+v, want %+v", b, want)
	}

	if empty := PaddedBounds(nil, 0.1); empty.MinX != -1 || empty.MaxY != 1 {
		t.Errorf("empty bounds = %+v", empty)
	}
}
