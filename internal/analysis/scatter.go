package analysis

import "math"

// Point is one day's pair of returns, X for the first asset and Y for the
// second.
type Point struct {
	X, Y float64
}

// ReturnPairs recovers daily log returns from two aligned series of
// compounded levels that both started at base. Pairs with a non-positive
// level on either side are skipped.
func ReturnPairs(a, b []float64, base float64) []Point {
	n := min(len(a), len(b))
	out := make([]Point, 0, n)
	prevA, prevB := base, base
	for i := 0; i < n; i++ {
		if prevA > 0 && prevB > 0 && a[i] > 0 && b[i] > 0 {
			out = append(out, Point{X: math.Log(a[i] / prevA), Y: math.Log(b[i] / prevB)})
		}
		prevA, prevB = a[i], b[i]
	}
	return out
}

// Fit is the least squares line Y = Alpha + Beta*X.
type Fit struct {
	Alpha float64
	Beta  float64
}

// At evaluates the line at x.
func (f Fit) At(x float64) float64 {
	return f.Alpha + f.Beta*x
}

// LinearFit regresses Y on X. ok is false with fewer than two points or when
// X does not vary.
func LinearFit(pts []Point) (fit Fit, ok bool) {
	if len(pts) < 2 {
		return Fit{}, false
	}
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	mx, my := Mean(xs), Mean(ys)

	var sxy, sxx float64
	for i := range pts {
		dx := xs[i] - mx
		sxy += dx * (ys[i] - my)
		sxx += dx * dx
	}
	if sxx == 0 {
		return Fit{}, false
	}
	beta := sxy / sxx
	return Fit{Alpha: my - beta*mx, Beta: beta}, true
}

// Bounds is the box a plot maps onto its canvas.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// PaddedBounds covers every point plus pad times each axis span on both
// sides. A flat axis gets a span of 1.
func PaddedBounds(pts []Point, pad float64) Bounds {
	if len(pts) == 0 {
		return Bounds{MinX: -1, MaxX: 1, MinY: -1, MaxY: 1}
	}
	b := Bounds{MinX: pts[0].X, MaxX: pts[0].X, MinY: pts[0].Y, MaxY: pts[0].Y}
	for _, p := range pts[1:] {
		b.MinX = min(b.MinX, p.X)
		b.MaxX = max(b.MaxX, p.X)
		b.MinY = min(b.MinY, p.Y)
		b.MaxY = max(b.MaxY, p.Y)
	}

	spanX := b.MaxX - b.MinX
	if spanX == 0 {
		spanX = 1
	}
	spanY := b.MaxY - b.MinY
	if spanY == 0 {
		spanY = 1
	}
	b.MinX -= spanX * pad
	b.MaxX += spanX * pad
	b.MinY -= spanY * pad
	b.MaxY += spanY * pad
	return b
}
