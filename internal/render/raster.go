package render

import (
	"math"
	"sort"

	"github.com/san-kum/confetti/internal/physics"
)

// ScanPolygon calls span for every integer row y covered by the polygon with
// the half-open column interval [x0, x1) filled on that row. Rows and columns
// are sampled at pixel centers with the even-odd rule.
func ScanPolygon(pts []physics.Vec2, span func(y, x0, x1 int)) {
	if len(pts) < 3 {
		return
	}
	lo, hi := Bounds(pts)
	y0 := int(math.Floor(lo.Y))
	y1 := int(math.Ceil(hi.Y))

	xs := make([]float64, 0, len(pts))
	for y := y0; y <= y1; y++ {
		cy := float64(y) + 0.5
		xs = xs[:0]
		for i := range pts {
			a, b := pts[i], pts[(i+1)%len(pts)]
			if (a.Y <= cy) == (b.Y <= cy) {
				continue
			}
			xs = append(xs, a.X+(cy-a.Y)*(b.X-a.X)/(b.Y-a.Y))
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			x0 := int(math.Ceil(xs[i] - 0.5))
			x1 := int(math.Ceil(xs[i+1] - 0.5))
			if x1 > x0 {
				span(y, x0, x1)
			}
		}
	}
}

// Dashes splits the segment a-b into dashes of length dash separated by gaps
// of the same length. A non-positive dash yields the whole segment.
func Dashes(a, b physics.Vec2, dash float64) [][2]physics.Vec2 {
	length := a.Dist(b)
	if dash <= 0 || length == 0 {
		return [][2]physics.Vec2{{a, b}}
	}
	dir := b.Sub(a).Scale(1 / length)
	var out [][2]physics.Vec2
	for d := 0.0; d < length; d += 2 * dash {
		end := math.Min(d+dash, length)
		out = append(out, [2]physics.Vec2{a.Add(dir.Scale(d)), a.Add(dir.Scale(end))})
	}
	return out
}

// Circle approximates a circle with n segments.
func Circle(center physics.Vec2, r float64, n int) []physics.Vec2 {
	if n < 3 {
		n = 3
	}
	pts := make([]physics.Vec2, n)
	for i := range pts {
		s, c := math.Sincos(2 * math.Pi * float64(i) / float64(n))
		pts[i] = physics.Vec2{X: center.X + r*c, Y: center.Y + r*s}
	}
	return pts
}
