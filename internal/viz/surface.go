package viz

import (
	"math"

	"github.com/san-kum/confetti/internal/physics"
	"github.com/san-kum/confetti/internal/render"
)

// circleSegments is the number of chords used for stroked circles.
const circleSegments = 24

// BrailleSurface is a render.Surface on a braille Canvas. Each dot covers
// scale x scale logical pixels.
type BrailleSurface struct {
	render.Transform
	canvas *Canvas
	scale  float64
	bg     render.Color
}

func NewBrailleSurface(cols, rows int, scale float64) *BrailleSurface {
	if scale <= 0 {
		scale = 1
	}
	return &BrailleSurface{canvas: NewCanvas(cols, rows), scale: scale, bg: render.White}
}

func (s *BrailleSurface) Canvas() *Canvas { return s.canvas }

func (s *BrailleSurface) Size() (float64, float64) {
	return float64(s.canvas.Width*2) * s.scale, float64(s.canvas.Height*4) * s.scale
}

// Resize fits the canvas to w x h logical pixels.
func (s *BrailleSurface) Resize(w, h float64) {
	s.ResizeCells(int(w/(2*s.scale)), int(h/(4*s.scale)))
}

func (s *BrailleSurface) ResizeCells(cols, rows int) {
	if cols == s.canvas.Width && rows == s.canvas.Height {
		return
	}
	s.canvas = NewCanvas(cols, rows)
}

// CellCenter maps a terminal cell to the logical pixel at its center.
func (s *BrailleSurface) CellCenter(col, row int) physics.Vec2 {
	return physics.Vec2{X: (float64(col) + 0.5) * 2 * s.scale, Y: (float64(row) + 0.5) * 4 * s.scale}
}

func (s *BrailleSurface) Clear(bg render.Color) {
	s.canvas.Clear()
	s.bg = bg
	s.ResetTransform()
}

func (s *BrailleSurface) dot(p physics.Vec2) physics.Vec2 {
	return s.Apply(p).Scale(1 / s.scale)
}

func (s *BrailleSurface) FillPolygon(pts []physics.Vec2, c render.Color) {
	dev := make([]physics.Vec2, len(pts))
	for i, p := range pts {
		dev[i] = s.dot(p)
	}
	fg := c.Over(s.bg)
	drawn := false
	render.ScanPolygon(dev, func(y, x0, x1 int) {
		for x := x0; x < x1; x++ {
			s.canvas.Paint(x, y, fg)
		}
		drawn = true
	})
	// papers thinner than a dot still leave a mark
	if !drawn && len(dev) > 0 {
		lo, hi := render.Bounds(dev)
		s.canvas.Paint(int(math.Floor((lo.X+hi.X)/2)), int(math.Floor((lo.Y+hi.Y)/2)), fg)
	}
}

func (s *BrailleSurface) line(a, b physics.Vec2, fg render.Color) {
	da, db := s.dot(a), s.dot(b)
	s.canvas.DrawLine(int(math.Floor(da.X)), int(math.Floor(da.Y)), int(math.Floor(db.X)), int(math.Floor(db.Y)), fg)
}

func (s *BrailleSurface) StrokeCircle(center physics.Vec2, r float64, c render.Color) {
	pts := render.Circle(center, r, circleSegments)
	fg := c.Over(s.bg)
	for i := range pts {
		s.line(pts[i], pts[(i+1)%len(pts)], fg)
	}
}

func (s *BrailleSurface) StrokeLine(a, b physics.Vec2, c render.Color, dash float64) {
	fg := c.Over(s.bg)
	for _, seg := range render.Dashes(a, b, dash) {
		s.line(seg[0], seg[1], fg)
	}
}

// FillRect blanks the cells under the rectangle. Rotation is ignored.
func (s *BrailleSurface) FillRect(x, y, w, h float64, c render.Color) {
	lo := s.dot(physics.Vec2{X: x, Y: y})
	hi := s.dot(physics.Vec2{X: x + w, Y: y + h})
	s.canvas.ClearCells(
		int(math.Floor(lo.X/2)), int(math.Floor(lo.Y/4)),
		int(math.Ceil(hi.X/2)), int(math.Ceil(hi.Y/4)),
	)
}

func (s *BrailleSurface) Text(x, y float64, str string, c render.Color) {
	d := s.dot(physics.Vec2{X: x, Y: y})
	col := int(math.Floor(d.X/2)) - len([]rune(str))/2
	row := int(math.Floor(d.Y / 4))
	s.canvas.WriteText(col, row, str, c.Over(s.bg))
}

func (s *BrailleSurface) String() string {
	return s.canvas.Render(s.bg)
}
