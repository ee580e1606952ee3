package gui

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/confetti/internal/physics"
	"github.com/san-kum/confetti/internal/render"
)

const (
	lineThickness = 1
	fontSize      = 14
	fontSpacing   = 1
)

// Surface is a render.Surface drawing straight into the raylib back buffer.
// Calls must happen between rl.BeginDrawing and rl.EndDrawing.
type Surface struct {
	render.Transform
	w, h float64
	font rl.Font
}

func NewSurface(w, h float64) *Surface {
	return &Surface{w: w, h: h}
}

// SetFont sets the font used by Text. The zero font means the raylib default.
func (s *Surface) SetFont(f rl.Font) { s.font = f }

func (s *Surface) Size() (float64, float64) { return s.w, s.h }
func (s *Surface) Resize(w, h float64)      { s.w, s.h = w, h }

func (s *Surface) Clear(bg render.Color) {
	s.ResetTransform()
	rl.ClearBackground(toColor(bg))
}

func (s *Surface) FillPolygon(pts []physics.Vec2, c render.Color) {
	if len(pts) < 3 {
		return
	}
	dev := counterClockwise(s.project(pts))
	col := toColor(c)
	for i := 1; i+1 < len(dev); i++ {
		rl.DrawTriangle(vec(dev[0]), vec(dev[i]), vec(dev[i+1]), col)
	}
}

func (s *Surface) StrokeCircle(center physics.Vec2, r float64, c render.Color) {
	p := s.Apply(center)
	rl.DrawCircleLines(int32(math.Round(p.X)), int32(math.Round(p.Y)), float32(r), toColor(c))
}

func (s *Surface) StrokeLine(a, b physics.Vec2, c render.Color, dash float64) {
	col := toColor(c)
	for _, seg := range render.Dashes(a, b, dash) {
		rl.DrawLineEx(vec(s.Apply(seg[0])), vec(s.Apply(seg[1])), lineThickness, col)
	}
}

// FillRect fills the axis-aligned box spanned by the transformed corners.
func (s *Surface) FillRect(x, y, w, h float64, c render.Color) {
	lo, hi := render.Bounds(s.project([]physics.Vec2{{X: x, Y: y}, {X: x + w, Y: y + h}}))
	rl.DrawRectangle(int32(lo.X), int32(lo.Y), int32(math.Ceil(hi.X-lo.X)), int32(math.Ceil(hi.Y-lo.Y)), toColor(c))
}

func (s *Surface) Text(x, y float64, str string, c render.Color) {
	font := s.font
	if font.Texture.ID == 0 {
		font = rl.GetFontDefault()
	}
	size := rl.MeasureTextEx(font, str, fontSize, fontSpacing)
	p := s.Apply(physics.Vec2{X: x, Y: y})
	pos := rl.NewVector2(float32(p.X)-size.X/2, float32(p.Y)-size.Y/2)
	rl.DrawTextEx(font, str, pos, fontSize, fontSpacing, toColor(c))
}

func (s *Surface) project(pts []physics.Vec2) []physics.Vec2 {
	out := make([]physics.Vec2, len(pts))
	for i, p := range pts {
		out[i] = s.Apply(p)
	}
	return out
}

// counterClockwise returns pts wound counter-clockwise on a y-down screen,
// the order raylib needs to not cull a triangle.
func counterClockwise(pts []physics.Vec2) []physics.Vec2 {
	if signedArea(pts) <= 0 {
		return pts
	}
	out := make([]physics.Vec2, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// signedArea is the shoelace area, positive for clockwise screen winding.
func signedArea(pts []physics.Vec2) float64 {
	var a float64
	for i := range pts {
		p, q := pts[i], pts[(i+1)%len(pts)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

func toColor(c render.Color) rl.Color {
	return rl.NewColor(c.R, c.G, c.B, uint8(math.Round(c.A*255)))
}

func vec(p physics.Vec2) rl.Vector2 {
	return rl.NewVector2(float32(p.X), float32(p.Y))
}
