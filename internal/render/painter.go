package render

import (
	"fmt"
	"math"

	"github.com/san-kum/confetti/internal/config"
	"github.com/san-kum/confetti/internal/gesture"
	"github.com/san-kum/confetti/internal/physics"
	"github.com/san-kum/confetti/internal/sim"
)

// Touch guide and FPS box geometry, in logical pixels.
const (
	GuideRadius = 10
	GuideDash   = 4
	FPSBoxW     = 90
	FPSBoxH     = 20
)

// Painter draws frames onto a Surface. It satisfies sim.Renderer.
type Painter struct {
	surface  Surface
	cfg      *config.Tree
	contacts func() []gesture.Contact
}

// NewPainter returns a painter for s. contacts, when not nil, supplies the
// active gestures drawn as guides.
func NewPainter(s Surface, cfg *config.Tree, contacts func() []gesture.Contact) *Painter {
	return &Painter{surface: s, cfg: cfg, contacts: contacts}
}

func (p *Painter) Size() (float64, float64) { return p.surface.Size() }

func (p *Painter) Render(f sim.Frame) {
	bg, fg := Scheme(p.cfg.Bool(config.KeyInvertColors))
	p.surface.Clear(bg)

	width := p.cfg.Scalar(config.KeyWidth)
	height := p.cfg.Scalar(config.KeyHeight)
	skew := p.cfg.Scalar(config.KeySkew)
	for i := range f.Particles {
		p.paper(&f.Particles[i], width, height, skew)
	}

	if p.contacts != nil {
		for _, c := range p.contacts() {
			p.surface.StrokeCircle(c.Start, GuideRadius, fg)
			p.surface.StrokeLine(c.Start, c.Current, fg, GuideDash)
		}
	}

	if p.cfg.Bool(config.KeyShowFPS) {
		p.surface.FillRect(0, 0, FPSBoxW, FPSBoxH, bg)
		p.surface.Text(FPSBoxW/2, FPSBoxH/2, fmt.Sprintf("%.0f FPS | %d", f.FPS, len(f.Particles)), fg)
	}
}

func (p *Painter) paper(pp *sim.Particle, width, height, skew float64) {
	if pp.Alpha <= 0 {
		return
	}
	w := width * pp.Orientation
	s := skew * pp.Orientation
	h := height * pp.Flip()

	p.surface.Save()
	p.surface.Translate(pp.Position.X, pp.Position.Y)
	p.surface.Rotate(pp.Angle())
	p.surface.Translate(pp.Rotation.Shift, pp.Rotation.Shift)
	p.surface.FillPolygon(Parallelogram(w, h, s), RGBA(pp.Color.R, pp.Color.G, pp.Color.B, pp.Alpha))
	p.surface.Restore()
}

// Parallelogram returns the outline of a paper with base w, height h and
// lean s, anchored at the origin.
func Parallelogram(w, h, s float64) []physics.Vec2 {
	return []physics.Vec2{
		{X: 0, Y: 0},
		{X: w, Y: 0},
		{X: w + s, Y: h},
		{X: s, Y: h},
	}
}

// Bounds returns the axis-aligned box of pts.
func Bounds(pts []physics.Vec2) (min, max physics.Vec2) {
	if len(pts) == 0 {
		return
	}
	min, max = pts[0], pts[0]
	for _, q := range pts[1:] {
		min.X, min.Y = math.Min(min.X, q.X), math.Min(min.Y, q.Y)
		max.X, max.Y = math.Max(max.X, q.X), math.Max(max.Y, q.Y)
	}
	return min, max
}
