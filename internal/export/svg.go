// Package export writes frames and plots as SVG documents.
package export

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/san-kum/confetti/internal/physics"
	"github.com/san-kum/confetti/internal/render"
)

// SVGSurface is a render.Surface that records drawing calls as SVG elements.
// Clear starts a new document.
type SVGSurface struct {
	render.Transform
	w, h float64
	bg   render.Color
	body strings.Builder
}

func NewSVGSurface(w, h float64) *SVGSurface {
	return &SVGSurface{w: w, h: h, bg: render.White}
}

func (s *SVGSurface) Size() (float64, float64) { return s.w, s.h }
func (s *SVGSurface) Resize(w, h float64)      { s.w, s.h = w, h }

func (s *SVGSurface) Clear(bg render.Color) {
	s.ResetTransform()
	s.body.Reset()
	s.bg = bg
}

func (s *SVGSurface) FillPolygon(pts []physics.Vec2, c render.Color) {
	if len(pts) < 3 {
		return
	}
	var sb strings.Builder
	for i, p := range pts {
		if i > 0 {
			sb.WriteByte(' ')
		}
		q := s.Apply(p)
		fmt.Fprintf(&sb, "%.2f,%.2f", q.X, q.Y)
	}
	fmt.Fprintf(&s.body, `<polygon points="%s" fill="%s" fill-opacity="%.3f"/>`+"\n", sb.String(), c.Hex(), c.A)
}

func (s *SVGSurface) StrokeCircle(center physics.Vec2, r float64, c render.Color) {
	p := s.Apply(center)
	fmt.Fprintf(&s.body, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="none" stroke="%s" stroke-opacity="%.3f"/>`+"\n",
		p.X, p.Y, r, c.Hex(), c.A)
}

func (s *SVGSurface) StrokeLine(a, b physics.Vec2, c render.Color, dash float64) {
	p, q := s.Apply(a), s.Apply(b)
	dashes := ""
	if dash > 0 {
		dashes = fmt.Sprintf(` stroke-dasharray="%g %g"`, dash, dash)
	}
	fmt.Fprintf(&s.body, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-opacity="%.3f"%s/>`+"\n",
		p.X, p.Y, q.X, q.Y, c.Hex(), c.A, dashes)
}

func (s *SVGSurface) FillRect(x, y, w, h float64, c render.Color) {
	p := s.Apply(physics.Vec2{X: x, Y: y})
	fmt.Fprintf(&s.body, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" fill-opacity="%.3f"/>`+"\n",
		p.X, p.Y, w, h, c.Hex(), c.A)
}

func (s *SVGSurface) Text(x, y float64, str string, c render.Color) {
	p := s.Apply(physics.Vec2{X: x, Y: y})
	fmt.Fprintf(&s.body, `<text x="%.2f" y="%.2f" fill="%s" font-family="monospace" font-size="12" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
		p.X, p.Y, c.Hex(), html.EscapeString(str))
}

// String returns the complete SVG document.
func (s *SVGSurface) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, s.w, s.h, s.w, s.h, s.bg.Hex())
	sb.WriteString(s.body.String())
	sb.WriteString("</svg>\n")
	return sb.String()
}

func (s *SVGSurface) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.String())
	return int64(n), err
}

// HistoryToSVG plots values left to right as a polyline scaled to width x
// height, with zero at the bottom.
func HistoryToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	top := values[0]
	for _, v := range values {
		if v > top {
			top = v
		}
	}
	if top <= 0 {
		top = 1
	}
	top *= 1.1

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, v := range values {
		x := float64(i) / float64(len(values)-1) * float64(width)
		y := float64(height) - v/top*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
