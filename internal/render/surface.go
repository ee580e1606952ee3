// Package render draws simulation frames onto 2D surfaces.
package render

import (
	"fmt"
	"math"

	"github.com/san-kum/confetti/internal/physics"
)

// Color is an RGB color with an opacity in [0, 1].
type Color struct {
	R, G, B uint8
	A       float64
}

var (
	Black = Color{A: 1}
	White = Color{R: 255, G: 255, B: 255, A: 1}
)

func RGBA(r, g, b uint8, a float64) Color {
	return Color{R: r, G: g, B: b, A: math.Max(0, math.Min(1, a))}
}

// Over composites c over an opaque background.
func (c Color) Over(bg Color) Color {
	mix := func(f, b uint8) uint8 {
		return uint8(math.Round(float64(f)*c.A + float64(b)*(1-c.A)))
	}
	return Color{R: mix(c.R, bg.R), G: mix(c.G, bg.G), B: mix(c.B, bg.B), A: 1}
}

// Hex formats the color as #rrggbb, ignoring opacity.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Scheme picks the background and foreground for normal or inverted
// rendering.
func Scheme(invert bool) (bg, fg Color) {
	if invert {
		return Black, White
	}
	return White, Black
}

// Surface is a 2D drawing target sized in logical pixels. Coordinates passed
// to drawing calls go through the current transform.
type Surface interface {
	Size() (w, h float64)
	Resize(w, h float64)
	Clear(bg Color)

	Save()
	Restore()
	Translate(dx, dy float64)
	Rotate(rad float64)

	FillPolygon(pts []physics.Vec2, c Color)
	StrokeCircle(center physics.Vec2, r float64, c Color)
	// StrokeLine draws a line, dashed with equal dash and gap lengths when
	// dash > 0.
	StrokeLine(a, b physics.Vec2, c Color, dash float64)
	FillRect(x, y, w, h float64, c Color)
	// Text draws s centered on (x, y).
	Text(x, y float64, s string, c Color)
}
