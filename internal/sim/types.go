package sim

import (
	"math"
	"time"

	"github.com/san-kum/confetti/internal/physics"
)

// Particle is one paper. Position is recomputed from Origin, Velocity and Age
// every frame.
type Particle struct {
	Origin      physics.Vec2
	Position    physics.Vec2
	Velocity    physics.Vec2 // launch velocity, positive Y up
	Terminal    float64
	Age         float64 // seconds since spawn
	Orientation float64 // +1 or -1, mirrors the paper shape
	Wobble      Oscillation
	Rotation    Spin
	Color       Color
	Alpha       float64
}

// Oscillation is the 3D-like flip of a paper: cos(Frequency·t + Phase).
type Oscillation struct {
	Frequency float64
	Phase     float64 // radians
}

// Spin rotates a paper around an axis shifted by Shift pixels.
type Spin struct {
	Frequency float64
	Phase     float64 // radians
	Shift     float64
}

type Color struct {
	R, G, B   uint8
	BaseAlpha float64
}

// Angle returns the rotation of the paper at its current age.
func (p *Particle) Angle() float64 {
	return p.Age*p.Rotation.Frequency + p.Rotation.Phase
}

// Flip returns the wobble factor in [-1, 1] at the current age.
func (p *Particle) Flip() float64 {
	return math.Cos(p.Wobble.Frequency*p.Age + p.Wobble.Phase)
}

// Frame is what a renderer receives each frame. Particles aliases the live
// set and is only valid during the Render call.
type Frame struct {
	Particles []Particle
	FPS       float64
	Count     int // frames since Start
	Time      time.Duration
}

// Scheduler runs callbacks at the next display frame.
type Scheduler interface {
	RequestFrame(cb func(now time.Duration))
}

// Renderer draws a frame and reports the viewport size in pixels.
type Renderer interface {
	Size() (w, h float64)
	Render(f Frame)
}

// Observer is notified after every rendered frame.
type Observer interface {
	OnFrame(f Frame)
}

// Headless is a Renderer with a fixed viewport that draws nothing.
type Headless struct {
	W, H float64
}

func (h Headless) Size() (float64, float64) { return h.W, h.H }
func (h Headless) Render(Frame)             {}
