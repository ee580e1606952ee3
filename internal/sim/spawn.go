package sim

import (
	"math"

	"github.com/san-kum/confetti/internal/config"
	"github.com/san-kum/confetti/internal/physics"
)

// Spawn fires a burst for a drag from p0 to p1 and returns the number of
// papers added. The burst travels opposite to the drag, like a slingshot.
// Drags not longer than v0.threshold spawn nothing.
func (l *Loop) Spawn(p0, p1 physics.Vec2) int {
	dx := p0.X - p1.X
	dy := p1.Y - p0.Y
	length := math.Hypot(dx, dy)
	if length <= l.cfg.Scalar(config.KeyThreshold) {
		return 0
	}

	count := int(math.Ceil(l.cfg.Range(config.KeyCount).Sample(l.rng, 0)))
	if count <= 0 {
		return 0
	}

	direction := math.Atan2(dy, dx) * 180 / math.Pi
	lengthRange := l.cfg.Range(config.KeyLength)
	variation := l.cfg.Range(config.KeyVariation)
	multiplier := l.cfg.Range(config.KeyMultiplier)
	angle := l.cfg.Range(config.KeyAngle)

	for i := 0; i < count; i++ {
		speed := multiplier.Sample(l.rng, 0) * variation.Sample(l.rng, lengthRange.Clamp(length))
		v0 := physics.Launch(speed, angle.Sample(l.rng, direction))
		l.particles = append(l.particles, l.newParticle(p0, v0))
	}
	l.log.Printf("sim: spawned %d papers (drag %.1fpx, %.1f°)", count, length, direction)
	return count
}

// Autofire spawns a burst from the lower middle of the viewport straight up.
func (l *Loop) Autofire() int {
	w, h := l.renderer.Size()
	p0 := physics.Vec2{X: 0.5 * w, Y: 0.75 * h}
	p1 := physics.Vec2{X: p0.X, Y: p0.Y + l.cfg.Range(config.KeyLength).Sample(l.rng, 0)}
	return l.Spawn(p0, p1)
}

func (l *Loop) newParticle(origin, v0 physics.Vec2) Particle {
	orientation := 1.0
	if l.rng.Float64() < 0.5 {
		orientation = -1
	}
	base := 0.7 + 0.3*l.rng.Float64()
	return Particle{
		Origin:      origin,
		Position:    origin,
		Velocity:    v0,
		Terminal:    l.cfg.Scalar(config.KeyTerminalVelocity),
		Orientation: orientation,
		Wobble: Oscillation{
			Frequency: l.cfg.Range(config.KeyWobbleZoom).Sample(l.rng, 0),
			Phase:     radians(l.cfg.Range(config.KeyWobbleOffset).Sample(l.rng, 0)),
		},
		Rotation: Spin{
			Frequency: l.cfg.Range(config.KeyRotationZoom).Sample(l.rng, 0),
			Phase:     radians(l.cfg.Range(config.KeyRotationOffset).Sample(l.rng, 0)),
			Shift:     l.cfg.Range(config.KeyRotationShift).Sample(l.rng, 0),
		},
		Color: Color{
			R:         uint8(l.rng.Intn(256)),
			G:         uint8(l.rng.Intn(256)),
			B:         uint8(l.rng.Intn(256)),
			BaseAlpha: base,
		},
		Alpha: base,
	}
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
