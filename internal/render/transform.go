package render

import (
	"math"

	"github.com/san-kum/confetti/internal/physics"
)

// Matrix is the affine map (x, y) -> (A·x + C·y + E, B·x + D·y + F).
type Matrix struct {
	A, B, C, D, E, F float64
}

var Identity = Matrix{A: 1, D: 1}

// Mul returns m·n, the map that applies n first.
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

func (m Matrix) Apply(p physics.Vec2) physics.Vec2 {
	return physics.Vec2{X: m.A*p.X + m.C*p.Y + m.E, Y: m.B*p.X + m.D*p.Y + m.F}
}

// Transform is a current matrix plus a save/restore stack. Surfaces embed it.
type Transform struct {
	m     Matrix
	stack []Matrix
	init  bool
}

func (t *Transform) current() Matrix {
	if !t.init {
		t.m = Identity
		t.init = true
	}
	return t.m
}

func (t *Transform) Save() {
	t.stack = append(t.stack, t.current())
}

// Restore pops the last saved matrix. Unbalanced calls are ignored.
func (t *Transform) Restore() {
	if len(t.stack) == 0 {
		return
	}
	t.m = t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
}

func (t *Transform) Translate(dx, dy float64) {
	t.m = t.current().Mul(Matrix{A: 1, D: 1, E: dx, F: dy})
}

func (t *Transform) Rotate(rad float64) {
	s, c := math.Sincos(rad)
	t.m = t.current().Mul(Matrix{A: c, B: s, C: -s, D: c})
}

// ResetTransform drops the stack and returns to the identity.
func (t *Transform) ResetTransform() {
	t.m = Identity
	t.init = true
	t.stack = t.stack[:0]
}

func (t *Transform) Matrix() Matrix { return t.current() }

// Apply maps a point from user space to device space.
func (t *Transform) Apply(p physics.Vec2) physics.Vec2 {
	return t.current().Apply(p)
}

func (t *Transform) Depth() int { return len(t.stack) }
