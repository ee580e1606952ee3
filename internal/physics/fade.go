package physics

// Fade is a piecewise-linear opacity ramp: 1 until T0 seconds, falling
// linearly to 0 at T1, and 0 afterwards.
type Fade struct {
	T0 float64
	T1 float64
}

// At returns the opacity factor at age t, clamped to [0, 1]. A ramp with
// T1 <= T0 degrades to a hard cut at T1.
func (f Fade) At(t float64) float64 {
	if f.T1 <= f.T0 {
		if t < f.T1 {
			return 1
		}
		return 0
	}
	v := (f.T1 - t) / (f.T1 - f.T0)
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
