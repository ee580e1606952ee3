package config

import (
	"fmt"
	"math/rand"
)

// Range is a closed interval of float64 values.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// NewRange builds a range, swapping the bounds when min > max.
func NewRange(min, max float64) Range {
	if min > max {
		min, max = max, min
	}
	return Range{Min: min, Max: max}
}

// Fixed returns the degenerate range [v, v].
func Fixed(v float64) Range {
	return Range{Min: v, Max: v}
}

// Bounds returns the ordered bounds. A range may be inverted for a moment
// while an update writes one bound before the other.
func (r Range) Bounds() (lo, hi float64) {
	if r.Min > r.Max {
		return r.Max, r.Min
	}
	return r.Min, r.Max
}

// Inverted reports whether Min > Max.
func (r Range) Inverted() bool { return r.Min > r.Max }

// Sample draws a uniform value from [offset+lo, offset+hi].
func (r Range) Sample(rng *rand.Rand, offset float64) float64 {
	lo, hi := r.Bounds()
	if lo == hi {
		return offset + lo
	}
	return offset + lo + (hi-lo)*rng.Float64()
}

// Clamp limits x to the range.
func (r Range) Clamp(x float64) float64 {
	lo, hi := r.Bounds()
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func (r Range) String() string {
	return fmt.Sprintf("[%g, %g]", r.Min, r.Max)
}
