package config

import (
	"math"
	"math/rand"
	"testing"
)

func TestRange_SampleWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	tests := []struct {
		name   string
		r      Range
		offset float64
	}{
		{"positive", NewRange(30, 100), 0},
		{"negative", NewRange(-35, 35), 0},
		{"with offset", NewRange(-35, 35), 90},
		{"degenerate", Fixed(4), -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := tt.offset+tt.r.Min, tt.offset+tt.r.Max
			for i := 0; i < 5000; i++ {
				v := tt.r.Sample(rng, tt.offset)
				if v < lo || v > hi {
					t.Fatalf("sample %v outside [%v, %v]", v, lo, hi)
				}
			}
		})
	}
}

func TestRange_SampleCoversInterval(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	r := NewRange(0, 10)

	minSeen, maxSeen := math.Inf(1), math.Inf(-1)
	for i := 0; i < 10000; i++ {
		v := r.Sample(rng, 0)
		minSeen = math.Min(minSeen, v)
		maxSeen = math.Max(maxSeen, v)
	}
	if minSeen > 0.1 || maxSeen < 9.9 {
		t.Errorf("samples spanned [%.3f, %.3f], expected close to [0, 10]", minSeen, maxSeen)
	}
}

func TestRange_Degenerate(t *testing.T) {
	r := Fixed(5)
	if r.Min != 5 || r.Max != 5 {
		t.Fatalf("Fixed(5) = %v", r)
	}
	if got := r.Sample(rand.New(rand.NewSource(3)), 1); got != 6 {
		t.Errorf("Sample = %v, want 6", got)
	}
}

func TestRange_Clamp(t *testing.T) {
	r := NewRange(30, 100)

	tests := []struct {
		in, want float64
	}{
		{10, 30},
		{30, 30},
		{55, 55},
		{100, 100},
		{250, 100},
		{math.Inf(-1), 30},
	}

	for _, tt := range tests {
		got := r.Clamp(tt.in)
		if got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if again := r.Clamp(got); again != got {
			t.Errorf("Clamp not idempotent at %v: %v then %v", tt.in, got, again)
		}
	}
}

func TestNewRange_SwapsInvertedBounds(t *testing.T) {
	r := NewRange(9, 3)
	if r.Min != 3 || r.Max != 9 {
		t.Errorf("NewRange(9, 3) = %v, want [3, 9]", r)
	}
}

func TestRange_InvertedUsesOrderedBounds(t *testing.T) {
	r := Range{Min: 10, Max: 2}
	if !r.Inverted() {
		t.Fatal("expected inverted range")
	}
	if got := r.Clamp(20); got != 10 {
		t.Errorf("Clamp(20) = %v, want 10", got)
	}
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 100; i++ {
		if v := r.Sample(rng, 0); v < 2 || v > 10 {
			t.Fatalf("sample %v outside [2, 10]", v)
		}
	}
}
