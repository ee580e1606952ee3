// Package metrics accumulates frame-rate and population statistics for the
// simulation loop.
package metrics

import "time"

// FrameRate estimates frames per second over windows started by Mark and
// closed by Observe. Tick counts the frame intervals inside a window.
type FrameRate struct {
	last   time.Duration
	frames int
	primed bool
	fps    float64
}

func NewFrameRate() *FrameRate {
	return &FrameRate{}
}

// Mark starts a window at now without producing an estimate.
func (f *FrameRate) Mark(now time.Duration) {
	f.last = now
	f.frames = 0
	f.primed = true
}

// Tick counts one frame interval in the current window.
func (f *FrameRate) Tick() {
	if f.primed {
		f.frames++
	}
}

// Observe closes the current window at now and starts the next one.
func (f *FrameRate) Observe(now time.Duration) {
	if !f.primed {
		f.Mark(now)
		return
	}
	elapsed := now - f.last
	frames := f.frames
	f.Mark(now)
	if elapsed <= 0 || frames == 0 {
		return
	}
	f.fps = float64(frames) / elapsed.Seconds()
}

func (f *FrameRate) Value() float64 { return f.fps }

func (f *FrameRate) Reset() {
	f.fps = 0
	f.frames = 0
	f.primed = false
	f.last = 0
}
