package sim

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/san-kum/confetti/internal/config"
	"github.com/san-kum/confetti/internal/metrics"
	"github.com/san-kum/confetti/internal/physics"
)

type recorder struct {
	Headless
	frames []Frame
	ages   [][]float64
}

func (r *recorder) Render(f Frame) {
	r.frames = append(r.frames, Frame{FPS: f.FPS, Count: f.Count, Time: f.Time})
	ages := make([]float64, len(f.Particles))
	for i, p := range f.Particles {
		ages[i] = p.Age
	}
	r.ages = append(r.ages, ages)
}

func newTestLoop(w, h float64) (*Loop, *FrameQueue, *recorder) {
	q := NewFrameQueue()
	r := &recorder{Headless: Headless{W: w, H: h}}
	l := New(config.Default(nil), q, r, rand.New(rand.NewSource(42)), nil)
	return l, q, r
}

func fireAt(q *FrameQueue, seconds float64) int {
	return q.Fire(time.Duration(seconds * float64(time.Second)))
}

func TestSpawnBelowThreshold(t *testing.T) {
	l, _, _ := newTestLoop(800, 600)
	tests := []struct {
		name   string
		p0, p1 physics.Vec2
	}{
		{"no drag", physics.Vec2{X: 100, Y: 100}, physics.Vec2{X: 100, Y: 100}},
		{"short drag", physics.Vec2{X: 100, Y: 100}, physics.Vec2{X: 103, Y: 104}},
		{"exactly threshold", physics.Vec2{X: 100, Y: 100}, physics.Vec2{X: 100, Y: 110}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if n := l.Spawn(tt.p0, tt.p1); n != 0 {
				t.Errorf("spawned %d papers, want 0", n)
			}
			if l.Len() != 0 {
				t.Errorf("Len() = %d, want 0", l.Len())
			}
		})
	}
}

func TestSpawnBurst(t *testing.T) {
	l, _, _ := newTestLoop(800, 600)
	origin := physics.Vec2{X: 400, Y: 300}

	n := l.Spawn(origin, physics.Vec2{X: 400, Y: 380})
	if n < 160 || n > 200 {
		t.Fatalf("spawned %d papers, want within [160, 200]", n)
	}
	if l.Len() != n {
		t.Fatalf("Len() = %d, want %d", l.Len(), n)
	}

	for i, p := range l.Particles() {
		if p.Age != 0 {
			t.Errorf("paper %d: age %v, want 0", i, p.Age)
		}
		if !p.Position.IsFinite() || p.Position != origin {
			t.Errorf("paper %d: position %+v, want origin", i, p.Position)
		}
		if p.Velocity.Y <= 0 {
			t.Errorf("paper %d: downward drag must launch upwards, got vy=%v", i, p.Velocity.Y)
		}
		if p.Orientation != 1 && p.Orientation != -1 {
			t.Errorf("paper %d: orientation %v", i, p.Orientation)
		}
		if p.Color.BaseAlpha < 0.7 || p.Color.BaseAlpha > 1 {
			t.Errorf("paper %d: base alpha %v out of [0.7, 1]", i, p.Color.BaseAlpha)
		}
		if p.Rotation.Shift < 5 || p.Rotation.Shift > 10 {
			t.Errorf("paper %d: rotation shift %v out of [5, 10]", i, p.Rotation.Shift)
		}
	}
}

func TestSpawnDirection(t *testing.T) {
	l, _, _ := newTestLoop(800, 600)
	l.cfg.Update("cfg.v0.angle.range-min", 0.0)
	l.cfg.Update("cfg.v0.angle.range-max", 0.0)

	// dragging to the left launches to the right
	l.Spawn(physics.Vec2{X: 400, Y: 300}, physics.Vec2{X: 300, Y: 300})
	for _, p := range l.Particles() {
		if p.Velocity.X <= 0 || math.Abs(p.Velocity.Y) > 1e-9 {
			t.Fatalf("velocity %+v, want pointing right", p.Velocity)
		}
	}
}

func TestSpawnCountFromConfig(t *testing.T) {
	l, _, _ := newTestLoop(800, 600)
	l.cfg.Update("cfg.count.range-min", 2.2)
	l.cfg.Update("cfg.count.range-max", 2.2)

	if n := l.Spawn(physics.Vec2{X: 0, Y: 0}, physics.Vec2{X: 0, Y: 50}); n != 3 {
		t.Errorf("spawned %d papers, want ceil(2.2) = 3", n)
	}
}

func TestAutofire(t *testing.T) {
	l, _, _ := newTestLoop(800, 600)
	n := l.Autofire()
	if n < 160 || n > 200 {
		t.Fatalf("autofire spawned %d papers", n)
	}
	want := physics.Vec2{X: 400, Y: 450}
	for _, p := range l.Particles() {
		if p.Origin != want {
			t.Fatalf("origin %+v, want %+v", p.Origin, want)
		}
	}
}

func TestStartIdempotent(t *testing.T) {
	l, q, _ := newTestLoop(800, 600)
	l.Start()
	l.Start()
	if !l.Running() {
		t.Fatal("loop not running after Start")
	}
	if q.Pending() != 1 {
		t.Fatalf("pending frames = %d, want 1", q.Pending())
	}
	fireAt(q, 0)
	l.Start()
	if q.Pending() != 1 {
		t.Errorf("pending frames after a frame = %d, want 1", q.Pending())
	}
}

func TestStopEndsChain(t *testing.T) {
	l, q, r := newTestLoop(800, 600)
	l.Start()
	l.Stop()
	l.Stop()
	if l.Running() {
		t.Fatal("loop running after Stop")
	}

	fireAt(q, 0)
	if len(r.frames) != 0 {
		t.Errorf("stopped loop rendered %d frames", len(r.frames))
	}
	if q.Pending() != 0 {
		t.Errorf("stopped loop requested another frame")
	}

	l.Start()
	if q.Pending() != 1 {
		t.Errorf("restart did not begin a new chain")
	}
}

func TestStopRestartBeforeFrame(t *testing.T) {
	l, q, r := newTestLoop(800, 600)
	l.Start()
	l.Stop()
	l.Start()
	if q.Pending() != 1 {
		t.Fatalf("pending frames = %d, want 1", q.Pending())
	}
	fireAt(q, 0)
	if len(r.frames) != 1 {
		t.Errorf("rendered %d frames, want 1", len(r.frames))
	}
}

func TestStartClearsParticles(t *testing.T) {
	l, _, _ := newTestLoop(800, 600)
	l.Autofire()
	l.Start()
	if l.Len() != 0 {
		t.Errorf("Len() = %d after Start, want 0", l.Len())
	}
}

func TestFrameAdvancesBeforeRender(t *testing.T) {
	l, q, r := newTestLoop(800, 600)
	l.Start()
	l.Autofire()

	fireAt(q, 0)
	fireAt(q, 0.5)

	if len(r.ages) != 2 {
		t.Fatalf("rendered %d frames, want 2", len(r.ages))
	}
	for _, age := range r.ages[0] {
		if age != 0 {
			t.Fatalf("first frame age %v, want 0", age)
		}
	}
	for _, age := range r.ages[1] {
		if math.Abs(age-0.5) > 1e-9 {
			t.Fatalf("second frame age %v, want 0.5", age)
		}
	}

	for _, p := range l.Particles() {
		if !p.Position.IsFinite() {
			t.Fatalf("non-finite position %+v", p.Position)
		}
		if p.Position == p.Origin {
			t.Fatalf("paper did not move")
		}
		if p.Alpha != p.Color.BaseAlpha {
			t.Fatalf("alpha %v before fade.t0, want %v", p.Alpha, p.Color.BaseAlpha)
		}
	}
}

func TestCullFaded(t *testing.T) {
	l, q, _ := newTestLoop(800, 1e6)
	l.Start()
	l.Autofire()

	fireAt(q, 0)
	for i := 1; i < MaintenanceInterval-1; i++ {
		fireAt(q, 3.5)
	}
	if l.Len() == 0 {
		t.Fatal("papers culled before a maintenance pass")
	}
	for _, p := range l.Particles() {
		if p.Alpha <= 0 || p.Alpha >= p.Color.BaseAlpha {
			t.Fatalf("alpha %v at age 3.5, want partially faded", p.Alpha)
		}
	}

	fireAt(q, 5)
	if l.Len() != 0 {
		t.Errorf("Len() = %d after fade-out, want 0", l.Len())
	}
}

func TestCullBelowViewport(t *testing.T) {
	l, q, _ := newTestLoop(200, 100)
	l.Start()
	l.Spawn(physics.Vec2{X: 100, Y: 1000}, physics.Vec2{X: 100, Y: 1100})
	if l.Len() == 0 {
		t.Fatal("nothing spawned")
	}
	for i := 0; i < MaintenanceInterval; i++ {
		fireAt(q, float64(i)/60)
	}
	if l.Len() != 0 {
		t.Errorf("Len() = %d, papers below the viewport must be culled", l.Len())
	}
}

func TestFrameRate(t *testing.T) {
	l, q, r := newTestLoop(800, 600)
	l.Start()
	for i := 0; i < MaintenanceInterval; i++ {
		fireAt(q, float64(i)/60)
	}
	if math.Abs(l.FPS()-60) > 1e-3 {
		t.Errorf("first window FPS() = %v, want 60", l.FPS())
	}
	for i := MaintenanceInterval; i < 2*MaintenanceInterval; i++ {
		fireAt(q, float64(i)/60)
	}
	if math.Abs(l.FPS()-60) > 1e-3 {
		t.Errorf("FPS() = %v, want 60", l.FPS())
	}
	if last := r.frames[len(r.frames)-1]; last.Count != 2*MaintenanceInterval-1 {
		t.Errorf("last frame count %d", last.Count)
	}
}

type counter struct{ n int }

func (c *counter) OnFrame(Frame) { c.n++ }

func TestObserver(t *testing.T) {
	l, q, _ := newTestLoop(800, 600)
	c := &counter{}
	l.AddObserver(c)
	l.Start()
	fireAt(q, 0)
	fireAt(q, 0.1)
	if c.n != 2 {
		t.Errorf("observer saw %d frames, want 2", c.n)
	}
}

func TestObservePopulation(t *testing.T) {
	l, q, _ := newTestLoop(800, 600)
	pop := metrics.NewPopulation(16)
	l.AddObserver(ObservePopulation(pop))
	l.Start()
	fireAt(q, 0)
	n := l.Autofire()
	fireAt(q, 0.1)
	if pop.Peak() != n || pop.Value() != float64(n) {
		t.Errorf("peak %d, last %v, want %d", pop.Peak(), pop.Value(), n)
	}
	if len(pop.History()) != 2 || pop.History()[0] != 0 {
		t.Errorf("history %v", pop.History())
	}
}
