package sim

import (
	"io"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/confetti/internal/config"
	"github.com/san-kum/confetti/internal/metrics"
	"github.com/san-kum/confetti/internal/physics"
)

const (
	// MaintenanceInterval is the number of frames between FPS updates and
	// culling passes.
	MaintenanceInterval = 10

	// TeardownGrace is how long a host keeps its surface after Stop so the
	// last frames can fade out.
	TeardownGrace = 300 * time.Millisecond
)

// Loop owns the live particle set and the per-frame update chain. All methods
// must be called from the goroutine that fires the scheduler.
type Loop struct {
	cfg      *config.Tree
	sched    Scheduler
	renderer Renderer
	rng      *rand.Rand
	log      *log.Logger

	running   bool
	chained   bool
	primed    bool
	last      time.Duration
	frames    int
	particles []Particle
	fps       *metrics.FrameRate
	observers []Observer
}

func New(cfg *config.Tree, sched Scheduler, renderer Renderer, rng *rand.Rand, logger *log.Logger) *Loop {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Loop{
		cfg:      cfg,
		sched:    sched,
		renderer: renderer,
		rng:      rng,
		log:      logger,
		fps:      metrics.NewFrameRate(),
	}
}

func (l *Loop) AddObserver(o Observer) {
	l.observers = append(l.observers, o)
}

// Start clears the live set and begins the frame chain. Starting a running
// loop does nothing.
func (l *Loop) Start() {
	if l.running {
		return
	}
	l.particles = l.particles[:0]
	l.frames = 0
	l.primed = false
	l.fps.Reset()
	l.running = true
	l.log.Printf("sim: start")
	if !l.chained {
		l.chained = true
		l.sched.RequestFrame(l.frame)
	}
}

// Stop ends the chain at the next frame. Live papers are kept until the next
// Start.
func (l *Loop) Stop() {
	if !l.running {
		return
	}
	l.running = false
	l.log.Printf("sim: stop")
}

func (l *Loop) Running() bool { return l.running }

func (l *Loop) Len() int { return len(l.particles) }

func (l *Loop) FPS() float64 { return l.fps.Value() }

// Particles returns a copy of the live set.
func (l *Loop) Particles() []Particle {
	out := make([]Particle, len(l.particles))
	copy(out, l.particles)
	return out
}

func (l *Loop) frame(now time.Duration) {
	if !l.running {
		l.chained = false
		return
	}

	dt := 0.0
	if l.primed {
		dt = (now - l.last).Seconds()
		if dt < 0 {
			dt = 0
		}
		l.fps.Tick()
	} else {
		l.fps.Mark(now)
		l.primed = true
	}
	l.last = now

	l.advance(dt)

	f := Frame{Particles: l.particles, FPS: l.fps.Value(), Count: l.frames, Time: now}
	l.renderer.Render(f)
	for _, o := range l.observers {
		o.OnFrame(f)
	}

	l.frames++
	if l.frames%MaintenanceInterval == 0 {
		l.fps.Observe(now)
		l.cull()
	}

	l.sched.RequestFrame(l.frame)
}

func (l *Loop) advance(dt float64) {
	g := l.cfg.Scalar(config.KeyGravity)
	fade := physics.Fade{
		T0: l.cfg.Scalar(config.KeyFadeT0),
		T1: l.cfg.Scalar(config.KeyFadeT1),
	}
	for i := range l.particles {
		p := &l.particles[i]
		p.Age += dt
		drag := physics.Drag{G: g, VT: p.Terminal}
		p.Position = drag.Position(p.Origin, p.Velocity, p.Age)
		p.Alpha = p.Color.BaseAlpha * fade.At(p.Age)
	}
}

func (l *Loop) cull() {
	_, h := l.renderer.Size()
	bottom := h +
		math.Abs(l.cfg.Scalar(config.KeyWidth)) +
		math.Abs(l.cfg.Scalar(config.KeyHeight)) +
		math.Abs(l.cfg.Scalar(config.KeySkew))

	before := len(l.particles)
	live := l.particles[:0]
	for _, p := range l.particles {
		if p.Alpha > 0 && p.Position.Y < bottom+p.Rotation.Shift {
			live = append(live, p)
		}
	}
	for i := len(live); i < before; i++ {
		l.particles[i] = Particle{}
	}
	l.particles = live
}
