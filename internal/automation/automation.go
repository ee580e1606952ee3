// Package automation replays scripted confetti scenarios headlessly on a
// virtual 60 Hz clock, driving the render context through the same bridge a
// panel uses.
package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/confetti/internal/bridge"
	"github.com/san-kum/confetti/internal/config"
	"github.com/san-kum/confetti/internal/export"
	"github.com/san-kum/confetti/internal/metrics"
	"github.com/san-kum/confetti/internal/physics"
	"github.com/san-kum/confetti/internal/render"
	"github.com/san-kum/confetti/internal/sim"
	"github.com/san-kum/confetti/internal/storage"
	"github.com/san-kum/confetti/internal/transport"
)

// Step actions.
const (
	ActionShow     = "show"
	ActionHide     = "hide"
	ActionAutofire = "autofire"
	ActionSpawn    = "spawn"
	ActionSet      = "set"
	ActionSnapshot = "snapshot"
)

const (
	defaultWidth  = 800
	defaultHeight = 600
	// tail is how long a scenario without a duration runs past its last step.
	tail = 5.0
)

var ErrInvalidScenario = errors.New("automation: invalid scenario")

// Scenario defines a scripted confetti session
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
	Duration    float64 `yaml:"duration"`
	Preset      string  `yaml:"preset"`
	Steps       []Step  `yaml:"steps"`
}

// Step is a single timed action. At is in seconds from the start.
type Step struct {
	At     float64    `yaml:"at"`
	Action string     `yaml:"action"`
	Path   string     `yaml:"path,omitempty"`
	Value  any        `yaml:"value,omitempty"`
	From   [2]float64 `yaml:"from,omitempty"`
	To     [2]float64 `yaml:"to,omitempty"`
	File   string     `yaml:"file,omitempty"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks step order and the fields each action needs.
func (sc *Scenario) Validate() error {
	if sc.Preset != "" && config.GetPreset(sc.Preset) == nil {
		return fmt.Errorf("%w: unknown preset %q", ErrInvalidScenario, sc.Preset)
	}
	last := 0.0
	for i, st := range sc.Steps {
		if st.At < last {
			return fmt.Errorf("%w: step %d at %.2fs is before the previous step", ErrInvalidScenario, i+1, st.At)
		}
		last = st.At
		switch st.Action {
		case ActionShow, ActionHide, ActionAutofire, ActionSpawn:
		case ActionSet:
			if st.Path == "" || st.Value == nil {
				return fmt.Errorf("%w: step %d: set needs path and value", ErrInvalidScenario, i+1)
			}
		case ActionSnapshot:
			if st.File == "" {
				return fmt.Errorf("%w: step %d: snapshot needs a file", ErrInvalidScenario, i+1)
			}
		default:
			return fmt.Errorf("%w: step %d: unknown action %q", ErrInvalidScenario, i+1, st.Action)
		}
	}
	return nil
}

func (sc *Scenario) size() (float64, float64) {
	w, h := sc.Width, sc.Height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

func (sc *Scenario) length() time.Duration {
	d := sc.Duration
	if d <= 0 {
		d = tail
		if n := len(sc.Steps); n > 0 {
			d += sc.Steps[n-1].At
		}
	}
	return time.Duration(d * float64(time.Second))
}

// StepResult is the state right after a step ran.
type StepResult struct {
	Step Step
	Time time.Duration
	Live int
	Err  error
}

type Report struct {
	Frames  int
	Spawned int
	Peak    int
	Steps   []StepResult
}

// Runner executes scenarios.
type Runner struct {
	// Tree is the starting configuration, copied per run. Nil means the
	// defaults.
	Tree *config.Tree
	Seed int64
	// OutDir is where snapshot files are written.
	OutDir string
	Logger *log.Logger
}

// recorder is a headless sim.Renderer that keeps the latest frame.
type recorder struct {
	w, h float64
	last sim.Frame
}

func (r *recorder) Size() (float64, float64) { return r.w, r.h }

func (r *recorder) Render(f sim.Frame) {
	f.Particles = append([]sim.Particle(nil), f.Particles...)
	r.last = f
}

// session is one scenario run: a render context and a panel joined by a
// pipe.
type session struct {
	tree     *config.Tree
	rec      *recorder
	queue    *sim.FrameQueue
	loop     *sim.Loop
	pop      *metrics.Population
	renderer *bridge.Renderer
	panel    *bridge.Panel
}

// Run plays sc to its end. Steps due at a frame run right after it, so a
// snapshot shows the frame of its own time.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (Report, error) {
	logger := r.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &session{tree: config.Default(logger)}
	if r.Tree != nil {
		s.tree = r.Tree.Clone()
	}
	s.tree.ApplyAll(config.GetPreset(sc.Preset))

	w, h := sc.size()
	s.rec = &recorder{w: w, h: h}
	s.queue = sim.NewFrameQueue()
	s.loop = sim.New(s.tree, s.queue, s.rec, rand.New(rand.NewSource(r.Seed)), logger)
	s.pop = metrics.NewPopulation(0)
	s.loop.AddObserver(sim.ObservePopulation(s.pop))

	renderEnd, panelEnd := transport.Pipe()
	writer := storage.NewWriter(storage.NewMemoryStore(), logger)
	defer writer.Close()
	s.renderer = bridge.NewRenderer(s.tree, s.loop, renderEnd, bridge.RendererOptions{Writer: writer, Logger: logger})
	s.renderer.OnSpawn = s.pop.Spawned
	s.panel = bridge.NewPanel(config.Default(nil), panelEnd, logger, nil)

	s.renderer.Prepare(ctx)
	s.panel.Drain(ctx)

	var rep Report
	end := sc.length()
	next := 0
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		now := time.Duration(i) * sim.FrameStep
		if now > end {
			break
		}
		rep.Frames += s.queue.Fire(now)

		for next < len(sc.Steps) && time.Duration(sc.Steps[next].At*float64(time.Second)) <= now {
			st := sc.Steps[next]
			err := r.exec(ctx, s, st)
			if err != nil {
				logger.Printf("automation: step %d (%s): %v", next+1, st.Action, err)
			}
			s.renderer.Drain(ctx)
			s.panel.Drain(ctx)
			rep.Steps = append(rep.Steps, StepResult{Step: st, Time: now, Live: s.loop.Len(), Err: err})
			next++
		}
	}

	rep.Spawned = s.pop.Total()
	rep.Peak = s.pop.Peak()
	return rep, nil
}

func (r *Runner) exec(ctx context.Context, s *session, st Step) error {
	switch st.Action {
	case ActionShow:
		if res := s.panel.RequestShow(ctx); !res.OK() {
			return fmt.Errorf("show: %s", res.Outcome)
		}
	case ActionHide:
		s.renderer.Hide()
	case ActionAutofire:
		if res := s.panel.Fire(ctx); !res.OK() {
			return fmt.Errorf("autofire: %s", res.Outcome)
		}
	case ActionSpawn:
		if !s.loop.Running() {
			return errors.New("spawn while hidden")
		}
		s.pop.Spawned(s.loop.Spawn(physics.Vec2{X: st.From[0], Y: st.From[1]}, physics.Vec2{X: st.To[0], Y: st.To[1]}))
	case ActionSet:
		if !s.panel.Set(ctx, st.Path, st.Value) {
			return fmt.Errorf("set %s = %v: rejected or unchanged", st.Path, st.Value)
		}
	case ActionSnapshot:
		return r.snapshot(st.File, s)
	}
	return nil
}

// snapshot paints the latest frame as SVG.
func (r *Runner) snapshot(file string, s *session) error {
	surface := export.NewSVGSurface(s.rec.w, s.rec.h)
	render.NewPainter(surface, s.tree, nil).Render(s.rec.last)

	path := file
	if r.OutDir != "" && !filepath.IsAbs(file) {
		path = filepath.Join(r.OutDir, file)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(surface.String()), 0644)
}
