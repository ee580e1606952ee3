// Package gui is the windowed render context, drawn with raylib.
package gui

import (
	"context"
	"io"
	"log"
	"math/rand"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/confetti/internal/bridge"
	"github.com/san-kum/confetti/internal/config"
	"github.com/san-kum/confetti/internal/gesture"
	"github.com/san-kum/confetti/internal/metrics"
	"github.com/san-kum/confetti/internal/render"
	"github.com/san-kum/confetti/internal/sim"
	"github.com/san-kum/confetti/internal/transport"
)

const (
	defaultWidth  = 1280
	defaultHeight = 720
	targetFPS     = 60
	historyLen    = 600
)

type Options struct {
	Tree      *config.Tree
	Transport transport.Transport
	Bridge    bridge.RendererOptions
	Rand      *rand.Rand
	Logger    *log.Logger
	Width     int
	Height    int
	Show      bool
}

type App struct {
	ctx        context.Context
	tree       *config.Tree
	surface    *Surface
	painter    *render.Painter
	queue      *sim.FrameQueue
	loop       *sim.Loop
	tracker    *gesture.Tracker
	input      *Input
	renderer   *bridge.Renderer
	population *metrics.Population
	log        *log.Logger

	epoch    time.Time
	visible  bool
	hiddenAt time.Time
	width    int
	height   int
	showOnUp bool
}

func NewApp(opts Options) *App {
	if opts.Tree == nil {
		opts.Tree = config.Default(opts.Logger)
	}
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Bridge.Logger == nil {
		opts.Bridge.Logger = opts.Logger
	}

	a := &App{
		ctx:        context.Background(),
		tree:       opts.Tree,
		surface:    NewSurface(float64(opts.Width), float64(opts.Height)),
		queue:      sim.NewFrameQueue(),
		tracker:    gesture.NewTracker(),
		population: metrics.NewPopulation(historyLen),
		log:        opts.Logger,
		width:      opts.Width,
		height:     opts.Height,
		showOnUp:   opts.Show,
	}
	a.input = NewInput(a.tracker)
	a.painter = render.NewPainter(a.surface, a.tree, a.tracker.Active)
	a.loop = sim.New(a.tree, a.queue, a.painter, opts.Rand, opts.Logger)
	a.loop.AddObserver(sim.ObservePopulation(a.population))
	a.tracker.OnShot = func(s gesture.Shot) {
		a.population.Spawned(a.loop.Spawn(s.Start, s.End))
	}

	tr := opts.Transport
	if tr == nil {
		tr, _ = transport.Pipe()
	}
	a.renderer = bridge.NewRenderer(a.tree, a.loop, tr, opts.Bridge)
	a.renderer.OnSpawn = a.population.Spawned
	a.renderer.OnPanelSize = func(w, h float64) {
		a.log.Printf("gui: panel is %.0fx%.0f", w, h)
	}
	return a
}

func (a *App) Loop() *sim.Loop            { return a.loop }
func (a *App) Renderer() *bridge.Renderer { return a.renderer }

func initWindow(w, h int) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(w), int32(h), "confetti")
	rl.SetTargetFPS(targetFPS)
	rl.SetExitKey(0)
}

// Run opens the window and blocks until it is closed, q is pressed or ctx
// is done.
func Run(ctx context.Context, a *App) error {
	initWindow(a.width, a.height)
	defer rl.CloseWindow()

	a.ctx = ctx
	a.epoch = time.Now()
	if a.showOnUp {
		a.renderer.Show(ctx)
	}
	for !rl.WindowShouldClose() && ctx.Err() == nil {
		if !a.update() {
			break
		}
		a.draw(time.Now())
	}
	a.renderer.Hide()
	return nil
}

func (a *App) update() bool {
	if rl.IsWindowResized() {
		a.surface.Resize(float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight()))
	}

	switch {
	case rl.IsKeyPressed(rl.KeyQ):
		return false
	case rl.IsKeyPressed(rl.KeySpace):
		a.renderer.Toggle(a.ctx)
	case rl.IsKeyPressed(rl.KeyA):
		a.autofire()
	case rl.IsKeyPressed(rl.KeyF):
		a.renderer.Apply(a.ctx, "cfg.ui.showFps", !a.tree.Bool(config.KeyShowFPS))
	case rl.IsKeyPressed(rl.KeyI):
		a.renderer.Apply(a.ctx, "cfg.ui.invertColors", !a.tree.Bool(config.KeyInvertColors))
	}

	if a.loop.Running() {
		a.input.Poll()
	} else {
		a.input.Reset()
	}
	return true
}

func (a *App) autofire() {
	if a.loop.Len() > 0 {
		return
	}
	if !a.loop.Running() {
		a.renderer.Show(a.ctx)
	}
	a.population.Spawned(a.loop.Autofire())
}

// draw runs one raylib frame. Requested loop frames paint through the
// surface; otherwise the last papers stay on screen for the teardown grace
// and the window is cleared after it.
func (a *App) draw(now time.Time) {
	rl.BeginDrawing()
	defer rl.EndDrawing()

	a.renderer.Drain(a.ctx)
	painted := a.queue.Fire(now.Sub(a.epoch)) > 0

	switch {
	case a.loop.Running():
		a.visible = true
		a.hiddenAt = time.Time{}
	case a.visible && a.hiddenAt.IsZero():
		a.hiddenAt = now
	case a.visible && now.Sub(a.hiddenAt) >= sim.TeardownGrace:
		a.visible = false
	}

	if painted {
		return
	}
	if a.visible {
		a.painter.Render(sim.Frame{Particles: a.loop.Particles(), FPS: a.loop.FPS()})
		return
	}
	bg, fg := render.Scheme(a.tree.Bool(config.KeyInvertColors))
	a.surface.Clear(bg)
	w, h := a.surface.Size()
	a.surface.Text(w/2, h-20, "[SPACE] SHOW  [A] AUTOFIRE  [F] FPS  [I] INVERT  [Q] QUIT", render.RGBA(fg.R, fg.G, fg.B, 0.4))
}
