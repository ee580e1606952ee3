package viz

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/confetti/internal/bridge"
	"github.com/san-kum/confetti/internal/config"
	"github.com/san-kum/confetti/internal/gesture"
	"github.com/san-kum/confetti/internal/metrics"
	"github.com/san-kum/confetti/internal/render"
	"github.com/san-kum/confetti/internal/sim"
	"github.com/san-kum/confetti/internal/transport"
)

const (
	frameInterval = time.Second / 60
	statusLines   = 2
	historyLen    = 600
	defaultScale  = 2
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

type Options struct {
	Tree      *config.Tree
	Transport transport.Transport
	Bridge    bridge.RendererOptions
	Rand      *rand.Rand
	Logger    *log.Logger
	// Scale is the number of logical pixels per braille dot.
	Scale float64
	// Show starts the confetti layer visible.
	Show bool
}

// App is the bubbletea model of the terminal render context.
type App struct {
	ctx        context.Context
	tree       *config.Tree
	surface    *BrailleSurface
	queue      *sim.FrameQueue
	loop       *sim.Loop
	tracker    *gesture.Tracker
	renderer   *bridge.Renderer
	population *metrics.Population
	log        *log.Logger

	epoch    time.Time
	visible  bool
	hiddenAt time.Time
	width    int
	height   int
	panel    string
	showOnUp bool
}

func NewApp(opts Options) *App {
	if opts.Tree == nil {
		opts.Tree = config.Default(opts.Logger)
	}
	if opts.Scale <= 0 {
		opts.Scale = defaultScale
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
		surface:    NewBrailleSurface(80, 24-statusLines, opts.Scale),
		queue:      sim.NewFrameQueue(),
		tracker:    gesture.NewTracker(),
		population: metrics.NewPopulation(historyLen),
		log:        opts.Logger,
		width:      80,
		height:     24,
		showOnUp:   opts.Show,
	}
	painter := render.NewPainter(a.surface, a.tree, a.tracker.Active)
	a.loop = sim.New(a.tree, a.queue, painter, opts.Rand, opts.Logger)
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
		a.panel = fmt.Sprintf("%.0fx%.0f", w, h)
	}
	return a
}

// WithContext sets the context used for sends made from the update loop.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

func (a *App) Loop() *sim.Loop                 { return a.loop }
func (a *App) Renderer() *bridge.Renderer      { return a.renderer }
func (a *App) Surface() *BrailleSurface        { return a.surface }
func (a *App) Population() *metrics.Population { return a.population }

func (a *App) Init() tea.Cmd {
	a.epoch = time.Now()
	if a.showOnUp {
		a.renderer.Show(a.ctx)
	}
	return tick()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.surface.ResizeCells(msg.Width, max(msg.Height-statusLines, 1))
	case tea.KeyMsg:
		return a, a.handleKey(msg)
	case tea.MouseMsg:
		a.handleMouse(msg)
	case TickMsg:
		a.frame(time.Time(msg))
		return a, tick()
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		a.renderer.Hide()
		return tea.Quit
	case " ":
		a.renderer.Toggle(a.ctx)
	case "a":
		a.autofire()
	case "f":
		a.renderer.Apply(a.ctx, "cfg.ui.showFps", !a.tree.Bool(config.KeyShowFPS))
	case "i":
		a.renderer.Apply(a.ctx, "cfg.ui.invertColors", !a.tree.Bool(config.KeyInvertColors))
	}
	return nil
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

func (a *App) handleMouse(msg tea.MouseMsg) {
	if !a.loop.Running() || msg.Y >= a.surface.Canvas().Height {
		a.tracker.CancelAll()
		return
	}
	p := a.surface.CellCenter(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			a.tracker.Down(gesture.MouseID, p)
		}
	case tea.MouseActionMotion:
		a.tracker.Move(gesture.MouseID, p)
	case tea.MouseActionRelease:
		a.tracker.Move(gesture.MouseID, p)
		a.tracker.Up(gesture.MouseID)
	}
}

func (a *App) frame(now time.Time) {
	a.renderer.Drain(a.ctx)
	a.queue.Fire(now.Sub(a.epoch))

	switch {
	case a.loop.Running():
		a.visible = true
		a.hiddenAt = time.Time{}
	case a.visible && a.hiddenAt.IsZero():
		a.hiddenAt = now
	case a.visible && now.Sub(a.hiddenAt) >= sim.TeardownGrace:
		a.visible = false
		bg, _ := render.Scheme(a.tree.Bool(config.KeyInvertColors))
		a.surface.Clear(bg)
	}
}

func (a *App) View() string {
	var b strings.Builder
	if a.visible {
		b.WriteString(a.surface.String())
	} else {
		b.WriteString(strings.Repeat("\n", a.surface.Canvas().Height))
	}
	b.WriteString(a.status())
	return b.String()
}

func (a *App) status() string {
	state := statusHidden.Render("○ hidden")
	if a.loop.Running() {
		state = statusRunning.Render("● running")
	}
	line := titleStyle.Render("confetti") + "  " + state +
		labelStyle.Render("  papers ") + valueStyle.Render(fmt.Sprintf("%d", a.loop.Len())) +
		labelStyle.Render("  peak ") + valueStyle.Render(fmt.Sprintf("%d", a.population.Peak())) +
		labelStyle.Render("  fired ") + valueStyle.Render(fmt.Sprintf("%d", a.population.Total()))
	if a.panel != "" {
		line += labelStyle.Render("  panel ") + valueStyle.Render(a.panel)
	}
	line += "  " + Sparkline(a.population.History(), 24)
	return line + "\n" + keyHints("space", "show/hide", "a", "autofire", "f", "fps", "i", "invert", "q", "quit")
}

// Run starts the terminal render context and blocks until it quits.
func Run(ctx context.Context, a *App) error {
	a.WithContext(ctx)
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
