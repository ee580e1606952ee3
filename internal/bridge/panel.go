package bridge

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/san-kum/confetti/internal/config"
	"github.com/san-kum/confetti/internal/protocol"
	"github.com/san-kum/confetti/internal/transport"
)

// AutofireInterval is the period of the panel's autofire poll.
const AutofireInterval = 300 * time.Millisecond

// Panel is the control-context side of the bridge.
type Panel struct {
	endpoint

	tree     *config.Tree
	defaults config.Snapshot

	pendingDefaults config.Snapshot
	pendingConfig   config.Snapshot
	ready           bool

	autofire atomic.Bool

	// OnReady is called from Drain once defaults and configuration have
	// both been applied.
	OnReady func()
}

func NewPanel(tree *config.Tree, tr transport.Transport, logger, debug *log.Logger) *Panel {
	p := &Panel{
		endpoint: endpoint{name: "panel", tr: tr, log: discard(logger), debug: discard(debug)},
		tree:     tree,
	}
	tr.OnReceive(p.Receive)
	return p
}

func (p *Panel) Receive(raw []byte) error {
	return p.receive(raw)
}

func (p *Panel) Drain(ctx context.Context) int {
	msgs := p.take()
	for _, m := range msgs {
		p.handle(m)
	}
	return len(msgs)
}

func (p *Panel) handle(m protocol.Message) {
	switch m.Type {
	case protocol.TypeDefaults:
		if p.ready || p.pendingDefaults != nil {
			p.debug.Printf("panel: ignoring repeated defaults")
			return
		}
		p.pendingDefaults = m.Snapshot
	case protocol.TypeConfiguration:
		if p.ready || p.pendingConfig != nil {
			p.debug.Printf("panel: ignoring repeated configuration")
			return
		}
		p.pendingConfig = m.Snapshot
	case protocol.TypeUpdate:
		p.tree.Update(m.Path, m.Value)
		return
	default:
		p.debug.Printf("panel: ignoring %s", m.Type)
		return
	}

	if p.pendingDefaults == nil || p.pendingConfig == nil {
		return
	}
	p.defaults = p.pendingDefaults.Normalize()
	n := p.tree.ApplyAll(p.pendingConfig.Normalize())
	p.pendingDefaults, p.pendingConfig = nil, nil
	p.ready = true
	p.log.Printf("panel: initialized (%d values differ from defaults)", n)
	if p.OnReady != nil {
		p.OnReady()
	}
}

// Ready reports whether the initial defaults and configuration arrived.
func (p *Panel) Ready() bool { return p.ready }

func (p *Panel) Tree() *config.Tree { return p.tree }

// Defaults returns the render context's defaults, empty until Ready.
func (p *Panel) Defaults() config.Snapshot { return p.defaults.Clone() }

// Set updates the local tree and forwards the change. Unchanged or rejected
// values send nothing.
func (p *Panel) Set(ctx context.Context, path string, value any) bool {
	if !p.tree.Update(path, value) {
		return false
	}
	v, _ := p.tree.Get(path)
	p.send(ctx, protocol.Update(path, v))
	return true
}

// Reset sets every value back to the defaults and returns how many changed.
func (p *Panel) Reset(ctx context.Context) int {
	if !p.ready {
		p.debug.Printf("panel: reset before initialization")
		return 0
	}
	n := 0
	for _, path := range p.tree.Paths() {
		v, ok := p.defaults[path]
		if !ok {
			continue
		}
		if p.Set(ctx, path, v) {
			n++
		}
	}
	return n
}

func (p *Panel) SetAutofire(on bool) { p.autofire.Store(on) }
func (p *Panel) Autofire() bool      { return p.autofire.Load() }

// RunAutofire sends an autofire request every AutofireInterval while autofire
// is enabled, until ctx is done.
func (p *Panel) RunAutofire(ctx context.Context) {
	ticker := time.NewTicker(AutofireInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if p.autofire.Load() {
				p.Fire(ctx)
			}
		}
	}
}

// Fire asks the render context for one autofire burst.
func (p *Panel) Fire(ctx context.Context) transport.Result {
	return p.send(ctx, protocol.Autofire())
}

func (p *Panel) RequestShow(ctx context.Context) transport.Result {
	return p.send(ctx, protocol.Show())
}

func (p *Panel) ReportSize(ctx context.Context, w, h float64) transport.Result {
	return p.send(ctx, protocol.PanelSize(w, h))
}
