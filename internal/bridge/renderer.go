package bridge

import (
	"context"
	"log"
	"time"

	"github.com/san-kum/confetti/internal/config"
	"github.com/san-kum/confetti/internal/protocol"
	"github.com/san-kum/confetti/internal/sim"
	"github.com/san-kum/confetti/internal/storage"
	"github.com/san-kum/confetti/internal/transport"
)

type RendererOptions struct {
	// Store is read when the configuration is first loaded. Defaults to an
	// in-memory store.
	Store storage.Store
	// Writer persists snapshots. Defaults to a writer over Store.
	Writer *storage.Writer
	// Journal, when set, records every applied update.
	Journal *storage.Journal
	// Version is the schema version of the persisted keys.
	Version int
	Logger  *log.Logger
	// Debug receives low-severity lines such as undelivered messages.
	Debug *log.Logger
}

// Renderer is the render-context side of the bridge.
type Renderer struct {
	endpoint

	tree    *config.Tree
	loop    *sim.Loop
	store   storage.Store
	writer  *storage.Writer
	journal *storage.Journal
	version int

	defaults config.Snapshot
	loaded   bool

	// OnPanelSize is called from Drain when a panel reports its size.
	OnPanelSize func(w, h float64)
	// OnSpawn is called with the size of every burst a panel fires.
	OnSpawn func(n int)
}

func NewRenderer(tree *config.Tree, loop *sim.Loop, tr transport.Transport, opts RendererOptions) *Renderer {
	if opts.Store == nil {
		opts.Store = storage.NewMemoryStore()
	}
	if opts.Version == 0 {
		opts.Version = storage.SchemaVersion
	}
	logger := discard(opts.Logger)
	if opts.Writer == nil {
		opts.Writer = storage.NewWriter(opts.Store, logger)
	}
	r := &Renderer{
		endpoint: endpoint{name: "renderer", tr: tr, log: logger, debug: discard(opts.Debug)},
		tree:     tree,
		loop:     loop,
		store:    opts.Store,
		writer:   opts.Writer,
		journal:  opts.Journal,
		version:  opts.Version,
	}
	tr.OnReceive(r.Receive)
	return r
}

// Receive decodes raw and queues it for Drain. Malformed payloads are
// returned to the transport as errors.
func (r *Renderer) Receive(raw []byte) error {
	return r.receive(raw)
}

// Drain applies every queued message in arrival order.
func (r *Renderer) Drain(ctx context.Context) int {
	msgs := r.take()
	for _, m := range msgs {
		r.handle(ctx, m)
	}
	return len(msgs)
}

func (r *Renderer) handle(ctx context.Context, m protocol.Message) {
	switch m.Type {
	case protocol.TypeUpdate:
		r.apply(m.Path, m.Value)
	case protocol.TypeAutofire:
		if r.loop.Len() > 0 {
			r.debug.Printf("renderer: autofire ignored, %d papers live", r.loop.Len())
			return
		}
		if !r.loop.Running() {
			r.Show(ctx)
		}
		n := r.loop.Autofire()
		if r.OnSpawn != nil {
			r.OnSpawn(n)
		}
	case protocol.TypeShow:
		r.Show(ctx)
	case protocol.TypePanelSize:
		if r.OnPanelSize != nil {
			r.OnPanelSize(m.Width, m.Height)
		}
	default:
		r.debug.Printf("renderer: ignoring %s", m.Type)
	}
}

// Apply is the entry point for edits made in the render context itself. A
// changed value is persisted and sent to the panels.
func (r *Renderer) Apply(ctx context.Context, path string, value any) bool {
	if !r.apply(path, value) {
		return false
	}
	v, _ := r.tree.Get(path)
	r.send(ctx, protocol.Update(path, v))
	return true
}

// apply updates the render tree and persists the configuration when the
// value changed.
func (r *Renderer) apply(path string, value any) bool {
	if !r.tree.Update(path, value) {
		return false
	}
	v, _ := r.tree.Get(path)
	r.persist(path, v)
	return true
}

func (r *Renderer) persist(path string, value any) {
	r.writer.Set(storage.ConfigurationKey(r.version), r.tree.Flatten())
	if r.journal == nil {
		return
	}
	if err := r.journal.Append(storage.JournalEntry{Time: time.Now().UTC(), Path: path, Value: value}); err != nil {
		r.log.Printf("renderer: journal: %v", err)
	}
}

// Prepare makes sure defaults and configuration are loaded and persisted,
// then sends both to the panels. The stored configuration is only read the
// first time; afterwards the in-memory tree is authoritative.
func (r *Renderer) Prepare(ctx context.Context) {
	if r.defaults == nil {
		r.defaults = r.tree.Flatten()
		r.writer.Set(storage.DefaultsKey(r.version), r.defaults)
	}

	if !r.loaded {
		r.loaded = true
		key := storage.ConfigurationKey(r.version)
		stored, ok, err := r.store.Get(key)
		if err != nil {
			r.log.Printf("renderer: loading %s: %v", key, err)
		}
		if ok {
			n := r.tree.ApplyAll(stored)
			r.debug.Printf("renderer: applied %s (%d changed)", key, n)
		} else {
			r.writer.Set(key, r.tree.Flatten())
		}
		for _, err := range r.tree.Validate() {
			r.log.Printf("renderer: configuration: %v", err)
		}
	}

	r.send(ctx, protocol.Defaults(r.defaults))
	r.send(ctx, protocol.Configuration(r.tree.Flatten()))
}

// Show prepares and starts the loop if it is stopped.
func (r *Renderer) Show(ctx context.Context) {
	r.Prepare(ctx)
	if !r.loop.Running() {
		r.loop.Start()
	}
}

func (r *Renderer) Hide() {
	r.loop.Stop()
}

func (r *Renderer) Toggle(ctx context.Context) {
	if r.loop.Running() {
		r.Hide()
		return
	}
	r.Show(ctx)
}

// Defaults returns the cached defaults snapshot, empty before Prepare.
func (r *Renderer) Defaults() config.Snapshot {
	return r.defaults.Clone()
}

// Flush waits for queued persistence writes.
func (r *Renderer) Flush() {
	r.writer.Flush()
}
