package bridge_test

import (
	"context"
	"math/rand"
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/confetti/internal/bridge"
	"github.com/san-kum/confetti/internal/config"
	"github.com/san-kum/confetti/internal/protocol"
	"github.com/san-kum/confetti/internal/sim"
	"github.com/san-kum/confetti/internal/storage"
	"github.com/san-kum/confetti/internal/transport"
)

// countingStore records how many snapshots reached the store per key.
type countingStore struct {
	*storage.MemoryStore
	mu   sync.Mutex
	sets map[string]int
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: storage.NewMemoryStore(), sets: map[string]int{}}
}

func (s *countingStore) Set(key string, snap config.Snapshot) error {
	s.mu.Lock()
	s.sets[key]++
	s.mu.Unlock()
	return s.MemoryStore.Set(key, snap)
}

func (s *countingStore) count(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets[key]
}

var _ = Describe("Bridge", func() {
	var (
		ctx        context.Context
		store      *countingStore
		writer     *storage.Writer
		queue      *sim.FrameQueue
		loop       *sim.Loop
		renderTree *config.Tree
		renderer   *bridge.Renderer
		panel      *bridge.Panel
		renderEnd  transport.Transport
		panelEnd   transport.Transport
		configKey  string
	)

	newRenderer := func(opts bridge.RendererOptions) {
		renderTree = config.Default(nil)
		queue = sim.NewFrameQueue()
		loop = sim.New(renderTree, queue, sim.Headless{W: 800, H: 600}, rand.New(rand.NewSource(7)), nil)
		renderer = bridge.NewRenderer(renderTree, loop, renderEnd, opts)
	}

	BeforeEach(func() {
		ctx = context.Background()
		configKey = storage.ConfigurationKey(storage.SchemaVersion)
		renderEnd, panelEnd = transport.Pipe()
		store = newCountingStore()
		writer = storage.NewWriter(store, nil)
		DeferCleanup(writer.Close)
		newRenderer(bridge.RendererOptions{Store: store, Writer: writer})
		panel = bridge.NewPanel(config.Default(nil), panelEnd, nil, nil)
	})

	Describe("Prepare", func() {
		It("persists defaults and configuration when nothing is stored", func() {
			renderer.Prepare(ctx)
			renderer.Flush()

			Expect(store.count(storage.DefaultsKey(storage.SchemaVersion))).To(Equal(1))
			Expect(store.count(configKey)).To(Equal(1))
			stored, ok, err := store.Get(configKey)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(stored).To(HaveLen(len(renderTree.Flatten())))
		})

		It("applies a stored configuration", func() {
			snap := config.Default(nil).Flatten()
			snap["cfg.count.range-min"] = 10.0
			snap["cfg.count.range-max"] = 20.0
			Expect(store.MemoryStore.Set(configKey, snap)).To(Succeed())

			renderer.Prepare(ctx)
			Expect(renderTree.Range(config.KeyCount)).To(Equal(config.Range{Min: 10, Max: 20}))
			renderer.Flush()
			Expect(store.count(configKey)).To(BeZero())
		})

		It("caches defaults across calls", func() {
			renderer.Prepare(ctx)
			renderTree.Update("cfg.physics.g", 100.0)
			renderer.Prepare(ctx)
			renderer.Flush()

			Expect(renderer.Defaults()["cfg.physics.g"]).To(Equal(config.DefaultGravity))
			Expect(store.count(storage.DefaultsKey(storage.SchemaVersion))).To(Equal(1))
		})

		It("tolerates a missing panel", func() {
			Expect(func() { renderer.Prepare(ctx) }).NotTo(Panic())
		})
	})

	Describe("panel initialization", func() {
		It("adopts defaults and configuration once", func() {
			snap := config.Default(nil).Flatten()
			snap["cfg.v0.threshold"] = 25.0
			Expect(store.MemoryStore.Set(configKey, snap)).To(Succeed())
			readyCalls := 0
			panel.OnReady = func() { readyCalls++ }

			renderer.Prepare(ctx)
			panel.Drain(ctx)
			Expect(panel.Ready()).To(BeTrue())
			Expect(readyCalls).To(Equal(1))
			Expect(panel.Tree().Scalar(config.KeyThreshold)).To(Equal(25.0))
			Expect(panel.Defaults()["cfg.v0.threshold"]).To(Equal(config.DefaultThreshold))

			panel.Tree().Update("cfg.v0.threshold", 40.0)
			renderer.Prepare(ctx)
			panel.Drain(ctx)
			Expect(readyCalls).To(Equal(1))
			Expect(panel.Tree().Scalar(config.KeyThreshold)).To(Equal(40.0))
		})

		It("waits for both halves", func() {
			raw, err := protocol.Encode(protocol.Defaults(config.Default(nil).Flatten()))
			Expect(err).NotTo(HaveOccurred())
			Expect(panel.Receive(raw)).To(Succeed())
			panel.Drain(ctx)
			Expect(panel.Ready()).To(BeFalse())

			raw, err = protocol.Encode(protocol.Configuration(config.Default(nil).Flatten()))
			Expect(err).NotTo(HaveOccurred())
			Expect(panel.Receive(raw)).To(Succeed())
			panel.Drain(ctx)
			Expect(panel.Ready()).To(BeTrue())
		})
	})

	Describe("updates", func() {
		BeforeEach(func() {
			renderer.Prepare(ctx)
			panel.Drain(ctx)
			renderer.Flush()
		})

		It("applies and persists a changed value", func() {
			before := store.count(configKey)
			Expect(panel.Set(ctx, "cfg.count.range-min", 60)).To(BeTrue())
			Expect(renderer.Pending()).To(Equal(1))
			renderer.Drain(ctx)
			renderer.Flush()

			Expect(renderTree.Range(config.KeyCount).Min).To(Equal(60.0))
			Expect(store.count(configKey)).To(Equal(before + 1))
			stored, _, _ := store.Get(configKey)
			Expect(stored["cfg.count.range-min"]).To(Equal(60.0))
		})

		It("does not persist an update that changes nothing", func() {
			before := store.count(configKey)
			raw, err := protocol.Encode(protocol.Update("cfg.count.range-min", 160.0))
			Expect(err).NotTo(HaveOccurred())
			Expect(renderer.Receive(raw)).To(Succeed())
			renderer.Drain(ctx)
			renderer.Flush()

			Expect(store.count(configKey)).To(Equal(before))
		})

		It("does not send an unchanged panel value", func() {
			Expect(panel.Set(ctx, "cfg.count.range-min", 160.0)).To(BeFalse())
			Expect(renderer.Pending()).To(BeZero())
		})

		It("rejects an out-of-schema path without touching the tree", func() {
			before := renderTree.Flatten()
			raw, err := protocol.Encode(protocol.Update("cfg.nonexistent.field", 5.0))
			Expect(err).NotTo(HaveOccurred())
			Expect(renderer.Receive(raw)).To(Succeed())
			renderer.Drain(ctx)
			Expect(renderTree.Flatten()).To(Equal(before))
		})

		It("resets the panel to the defaults", func() {
			panel.Set(ctx, "cfg.count.range-min", 60.0)
			panel.Set(ctx, "cfg.ui.showFps", false)
			renderer.Drain(ctx)

			Expect(panel.Reset(ctx)).To(Equal(2))
			renderer.Drain(ctx)
			Expect(renderTree.Flatten()).To(Equal(config.Default(nil).Flatten()))
		})

		It("sends render-context edits to the panel", func() {
			Expect(renderer.Apply(ctx, "cfg.ui.showFps", false)).To(BeTrue())
			Expect(panel.Pending()).To(Equal(1))
			panel.Drain(ctx)
			Expect(panel.Tree().Bool(config.KeyShowFPS)).To(BeFalse())

			Expect(panel.Reset(ctx)).To(Equal(1))
			renderer.Drain(ctx)
			Expect(renderTree.Bool(config.KeyShowFPS)).To(BeTrue())
			Expect(panel.Pending()).To(BeZero())
		})

		It("does not send an unchanged render-context edit", func() {
			Expect(renderer.Apply(ctx, "cfg.ui.showFps", true)).To(BeFalse())
			Expect(panel.Pending()).To(BeZero())
		})

		It("journals applied updates", func() {
			path := filepath.Join(GinkgoT().TempDir(), "journal.jsonl.zst")
			j, err := storage.OpenJournal(path)
			Expect(err).NotTo(HaveOccurred())
			newRenderer(bridge.RendererOptions{Store: store, Writer: writer, Journal: j})
			panel.Set(ctx, "cfg.fade.t1", 6.0)
			renderer.Drain(ctx)
			Expect(j.Close()).To(Succeed())

			entries, err := storage.ReadJournal(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Path).To(Equal("cfg.fade.t1"))
			Expect(entries[0].Value).To(Equal(6.0))
		})
	})

	Describe("autofire", func() {
		send := func() {
			raw, err := protocol.Encode(protocol.Autofire())
			Expect(err).NotTo(HaveOccurred())
			Expect(renderer.Receive(raw)).To(Succeed())
			renderer.Drain(ctx)
		}

		It("shows the renderer and spawns a burst when nothing is live", func() {
			send()
			Expect(loop.Running()).To(BeTrue())
			Expect(loop.Len()).To(BeNumerically(">=", 160))
		})

		It("is ignored while papers are live", func() {
			send()
			n := loop.Len()
			send()
			Expect(loop.Len()).To(Equal(n))
		})

		It("is polled by the panel only while enabled", func() {
			Expect(panel.Autofire()).To(BeFalse())
			panel.SetAutofire(true)
			runCtx, cancel := context.WithCancel(ctx)
			done := make(chan struct{})
			go func() {
				defer close(done)
				panel.RunAutofire(runCtx)
			}()
			Eventually(renderer.Pending, "2s").Should(BeNumerically(">=", 1))
			cancel()
			Eventually(done).Should(BeClosed())

			renderer.Drain(ctx)
			Expect(loop.Len()).To(BeNumerically(">", 0))
		})
	})

	Describe("show and hide", func() {
		It("toggles the loop", func() {
			Expect(panel.RequestShow(ctx).OK()).To(BeTrue())
			renderer.Drain(ctx)
			Expect(loop.Running()).To(BeTrue())

			renderer.Toggle(ctx)
			Expect(loop.Running()).To(BeFalse())
			renderer.Toggle(ctx)
			Expect(loop.Running()).To(BeTrue())
			renderer.Hide()
			Expect(loop.Running()).To(BeFalse())
		})

		It("forwards the panel size", func() {
			var w, h float64
			renderer.OnPanelSize = func(pw, ph float64) { w, h = pw, ph }
			panel.ReportSize(ctx, 320, 200)
			renderer.Drain(ctx)
			Expect(w).To(Equal(320.0))
			Expect(h).To(Equal(200.0))
		})
	})

	Describe("malformed payloads", func() {
		It("are rejected at the boundary", func() {
			err := renderer.Receive([]byte(`{"type":"launch"}`))
			Expect(err).To(MatchError(protocol.ErrMalformed))
			Expect(renderer.Pending()).To(BeZero())
		})

		It("fail the sender's delivery", func() {
			r := panelEnd.Send(ctx, []byte(`{"type":"update","path":"cfg.count"}`))
			Expect(r.Outcome).To(Equal(transport.Failed))
			Expect(r.Err).To(MatchError(protocol.ErrMalformed))
		})
	})
})
