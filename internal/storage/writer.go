package storage

import (
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/san-kum/confetti/internal/config"
)

type writeReq struct {
	key  string
	snap config.Snapshot
	done chan struct{}
}

// Writer applies Set calls to a Store on a background goroutine, in the
// order they were submitted. Failures are logged, never returned.
type Writer struct {
	store Store
	log   *log.Logger

	ch     chan writeReq
	wg     sync.WaitGroup
	once   sync.Once
	closed atomic.Bool
	failed atomic.Int64
}

func NewWriter(store Store, logger *log.Logger) *Writer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	w := &Writer{
		store: store,
		log:   logger,
		ch:    make(chan writeReq, 64),
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.loop()
	}()
	return w
}

func (w *Writer) loop() {
	for req := range w.ch {
		if req.done != nil {
			close(req.done)
			continue
		}
		if err := w.store.Set(req.key, req.snap); err != nil {
			w.failed.Add(1)
			w.log.Printf("storage: persist %s: %v", req.key, err)
		}
	}
}

// Set queues a write of a copy of snap. It blocks only when the queue is full.
func (w *Writer) Set(key string, snap config.Snapshot) {
	if w.closed.Load() {
		w.log.Printf("storage: dropping write of %s: %v", key, ErrClosed)
		return
	}
	w.ch <- writeReq{key: key, snap: snap.Clone()}
}

// Flush waits until every write queued before it has been applied.
func (w *Writer) Flush() {
	if w.closed.Load() {
		return
	}
	done := make(chan struct{})
	w.ch <- writeReq{done: done}
	<-done
}

// Failed reports how many writes the store rejected.
func (w *Writer) Failed() int64 { return w.failed.Load() }

// Close drains the queue and stops the goroutine. It does not close the
// underlying store.
func (w *Writer) Close() error {
	w.once.Do(func() {
		w.closed.Store(true)
		close(w.ch)
		w.wg.Wait()
	})
	return nil
}
