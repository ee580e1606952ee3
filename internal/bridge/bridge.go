// Package bridge connects a render context and its control panels over a
// transport. Each side owns its own configuration tree and converges on the
// other's only through messages.
//
// Transports call Receive on their own goroutines; Receive only decodes and
// queues. Drain applies queued messages and must be called from the goroutine
// that owns the tree.
package bridge

import (
	"context"
	"io"
	"log"
	"sync"

	"github.com/san-kum/confetti/internal/protocol"
	"github.com/san-kum/confetti/internal/transport"
)

func discard(l *log.Logger) *log.Logger {
	if l == nil {
		return log.New(io.Discard, "", 0)
	}
	return l
}

// endpoint holds what both sides share: the transport, the inbound queue and
// the send logging policy.
type endpoint struct {
	name  string
	tr    transport.Transport
	log   *log.Logger
	debug *log.Logger

	mu    sync.Mutex
	inbox []protocol.Message
}

func (e *endpoint) receive(raw []byte) error {
	m, err := protocol.Decode(raw)
	if err != nil {
		e.log.Printf("%s: %v", e.name, err)
		return err
	}
	e.mu.Lock()
	e.inbox = append(e.inbox, m)
	e.mu.Unlock()
	return nil
}

func (e *endpoint) take() []protocol.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	msgs := e.inbox
	e.inbox = nil
	return msgs
}

// Pending reports how many received messages wait for Drain.
func (e *endpoint) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.inbox)
}

func (e *endpoint) send(ctx context.Context, m protocol.Message) transport.Result {
	raw, err := protocol.Encode(m)
	if err != nil {
		e.log.Printf("%s: %v", e.name, err)
		return transport.Result{Outcome: transport.Failed, Err: err}
	}
	r := e.tr.Send(ctx, raw)
	switch r.Outcome {
	case transport.NoListener:
		e.debug.Printf("%s: %s not delivered: no listener", e.name, m.Type)
	case transport.Failed:
		e.log.Printf("%s: sending %s failed: %v", e.name, m.Type, r.Err)
	}
	return r
}
