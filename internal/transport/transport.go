// Package transport carries encoded sync messages between a render context
// and its control panel.
package transport

import (
	"context"
	"errors"
	"sync"
)

var ErrClosed = errors.New("transport: closed")

// Outcome classifies the result of a Send.
type Outcome int

const (
	Delivered Outcome = iota
	// NoListener means nothing was on the other end. This is expected
	// whenever the other context is not open.
	NoListener
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case NoListener:
		return "no listener"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

type Result struct {
	Outcome Outcome
	Err     error
}

func (r Result) OK() bool { return r.Outcome == Delivered }

// Handler receives one raw message. A non-nil error tells the transport the
// payload was rejected.
type Handler func(raw []byte) error

type Transport interface {
	Send(ctx context.Context, raw []byte) Result
	OnReceive(h Handler)
	Close() error
}

// Pipe returns two connected in-memory endpoints. Delivery is synchronous:
// Send returns after the peer's handler has run.
func Pipe() (Transport, Transport) {
	a := &pipeEnd{}
	b := &pipeEnd{}
	a.peer, b.peer = b, a
	return a, b
}

type pipeEnd struct {
	peer *pipeEnd

	mu      sync.Mutex
	handler Handler
	closed  bool
}

func (p *pipeEnd) Send(ctx context.Context, raw []byte) Result {
	if err := ctx.Err(); err != nil {
		return Result{Outcome: Failed, Err: err}
	}
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return Result{Outcome: Failed, Err: ErrClosed}
	}

	h := p.peer.receiver()
	if h == nil {
		return Result{Outcome: NoListener}
	}
	buf := make([]byte, len(raw))
	copy(buf, raw)
	if err := h(buf); err != nil {
		return Result{Outcome: Failed, Err: err}
	}
	return Result{Outcome: Delivered}
}

func (p *pipeEnd) receiver() Handler {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	return p.handler
}

func (p *pipeEnd) OnReceive(h Handler) {
	p.mu.Lock()
	p.handler = h
	p.mu.Unlock()
}

func (p *pipeEnd) Close() error {
	p.mu.Lock()
	p.closed = true
	p.handler = nil
	p.mu.Unlock()
	return nil
}
