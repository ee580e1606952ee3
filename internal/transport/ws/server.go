// Package ws carries sync messages over websockets: the render context
// serves, control panels dial in.
package ws

import (
	"context"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/confetti/internal/transport"
)

const (
	writeTimeout = 5 * time.Second
	peerQueue    = 32
)

type peer struct {
	conn *websocket.Conn
	out  chan []byte
	done chan struct{}
	once sync.Once
}

func (p *peer) stop() {
	p.once.Do(func() { close(p.done) })
}

// Server accepts panel connections and broadcasts to all of them.
type Server struct {
	log      *log.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	peers   map[*peer]struct{}
	handler transport.Handler
	closed  bool
}

func NewServer(logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{
		log:   logger,
		peers: make(map[*peer]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if closed {
			http.Error(rw, "server closed", http.StatusServiceUnavailable)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			s.log.Printf("ws: upgrade: %v", err)
			return
		}
		defer conn.Close()

		p := &peer{conn: conn, out: make(chan []byte, peerQueue), done: make(chan struct{})}
		s.add(p)
		defer s.remove(p)
		s.log.Printf("ws: panel connected from %s", r.RemoteAddr)

		go func() {
			for {
				select {
				case <-p.done:
					return
				case b := <-p.out:
					_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						p.stop()
						return
					}
				}
			}
		}()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			h := s.receiver()
			if h == nil {
				continue
			}
			if err := h(msg); err != nil {
				s.log.Printf("ws: rejecting panel %s: %v", r.RemoteAddr, err)
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "malformed message"),
					time.Now().Add(time.Second))
				break
			}
		}
		p.stop()
		s.log.Printf("ws: panel %s disconnected", r.RemoteAddr)
	}
}

func (s *Server) add(p *peer) {
	s.mu.Lock()
	s.peers[p] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) remove(p *peer) {
	s.mu.Lock()
	delete(s.peers, p)
	s.mu.Unlock()
}

func (s *Server) receiver() transport.Handler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handler
}

// Peers reports the number of connected panels.
func (s *Server) Peers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.peers)
}

func (s *Server) OnReceive(h transport.Handler) {
	s.mu.Lock()
	s.handler = h
	s.mu.Unlock()
}

// Send queues raw for every connected panel. It reports NoListener when no
// panel is connected and Failed when no panel could take the message.
func (s *Server) Send(ctx context.Context, raw []byte) transport.Result {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return transport.Result{Outcome: transport.Failed, Err: transport.ErrClosed}
	}
	peers := make([]*peer, 0, len(s.peers))
	for p := range s.peers {
		peers = append(peers, p)
	}
	s.mu.Unlock()

	if len(peers) == 0 {
		return transport.Result{Outcome: transport.NoListener}
	}

	delivered := 0
	var lastErr error
	for _, p := range peers {
		select {
		case p.out <- raw:
			delivered++
		case <-p.done:
			lastErr = transport.ErrClosed
		case <-ctx.Done():
			return transport.Result{Outcome: transport.Failed, Err: ctx.Err()}
		}
	}
	if delivered == 0 {
		return transport.Result{Outcome: transport.Failed, Err: lastErr}
	}
	return transport.Result{Outcome: transport.Delivered}
}

// Close disconnects every panel. Later sends fail with ErrClosed.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	peers := s.peers
	s.peers = make(map[*peer]struct{})
	s.mu.Unlock()

	for p := range peers {
		_ = p.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "render context closed"),
			time.Now().Add(time.Second))
		p.stop()
		_ = p.conn.Close()
	}
	return nil
}
