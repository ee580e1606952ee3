package ws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/confetti/internal/transport"
)

// Client is a panel's connection to a render context. Messages that arrive
// before OnReceive is called are held and delivered on registration.
type Client struct {
	conn *websocket.Conn
	log  *log.Logger

	writeMu   sync.Mutex
	deliverMu sync.Mutex

	mu      sync.Mutex
	handler transport.Handler
	pending [][]byte
	closed  bool
	gone    bool
	done    chan struct{}
}

func Dial(ctx context.Context, url string, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ws: dial %s: %w", url, err)
	}
	c := &Client{conn: conn, log: logger, done: make(chan struct{})}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer func() {
		c.mu.Lock()
		c.gone = true
		c.mu.Unlock()
		close(c.done)
	}()
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				c.log.Printf("ws: render context closed the connection: %d %s", ce.Code, ce.Text)
			}
			return
		}

		c.deliverMu.Lock()
		c.mu.Lock()
		h := c.handler
		if h == nil {
			c.pending = append(c.pending, msg)
		}
		c.mu.Unlock()
		if h != nil {
			c.deliver(h, msg)
		}
		c.deliverMu.Unlock()
	}
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) OnReceive(h transport.Handler) {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()

	c.mu.Lock()
	c.handler = h
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, msg := range pending {
		c.deliver(h, msg)
	}
}

func (c *Client) deliver(h transport.Handler, msg []byte) {
	if err := h(msg); err != nil {
		c.log.Printf("ws: rejecting message from render context: %v", err)
	}
}

// Send writes raw to the render context. A connection the render context has
// dropped reports NoListener.
func (c *Client) Send(ctx context.Context, raw []byte) transport.Result {
	c.mu.Lock()
	closed, gone := c.closed, c.gone
	c.mu.Unlock()
	if closed {
		return transport.Result{Outcome: transport.Failed, Err: transport.ErrClosed}
	}
	if gone {
		return transport.Result{Outcome: transport.NoListener}
	}

	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(deadline)
	if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		if errors.Is(err, websocket.ErrCloseSent) {
			return transport.Result{Outcome: transport.NoListener}
		}
		return transport.Result{Outcome: transport.Failed, Err: err}
	}
	return transport.Result{Outcome: transport.Delivered}
}

func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.conn.Close()
}
