package remote

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Garsondee/spacecoco/internal/sim"
)

// HandlerConfig tunes a Handler.
type HandlerConfig struct {
	Logger *log.Logger
	// ReadLimit caps one frame; intents are tiny.
	ReadLimit int64
}

// Handler upgrades controller connections and applies their intents to one
// sampler. Any number of controllers may be connected.
type Handler struct {
	target   *sim.Sampler
	logger   *log.Logger
	upgrader websocket.Upgrader
	limit    int64

	applied  atomic.Int64
	rejected atomic.Int64
	conns    atomic.Int32
}

// NewHandler returns a handler feeding target.
func NewHandler(target *sim.Sampler, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	limit := cfg.ReadLimit
	if limit <= 0 {
		limit = 1024
	}
	return &Handler{
		target: target,
		logger: logger,
		limit:  limit,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeHTTP runs one controller connection until it closes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("remote: upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(h.limit)
	h.conns.Add(1)
	defer h.conns.Add(-1)

	for {
		kind, payload, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Printf("remote: read: %v", err)
			}
			return
		}
		if kind != websocket.BinaryMessage {
			h.rejected.Add(1)
			continue
		}
		in, err := Decode(payload)
		if err != nil {
			h.rejected.Add(1)
			h.logger.Printf("remote: discarding frame: %v", err)
			continue
		}
		Apply(h.target, in)
		h.applied.Add(1)
	}
}

// Applied counts intents delivered to the sampler.
func (h *Handler) Applied() int64 { return h.applied.Load() }

// Rejected counts frames discarded as malformed or non-binary.
func (h *Handler) Rejected() int64 { return h.rejected.Load() }

// Connections is the number of open controller connections.
func (h *Handler) Connections() int { return int(h.conns.Load()) }

// Serve listens on addr and serves h at /intent until ctx is done.
func Serve(ctx context.Context, addr string, h *Handler) error {
	mux := http.NewServeMux()
	mux.Handle("/intent", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	select {
	case err := <-errc:
		return fmt.Errorf("remote: listen %s: %w", addr, err)
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			return fmt.Errorf("remote: shutdown: %w", err)
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Client is the controller side of the relay.
type Client struct {
	mu   sync.Mutex
	conn *websocket.Conn
	seq  uint64
}

// Dial connects to a Handler at url (ws:// or wss://).
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("remote: dial %s: %w", url, err)
	}
	return &Client{conn: conn}, nil
}

// Send stamps and writes one intent. It is safe for concurrent use.
func (c *Client) Send(in Intent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	in.Seq = c.seq
	data, err := Encode(in)
	if err != nil {
		return err
	}
	if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("remote: send: %w", err)
	}
	return nil
}

// Close says goodbye and closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.conn.Close()
}
