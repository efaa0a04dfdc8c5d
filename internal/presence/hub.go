// Package presence tracks how many browsers currently hold an open websocket
// to the proxy and pushes the live count to all of them. The count is
// cosmetic: it feeds the overlay's "online" indicator and nothing else.
package presence

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// sendBufferSize bounds the per-client outbound queue; a client that
	// cannot drain it in time is dropped.
	sendBufferSize = 8
)

// countMessage is the single message shape the hub pushes to clients.
type countMessage struct {
	Online int `json:"online"`
}

// client is one connected websocket peer.
type client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan countMessage
}

// Hub owns the set of connected clients and serializes all membership changes
// through its run loop.
type Hub struct {
	logger     *slog.Logger
	upgrader   websocket.Upgrader
	register   chan *client
	unregister chan *client
	clients    map[string]*client
	done       chan struct{}
	online     atomic.Int64
}

// NewHub creates a Hub. Run must be started before ServeWS is routed.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The proxy serves rewritten third-party pages, so the
			// overlay's websocket handshake arrives with arbitrary
			// Origin values.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		register:   make(chan *client),
		unregister: make(chan *client),
		clients:    make(map[string]*client),
		done:       make(chan struct{}),
	}
}

// Online returns the current connected-client count.
func (h *Hub) Online() int {
	return int(h.online.Load())
}

// Run processes membership changes until ctx is cancelled, broadcasting the
// new count after every join and leave.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.clients[c.id] = c
			h.online.Store(int64(len(h.clients)))
			h.logger.Debug("presence client connected",
				slog.String("client_id", c.id),
				slog.Int("online", len(h.clients)),
			)
			h.broadcast()

		case c := <-h.unregister:
			if _, ok := h.clients[c.id]; !ok {
				continue
			}
			delete(h.clients, c.id)
			close(c.send)
			h.online.Store(int64(len(h.clients)))
			h.logger.Debug("presence client disconnected",
				slog.String("client_id", c.id),
				slog.Int("online", len(h.clients)),
			)
			h.broadcast()

		case <-ctx.Done():
			for _, c := range h.clients {
				close(c.send)
				delete(h.clients, c.id)
			}
			h.online.Store(0)
			return
		}
	}
}

// broadcast queues the current count to every client, dropping clients whose
// queue is full.
func (h *Hub) broadcast() {
	msg := countMessage{Online: len(h.clients)}
	for id, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			delete(h.clients, id)
			close(c.send)
		}
	}
}

// ServeWS upgrades the request to a websocket and attaches the peer to the
// hub until it disconnects.
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	peer := &client{
		id:   uuid.New().String(),
		hub:  h,
		conn: conn,
		send: make(chan countMessage, sendBufferSize),
	}

	select {
	case h.register <- peer:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go peer.writePump()
	go peer.readPump()
}

// readPump consumes inbound frames until the peer disconnects. Clients never
// send application messages; the read loop exists to notice the close.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump pushes queued count messages and keep-alive pings to the peer.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
