package daemon

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"frame/internal/api"
	"frame/internal/logging"
)

const (
	sendBuffer   = 256
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// eventHub fans stream envelopes out to websocket subscribers. Publishing
// never blocks: a subscriber whose buffer is full is disconnected.
type eventHub struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients map[*wsClient]struct{}
	closed  bool
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

func newEventHub(logger *slog.Logger) *eventHub {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &eventHub{
		logger:  logging.NewComponentLogger(logger, "events"),
		clients: make(map[*wsClient]struct{}),
	}
}

func (h *eventHub) publish(evt api.Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		h.logger.Warn("encode event failed", logging.String("type", evt.Type), logging.Error(err))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.logger.Warn("event subscriber too slow; disconnecting",
				logging.String(logging.FieldEventType, "subscriber_dropped"),
			)
			h.removeLocked(c)
		}
	}
}

func (h *eventHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *eventHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *eventHub) add(c *wsClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *eventHub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *eventHub) removeLocked(c *wsClient) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// serve upgrades the request and blocks until the subscriber goes away.
func (h *eventHub) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response.
		h.logger.Debug("websocket upgrade failed", logging.Error(err))
		return
	}
	c := &wsClient{conn: conn, send: make(chan []byte, sendBuffer)}
	hello, _ := json.Marshal(api.Event{Type: api.EventHello, Timestamp: time.Now().UTC().Format(time.RFC3339Nano)})
	c.send <- hello
	if !h.add(c) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		_ = conn.Close()
		return
	}
	h.logger.Debug("event subscriber connected", logging.Int("subscribers", h.count()))

	go c.writePump()
	c.readPump()
	h.remove(c)
	h.logger.Debug("event subscriber disconnected", logging.Int("subscribers", h.count()))
}

// readPump discards client messages and keeps the read deadline alive on pongs.
func (c *wsClient) readPump() {
	defer c.conn.Close()
	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
