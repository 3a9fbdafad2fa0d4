// Package live serves the websocket sessions that keep an open page in sync
// with its hooks: navigation, load-more, schedule days and the hero
// carousel are handled server-side and pushed back as rendered HTML.
package live

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/anivibe/anivibe/internal/web"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	sendBuffer = 256
)

// latestState lists the session messages that replace what the page shows,
// in the order a coalesced batch is written.
var latestState = []string{TypeView, TypeSidebar, TypeCarousel}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// incomingMessage wraps a message from a client.
type incomingMessage struct {
	client  *Client
	message []byte
}

// Hub manages websocket connections, one session each, and broadcasts.
type Hub struct {
	pages    *web.Handlers
	clock    clockwork.Clock
	interval time.Duration
	logger   zerolog.Logger

	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	incoming   chan incomingMessage
	mu         sync.RWMutex

	base   context.Context
	cancel context.CancelFunc
}

// Client is a websocket connection and the session it drives.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	session *Session
	cancel  context.CancelFunc

	mu      sync.Mutex
	send    chan []byte
	pending map[string][]byte
	wake    chan struct{}
	closed  bool
}

// NewHub creates a hub whose sessions render with pages. interval is the
// hero carousel period.
func NewHub(pages *web.Handlers, clock clockwork.Clock, interval time.Duration, logger zerolog.Logger) *Hub {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	base, cancel := context.WithCancel(context.Background())
	return &Hub{
		pages:      pages,
		clock:      clock,
		interval:   interval,
		logger:     logger.With().Str("component", "websocket").Logger(),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan incomingMessage, sendBuffer),
		base:       base,
		cancel:     cancel,
	}
}

// Run starts the hub's main loop. It returns when ctx is done, after
// closing every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug().Str("session", client.session.ID).Msg("client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
			}
			h.mu.Unlock()
			h.logger.Debug().Str("session", client.session.ID).Msg("client disconnected")

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !client.enqueueRaw(message) {
					client.close()
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()

		case incoming := <-h.incoming:
			h.handleIncoming(incoming)
		}
	}
}

func (h *Hub) shutdown() {
	h.cancel()
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.close()
		delete(h.clients, client)
	}
}

// handleIncoming routes a client message to its session.
func (h *Hub) handleIncoming(incoming incomingMessage) {
	var msg Message
	if err := json.Unmarshal(incoming.message, &msg); err != nil {
		h.logger.Debug().Err(err).Msg("invalid client message")
		return
	}
	incoming.client.session.Dispatch(msg)
}

// Broadcast sends a message to all connected clients.
func (h *Hub) Broadcast(msgType string, payload interface{}) error {
	data, err := encode(msgType, payload)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- data:
	case <-h.base.Done():
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the connection and starts its session.
// GET /ws
func (h *Hub) HandleWebSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(h.base)
	client := &Client{
		hub:    h,
		conn:   conn,
		cancel: cancel,
		send:   make(chan []byte, sendBuffer),
		wake:   make(chan struct{}, 1),
	}
	client.session = NewSession(h.pages, h.clock, h.interval, client.enqueue, h.logger)

	select {
	case h.register <- client:
	case <-h.base.Done():
		cancel()
		return conn.Close()
	}

	go client.writePump()
	go client.session.Run(ctx)
	go client.readPump()

	return nil
}

func encode(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{
		Type:      msgType,
		Payload:   raw,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// enqueue is the session's Sender.
func (c *Client) enqueue(msgType string, payload any) bool {
	data, err := encode(msgType, payload)
	if err != nil {
		c.hub.logger.Error().Err(err).Str("type", msgType).Msg("failed to encode message")
		return false
	}
	if slices.Contains(latestState, msgType) {
		return c.enqueueLatest(msgType, data)
	}
	if !c.enqueueRaw(data) {
		c.hub.logger.Warn().Str("session", c.session.ID).Str("type", msgType).Msg("send buffer full, dropping message")
		return false
	}
	return true
}

// enqueueLatest queues a state message. Once the buffer is full, later state
// messages wait in pending, newest per type, until the write pump drains.
func (c *Client) enqueueLatest(msgType string, data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	if len(c.pending) == 0 {
		select {
		case c.send <- data:
			return true
		default:
		}
	}
	if c.pending == nil {
		c.pending = make(map[string][]byte, len(latestState))
	}
	c.pending[msgType] = data
	select {
	case c.wake <- struct{}{}:
	default:
	}
	return true
}

// takePending empties pending in latestState order.
func (c *Client) takePending() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, 0, len(c.pending))
	for _, t := range latestState {
		if data, ok := c.pending[t]; ok {
			out = append(out, data)
		}
	}
	clear(c.pending)
	return out
}

func (c *Client) enqueueRaw(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// close stops the session and the write pump. Safe to call more than once.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	c.cancel()
}

// readPump pumps messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.base.Done():
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug().Err(err).Str("session", c.session.ID).Msg("websocket closed unexpectedly")
			}
			return
		}

		select {
		case c.hub.incoming <- incomingMessage{client: c, message: message}:
		case <-c.hub.base.Done():
			return
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-c.wake:
			if !c.flush() {
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

// flush writes everything already buffered, then the coalesced state
// messages. It reports false once the connection is done.
func (c *Client) flush() bool {
drain:
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return false
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return false
			}
		default:
			break drain
		}
	}

	for _, message := range c.takePending() {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return false
		}
	}
	return true
}
