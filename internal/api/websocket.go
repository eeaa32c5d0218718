package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/daangn/permalink/internal/batch"
	"github.com/daangn/permalink/internal/id"
	"github.com/daangn/permalink/internal/logger"
	"github.com/daangn/permalink/internal/metrics"
	"github.com/gorilla/websocket"
)

// Message types sent to clients.
const (
	MessageConnected   = "connected"
	MessageResult      = "result"
	MessageError       = "error"
	MessageBatchUpdate = "batch_update"
)

// WebSocketHub manages WebSocket connections. Clients send operation
// requests and get one reply per request; batch file updates are
// broadcast to everyone.
type WebSocketHub struct {
	handler  *Handler
	log      logger.Logger
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	clients  map[*WebSocketClient]bool
}

// WebSocketClient represents a connected WebSocket client.
type WebSocketClient struct {
	hub     *WebSocketHub
	conn    *websocket.Conn
	send    chan []byte
	session string
	closed  bool // Guarded by hub.mu; set once send is closed
}

// WebSocketMessage is the JSON message sent to clients.
type WebSocketMessage struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"` // Echoes the request id
	Data any    `json:"data"`
}

// WebSocketRequest is one operation sent by a client.
type WebSocketRequest struct {
	ID    string       `json:"id,omitempty" validate:"max=64"`
	Op    string       `json:"op" validate:"required,oneof=parse normalize canonicalize slugify batch countries"`
	URL   string       `json:"url,omitempty"`
	Title *string      `json:"title,omitempty"`
	Text  string       `json:"text,omitempty"`
	Items []batch.Item `json:"items,omitempty"`
}

// NewWebSocketHub creates a new WebSocket hub. allowedOrigin restricts
// browser origins; empty allows only same-host pages.
func NewWebSocketHub(handler *Handler, allowedOrigin string) *WebSocketHub {
	return &WebSocketHub{
		handler: handler,
		log:     handler.log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigin),
		},
		clients: make(map[*WebSocketClient]bool),
	}
}

func checkOrigin(allowed string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser client
		}
		return originAllowed(allowed, origin, r.Host)
	}
}

// Broadcast sends a message to all connected clients.
func (h *WebSocketHub) Broadcast(msg WebSocketMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("failed to marshal broadcast", logger.Error(err))
		return
	}

	h.mu.RLock()
	clients := make([]*WebSocketClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		h.trySend(client, data)
	}
}

// trySend queues data for a client. The read lock keeps removeClient from
// closing send mid-send; a client removed since the snapshot is skipped.
func (h *WebSocketHub) trySend(client *WebSocketClient, data []byte) {
	h.mu.RLock()
	if client.closed {
		h.mu.RUnlock()
		return
	}
	select {
	case client.send <- data:
		h.mu.RUnlock()
	default:
		h.mu.RUnlock()
		// Client buffer full, close it
		h.removeClient(client)
	}
}

func (h *WebSocketHub) addClient(client *WebSocketClient) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	metrics.WebSocketClients.Inc()
}

func (h *WebSocketHub) removeClient(client *WebSocketClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.closed = true
		close(client.send)
		metrics.WebSocketClients.Dec()
	}
	h.mu.Unlock()
}

// ServeWS handles WebSocket connection requests.
func (h *WebSocketHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", logger.Error(err))
		return
	}

	client := &WebSocketClient{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 256),
		session: id.Generate(),
	}

	h.addClient(client)

	// Send initial connection message before starting the pumps so it is first.
	client.reply(WebSocketMessage{
		Type: MessageConnected,
		Data: map[string]string{"session": client.session},
	})

	go client.writePump()
	go client.readPump()
}

// handle runs one request and returns the reply.
func (h *WebSocketHub) handle(ctx context.Context, raw []byte) WebSocketMessage {
	var req WebSocketRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return WebSocketMessage{Type: MessageError, Data: ErrorResponse{Error: "invalid JSON message", Kind: KindValidation}}
	}
	if err := h.handler.validate.Struct(req); err != nil {
		return errorMessage(req.ID, err)
	}

	var (
		data any
		err  error
	)
	switch req.Op {
	case "parse":
		data, err = h.handler.doParse(req.URL)
	case "normalize":
		data, err = h.handler.doNormalize(req.URL)
	case "canonicalize":
		data, err = h.handler.doCanonicalize(CanonicalizeRequest{URL: req.URL, Title: req.Title})
	case "slugify":
		data = h.handler.doSlugify(req.Text)
	case "countries":
		data = countries()
	case "batch":
		data, err = h.handler.doBatch(ctx, BatchRequest{Items: req.Items})
	default:
		err = fmt.Errorf("unsupported op %q", req.Op)
	}
	if err != nil {
		return errorMessage(req.ID, err)
	}
	return WebSocketMessage{Type: MessageResult, ID: req.ID, Data: data}
}

func errorMessage(reqID string, err error) WebSocketMessage {
	_, body := errorResponse(err)
	return WebSocketMessage{Type: MessageError, ID: reqID, Data: body}
}

// reply queues msg for this client only.
func (c *WebSocketClient) reply(msg WebSocketMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.hub.log.Error("failed to marshal reply", logger.Error(err))
		return
	}
	c.hub.trySend(c, data)
}

// readPump reads requests from the WebSocket connection.
func (c *WebSocketClient) readPump() {
	defer func() {
		// Only call removeClient here - closing send channel signals writePump to exit
		// writePump is responsible for closing the connection
		c.hub.removeClient(c)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c.conn.SetReadLimit(maxBodyBytes)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("websocket read error", logger.String("session", c.session), logger.Error(err))
			}
			break
		}
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		c.reply(c.hub.handle(ctx, raw))
	}
}

// writePump writes messages to the WebSocket connection.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(30 * time.Second) // Ping interval
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// Each message is its own frame so every frame is valid JSON.
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
