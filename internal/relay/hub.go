package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/myo-osc/internal/dispatch"
	"github.com/nerrad567/myo-osc/internal/transport"
)

// WebSocket message types.
const (
	TypeHello       = "hello"
	TypeSubscribe   = "subscribe"
	TypeUnsubscribe = "unsubscribe"
	TypePing        = "ping"
	TypePong        = "pong"
	TypeEvent       = "event"
	TypeResponse    = "response"
	TypeError       = "error"

	// sendBufferSize is the per-client outbound message buffer size.
	// EMG alone runs at 200 Hz, so a slow client drops rather than blocks.
	sendBufferSize = 512
)

// WSMessage is a message sent to or from a WebSocket client.
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// SubscribePayload is the payload of subscribe and unsubscribe requests.
type SubscribePayload struct {
	Addresses []string `json:"addresses"`
}

// Logger is the logging surface used by the relay.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Hub tracks connected clients and fans messages out to them.
//
// Thread Safety: All methods are safe for concurrent use.
type Hub struct {
	logger    Logger
	onClients func(n int)

	clients map[*Client]struct{}
	mu      sync.RWMutex
}

var _ dispatch.Sink = (*Hub)(nil)

// NewHub creates a hub. onClients, if not nil, is called with the client
// count after every connect and disconnect.
func NewHub(logger Logger, onClients func(n int)) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		logger:    logger,
		onClients: onClients,
		clients:   make(map[*Client]struct{}),
	}
}

// Run blocks until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug("relay client connected", "client", client.id, "clients", n)
	h.notify(n)
}

// Unregister removes a client from the hub.
// Only the goroutine that removes the client from the map closes its
// send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	_, existed := h.clients[client]
	delete(h.clients, client)
	n := len(h.clients)
	h.mu.Unlock()

	if !existed {
		return
	}
	close(client.send)
	h.logger.Debug("relay client disconnected", "client", client.id, "clients", n)
	h.notify(n)
}

func (h *Hub) notify(n int) {
	if h.onClients != nil {
		h.onClients(n)
	}
}

// Send broadcasts m to every client subscribed to a prefix of its address.
// It never fails: slow clients lose messages instead of stalling dispatch.
func (h *Hub) Send(m dispatch.Message) error {
	h.mu.RLock()
	if len(h.clients) == 0 {
		h.mu.RUnlock()
		return nil
	}
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	var data []byte
	for _, client := range clients {
		if !client.isSubscribed(m.Address) {
			continue
		}
		if data == nil {
			var err error
			data, err = json.Marshal(WSMessage{
				Type:      TypeEvent,
				Timestamp: now(),
				Payload:   transport.PayloadOf(m),
			})
			if err != nil {
				h.logger.Error("marshalling relay event", "address", m.Address, "error", err)
				return nil
			}
		}
		client.trySend(data)
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// closeAll disconnects all clients and closes their send channels so
// writePump goroutines exit.
func (h *Hub) closeAll() {
	h.mu.Lock()
	for client := range h.clients {
		close(client.send)
		if client.conn != nil {
			client.conn.Close()
		}
		delete(h.clients, client)
	}
	h.mu.Unlock()
	h.notify(0)
}

// Client is one connected WebSocket listener.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// prefixes are the subscribed address prefixes.
	prefixes map[string]struct{}
	mu       sync.RWMutex
}

func newClient(id string, hub *Hub, conn *websocket.Conn, prefixes []string) *Client {
	c := &Client{
		id:       id,
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		prefixes: make(map[string]struct{}),
	}
	c.subscribe(prefixes)
	return c
}

// ID returns the client's identifier.
func (c *Client) ID() string { return c.id }

// readPump reads requests until the connection fails or closes.
func (c *Client) readPump(maxMessageSize int64, pingInterval, pongWait time.Duration) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("relay read error", "client", c.id, "error", err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
		c.handleMessage(message)
	}
}

// writePump writes queued messages and keepalive pings.
func (c *Client) writePump(pingInterval, writeWait time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

// handleMessage processes one client request.
func (c *Client) handleMessage(data []byte) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError("", "invalid JSON message")
		return
	}

	switch msg.Type {
	case TypeSubscribe, TypeUnsubscribe:
		sub, err := decodeSubscribe(msg.Payload)
		if err != nil {
			c.sendError(msg.ID, "invalid "+msg.Type+" payload")
			return
		}
		if msg.Type == TypeSubscribe {
			c.subscribe(sub.Addresses)
			c.hub.logger.Info("relay client subscribed", "client", c.id, "addresses", sub.Addresses)
			c.sendResponse(msg.ID, TypeResponse, map[string]any{"subscribed": sub.Addresses})
			return
		}
		c.unsubscribe(sub.Addresses)
		c.sendResponse(msg.ID, TypeResponse, map[string]any{"unsubscribed": sub.Addresses})
	case TypePing:
		c.sendResponse(msg.ID, TypePong, nil)
	default:
		c.sendError(msg.ID, "unknown message type: "+msg.Type)
	}
}

func decodeSubscribe(payload any) (SubscribePayload, error) {
	var sub SubscribePayload
	raw, err := json.Marshal(payload)
	if err != nil {
		return sub, err
	}
	err = json.Unmarshal(raw, &sub)
	return sub, err
}

func (c *Client) subscribe(prefixes []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range prefixes {
		if p != "" {
			c.prefixes[p] = struct{}{}
		}
	}
}

func (c *Client) unsubscribe(prefixes []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range prefixes {
		delete(c.prefixes, p)
	}
}

// isSubscribed reports whether any subscribed prefix matches address.
func (c *Client) isSubscribed(address string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for p := range c.prefixes {
		if strings.HasPrefix(address, p) {
			return true
		}
	}
	return false
}

// trySend queues data without blocking. Full buffers drop the message;
// a channel closed by a concurrent disconnect is ignored.
func (c *Client) trySend(data []byte) {
	defer func() {
		_ = recover()
	}()

	select {
	case c.send <- data:
	default:
	}
}

// sendResponse queues a response to the client.
func (c *Client) sendResponse(id, msgType string, payload any) {
	data, err := json.Marshal(WSMessage{
		Type:      msgType,
		ID:        id,
		Timestamp: now(),
		Payload:   payload,
	})
	if err != nil {
		return
	}
	c.trySend(data)
}

// sendError queues an error message to the client.
func (c *Client) sendError(id, message string) {
	c.sendResponse(id, TypeError, map[string]string{"message": message})
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
