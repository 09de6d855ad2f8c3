package transport

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Client is one connected WebSocket peer of a Hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   string
}

// ID returns the client's stable identifier, stamped with
// github.com/google/uuid at connect time.
func (c *Client) ID() string { return c.id }

// Hub fans kernel.Event broadcasts out to every connected client and
// routes each client's incoming frames to a single request handler.
// The inject/event wire protocol carries no per-client session state
// to serialize, so registration is a direct mutex-protected map
// operation keyed by client ID rather than the teacher's
// single-goroutine-owns-the-map pattern (register/unregister channels
// drained by a Run loop): there is nothing here for a background
// owner goroutine to arbitrate, and keying by ID turns SendToClient
// from a linear scan into a map lookup.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client

	onMessage func(clientID string, msgType MessageType, data []byte)
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

// SetMessageHandler installs the callback invoked for every inbound
// client frame.
func (h *Hub) SetMessageHandler(handler func(clientID string, msgType MessageType, data []byte)) {
	h.onMessage = handler
}

// add registers c, replacing any prior client with the same ID.
func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	log.Printf("transport: client connected: %s", c.id)
}

// remove unregisters c and closes its send channel, if still
// registered.
func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	h.mu.Unlock()
	log.Printf("transport: client disconnected: %s", c.id)
}

// Broadcast pushes a raw frame to every connected client, dropping it
// for any client whose send buffer is full rather than blocking the
// caller on a slow reader.
func (h *Hub) Broadcast(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- message:
		default:
		}
	}
}

// BroadcastJSON marshals v and broadcasts it.
func (h *Hub) BroadcastJSON(v interface{}) error {
	data, err := Encode(v)
	if err != nil {
		return err
	}
	h.Broadcast(data)
	return nil
}

// SendToClient pushes a raw frame to the single client identified by
// clientID, if still connected; a full send buffer drops the message
// rather than blocking. No-op if clientID is not registered.
func (h *Hub) SendToClient(clientID string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.clients[clientID]; ok {
		select {
		case c.send <- message:
		default:
		}
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("transport: read error: %v", err)
			}
			break
		}

		msgType, err := ParseType(message)
		if err != nil {
			log.Printf("transport: malformed message from %s: %v", c.id, err)
			continue
		}
		if c.hub.onMessage != nil {
			c.hub.onMessage(c.id, msgType, message)
		}
	}
}

// writePump serializes every write to conn through this single
// goroutine, as gorilla/websocket requires (a *Conn supports at most
// one concurrent writer).
func (c *Client) writePump() {
	defer c.conn.Close()

	for {
		message, ok := <-c.send
		if !ok {
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		w, err := c.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)

		n := len(c.send)
		for i := 0; i < n; i++ {
			w.Write([]byte("\n"))
			w.Write(<-c.send)
		}

		if err := w.Close(); err != nil {
			return
		}
	}
}
