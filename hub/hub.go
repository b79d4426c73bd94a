package hub

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/rakawidhi/canteen-app/utils"
)

// sendBuffer bounds the per-client outbox. A client that falls this far
// behind starts losing frames instead of stalling publishers.
const sendBuffer = 32

type Client struct {
	conn   *websocket.Conn
	topics map[string]struct{}
	send   chan []byte
}

// Hub fans published events out to every connected subscriber of a
// topic. There is no replay: clients connecting later never see past
// events, and publishing to a topic nobody joined is a no-op.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
}

func New() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// Register adds conn as a subscriber of the given topics and starts its
// write pump. The caller owns the read loop and must call Unregister
// when the connection drops.
func (h *Hub) Register(conn *websocket.Conn, topics ...string) *Client {
	c := &Client{
		conn:   conn,
		topics: make(map[string]struct{}, len(topics)),
		send:   make(chan []byte, sendBuffer),
	}
	for _, t := range topics {
		c.topics[t] = struct{}{}
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go c.writePump()
	return c
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// Publish delivers event to every current subscriber of topic. Delivery
// is fire-and-forget: a full client outbox drops the frame for that
// client only, so a slow or dead subscriber never blocks the caller.
func (h *Hub) Publish(topic, event string, data interface{}) {
	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		utils.ErrorLogger.Printf("hub: marshal %s: %v", event, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if _, ok := c.topics[topic]; !ok {
			continue
		}
		select {
		case c.send <- payload:
		default:
			utils.ErrorLogger.Printf("hub: dropping %s for slow client", event)
		}
	}
}

// Subscribers returns the number of connections joined to topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for c := range h.clients {
		if _, ok := c.topics[topic]; ok {
			n++
		}
	}
	return n
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
