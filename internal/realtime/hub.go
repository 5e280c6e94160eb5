// Package realtime fans queue events out to WebSocket subscribers.
package realtime

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/iliyamo/queuepro/internal/monitoring"
	"github.com/iliyamo/queuepro/internal/ticketing"
)

// Subscription scopes a client to one (Branch, ServiceID) queue.  An
// empty field matches every value.
type Subscription struct {
	Branch    string
	ServiceID string
}

// Client is one subscriber.  Send is closed when the client is
// unregistered or dropped.
type Client struct {
	ID   string
	Send chan []byte

	sub    Subscription
	muted  bool
	closed bool
}

// Hub delivers events to matching clients.  Broadcasts are serialized,
// so every client observes events in publish order.  A client whose
// buffer is full is dropped instead of blocking the publisher.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*Client
}

func New() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

var _ ticketing.Notifier = (*Hub)(nil)

// Register adds a client with the given subscription and buffer size.
func (h *Hub) Register(sub Subscription, buffer int) *Client {
	if buffer <= 0 {
		buffer = 16
	}
	c := &Client{ID: uuid.NewString(), Send: make(chan []byte, buffer), sub: sub}
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
	monitoring.SubscriberAdded()
	return c
}

// Unregister removes the client and closes its channel.  It is safe to
// call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(c)
}

func (h *Hub) remove(c *Client) {
	if c.closed {
		return
	}
	c.closed = true
	delete(h.clients, c.ID)
	close(c.Send)
	monitoring.SubscriberRemoved()
}

func (h *Hub) UpdateSubscription(c *Client, sub Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.sub, c.muted = sub, false
}

// Unsubscribe stops deliveries to c until its next UpdateSubscription.
func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.muted = true
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends payload to every client whose subscription matches meta.
func (h *Hub) Broadcast(payload []byte, meta Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		if c.muted || !match(c.sub, meta) {
			continue
		}
		select {
		case c.Send <- payload:
		default:
			log.Printf("hub: dropping slow client %s", c.ID)
			monitoring.TrackDroppedSubscriber()
			h.remove(c)
		}
	}
}

// Publish encodes ev and broadcasts it to the event's scope.
func (h *Hub) Publish(_ context.Context, ev ticketing.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	h.Broadcast(payload, Subscription{Branch: ev.Branch, ServiceID: ev.ServiceID})
	return nil
}

func match(sub, meta Subscription) bool {
	if sub.Branch != "" && meta.Branch != sub.Branch {
		return false
	}
	if sub.ServiceID != "" && meta.ServiceID != sub.ServiceID {
		return false
	}
	return true
}

// SubscribeMessage is sent by clients to change their scope.
type SubscribeMessage struct {
	Action    string `json:"action"`
	Branch    string `json:"branch"`
	ServiceID string `json:"service_id"`
}

func ParseSubscribe(data []byte) (SubscribeMessage, bool) {
	var msg SubscribeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return SubscribeMessage{}, false
	}
	if msg.Action != "subscribe" && msg.Action != "unsubscribe" {
		return SubscribeMessage{}, false
	}
	return msg, true
}
