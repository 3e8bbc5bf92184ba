package notify

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub fans events out to connected websocket clients by topic.
type Hub struct {
	topics map[string]map[*Client]struct{}
	mu     sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		topics: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) subscribe(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Client]struct{})
	}
	h.topics[topic][c] = struct{}{}
	c.subscribed[topic] = struct{}{}
}

func (h *Hub) detach(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for topic := range c.subscribed {
		if subs, ok := h.topics[topic]; ok {
			delete(subs, c)
			if len(subs) == 0 {
				delete(h.topics, topic)
			}
		}
	}
	c.close()
}

// Attach registers a client on its topics and starts its write loop.
func (h *Hub) Attach(c *Client, topics ...string) {
	for _, topic := range topics {
		if topic != "" {
			h.subscribe(c, topic)
		}
	}
	log.Printf("ws client attached user=%d topics=%v", c.userID, topics)
}

func (h *Hub) Detach(c *Client) {
	h.detach(c)
	log.Printf("ws client detached user=%d", c.userID)
}

// Broadcast delivers the event to every subscriber of its user topic
// (when targeted) or of its event topic. Slow clients are dropped
// rather than blocking the caller.
func (h *Hub) Broadcast(event *Event) {
	if event == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws broadcast marshal error: %v", err)
		return
	}

	topic := event.Topic
	if event.Metadata != nil && event.Metadata["userId"] != "" {
		topic = "user." + event.Metadata["userId"]
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.topics[topic]))
	for c := range h.topics[topic] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.trySend(data) {
			go h.Detach(c)
		}
	}
}

// SubscriberCount is used by tests and the health endpoint.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
