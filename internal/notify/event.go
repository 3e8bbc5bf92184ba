package notify

import (
	"fmt"
	"strings"
	"time"
)

// Event is the wire shape consumed by the push-notification gateway
// and mirrored to websocket subscribers.
type Event struct {
	Entity     string            `json:"entity"`
	Action     string            `json:"action"`
	ResourceID string            `json:"resourceId"`
	Topic      string            `json:"topic"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Data       interface{}       `json:"data,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// NewEvent fills in the topic ("entity.action") and timestamp.
func NewEvent(entity, action, resourceID string) *Event {
	return &Event{
		Entity:     strings.TrimSpace(entity),
		Action:     strings.TrimSpace(action),
		ResourceID: resourceID,
		Topic:      strings.TrimSpace(entity) + "." + strings.TrimSpace(action),
		Timestamp:  time.Now().UTC(),
	}
}

// WithUser targets the event at a single user's subscription topic.
func (e *Event) WithUser(userID uint) *Event {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata["userId"] = fmt.Sprintf("%d", userID)
	return e
}

func (e *Event) WithData(data interface{}) *Event {
	e.Data = data
	return e
}

// UserTopic is the per-user websocket subscription topic.
func UserTopic(userID uint) string {
	return fmt.Sprintf("user.%d", userID)
}
