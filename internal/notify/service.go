package notify

import (
	"context"
	"encoding/json"
	"log"

	"nijimarket-backend/internal/database"
	"nijimarket-backend/internal/models"
)

// Notifier is the single entry point the domain handlers use: it
// persists the in-app feed row, publishes the event for the push
// gateway and mirrors it to live websocket subscribers.
type Notifier struct {
	publisher *Publisher
	hub       *Hub
}

func NewNotifier(publisher *Publisher, hub *Hub) *Notifier {
	return &Notifier{publisher: publisher, hub: hub}
}

func (n *Notifier) Hub() *Hub {
	return n.hub
}

func (n *Notifier) Send(ctx context.Context, userID uint, typ models.NotificationType, title, body string, event *Event) {
	if n == nil {
		return
	}

	dataStr := "null"
	if event != nil {
		if b, err := json.Marshal(event.Data); err == nil {
			dataStr = string(b)
		}
	}

	notification := models.Notification{
		UserID: userID,
		Type:   typ,
		Title:  title,
		Body:   body,
		Data:   dataStr,
	}
	if err := database.DB.Create(&notification).Error; err != nil {
		log.Printf("notify: could not persist notification for user %d: %v", userID, err)
	}

	if event != nil {
		event.WithUser(userID)
		n.publisher.Publish(ctx, event)
		if n.hub != nil {
			n.hub.Broadcast(event)
		}
	}
}
