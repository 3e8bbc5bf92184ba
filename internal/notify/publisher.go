package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher writes notification events to the broker topic the push
// gateway consumes. A nil Publisher (no brokers configured) drops
// events silently so local development works without Kafka.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

// Publish is fire-and-forget: delivery failures are logged, never
// surfaced to the request that produced the event.
func (p *Publisher) Publish(ctx context.Context, event *Event) {
	if p == nil || event == nil {
		return
	}

	value, err := json.Marshal(event)
	if err != nil {
		log.Printf("notify: could not marshal event %s: %v", event.Topic, err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.Topic),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Printf("notify: could not publish event %s: %v", event.Topic, err)
	}
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
