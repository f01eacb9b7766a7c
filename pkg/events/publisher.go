// Package events announces newly persisted topics on Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"votetopics/pkg/domain"
)

// EventTopicCreated is the event type carried in every payload.
const EventTopicCreated = "topic.created"

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// TopicCreated is the JSON payload of a topic.created message.
type TopicCreated struct {
	Event     string    `json:"event"`
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Category  string    `json:"category"`
	NewsURL   string    `json:"news_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher writes one message per topic, keyed by topic ID.
type Publisher struct {
	writer MessageWriter
}

// NewKafkaPublisher creates a synchronous producer for topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	return NewPublisher(writer)
}

// NewPublisher wraps an existing writer.
func NewPublisher(writer MessageWriter) *Publisher {
	return &Publisher{writer: writer}
}

// PublishCreated sends every topic in one batch.
func (p *Publisher) PublishCreated(ctx context.Context, topics []domain.Topic) error {
	if len(topics) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(topics))
	for _, t := range topics {
		value, err := json.Marshal(TopicCreated{
			Event:     EventTopicCreated,
			ID:        t.ID,
			Title:     t.Title,
			Source:    t.Source,
			Category:  t.Category,
			NewsURL:   t.NewsURL,
			CreatedAt: t.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("marshal topic %s: %w", t.ID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(t.ID),
			Value: value,
			Time:  t.CreatedAt,
		})
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d topics: %w", len(msgs), err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
