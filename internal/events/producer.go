// Package events mirrors wallet notifications onto a Kafka topic so an
// external notification service can consume them. Publishing is best-effort:
// the ledger never fails an operation because the event stream is down.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// NotificationEvent is the wire format published for each notification.
type NotificationEvent struct {
	EventId   string    `json:"event_id"`
	UserId    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher is the ledger engine's view of the event stream.
type Publisher interface {
	Publish(ctx context.Context, event NotificationEvent) error
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}

	zap.L().Info("Notification event producer initialized", zap.String("topic", topic))
	return &Producer{writer: writer}
}

func (p *Producer) Publish(ctx context.Context, event NotificationEvent) error {
	if event.EventId == "" {
		event.EventId = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(event.UserId),
		Value: payload,
		Time:  event.Timestamp,
	}
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to publish notification event: %w", err)
	}

	zap.L().Debug("Published notification event",
		zap.String("event_id", event.EventId),
		zap.String("user_id", event.UserId),
		zap.String("kind", event.Kind))
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		zap.L().Info("Closing notification event producer")
		return p.writer.Close()
	}
	return nil
}
