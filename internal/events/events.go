// Package events publishes entity lifecycle events (order created, payment
// approved, ...) for downstream consumers. Publishing is best effort and
// never blocks or fails a mutation.
package events

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "events").Logger()

type Publisher interface {
	Publish(ctx context.Context, eventType, entityID string, payload any)
}

// Nop discards every event. Used when no broker is configured and in tests.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) {}

// Kafka publishes JSON envelopes keyed by entity id.
type Kafka struct {
	writer *kafka.Writer
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}

func NewKafka(brokers, topic string) *Kafka {
	return &Kafka{writer: NewKafkaWriter(strings.Split(brokers, ","), topic)}
}

type envelope struct {
	Type     string    `json:"type"`
	EntityID string    `json:"entity_id"`
	At       time.Time `json:"at"`
	Payload  any       `json:"payload,omitempty"`
}

func (k *Kafka) Publish(ctx context.Context, eventType, entityID string, payload any) {
	value, err := json.Marshal(envelope{Type: eventType, EntityID: entityID, At: time.Now().UTC(), Payload: payload})
	if err != nil {
		logger.Error().Err(err).Str("type", eventType).Msg("event marshal failed")
		return
	}
	err = k.writer.WriteMessages(ctx, kafka.Message{Key: []byte(entityID), Value: value})
	if err != nil {
		logger.Warn().Err(err).Str("type", eventType).Msg("event publish failed")
	}
}

func (k *Kafka) Close() error { return k.writer.Close() }
