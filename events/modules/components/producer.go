package components

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of kafka.Writer the producer uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ResultProducer publishes LookupCompletedEvents.
type ResultProducer struct {
	Writer MessageWriter
}

// NewResultProducer initializes a Kafka writer for the result topic.
func NewResultProducer(brokers []string, topic string, transport *kafka.Transport) *ResultProducer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	if transport != nil {
		w.Transport = transport
	}
	return &ResultProducer{Writer: w}
}

// PublishLookupCompleted sends the result of the request event, keyed by its UID.
func (p *ResultProducer) PublishLookupCompleted(ctx context.Context, req ComponentsDetectedEvent, result map[string][]string) error {
	event := LookupCompletedEvent{
		EventType:     EventLookupCompleted,
		EventID:       uuid.New().String(),
		EventTime:     time.Now().UTC(),
		SchemaVersion: SchemaVersion,
		UID:           req.UID,
		RequestID:     req.EventID,
		Result:        result,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(req.UID),
		Value: payload,
	})
}

// Close cleans up the Kafka writer
func (p *ResultProducer) Close() error {
	return p.Writer.Close()
}
