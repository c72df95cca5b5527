// Package kafka runs the component lookup worker on top of segmentio/kafka-go.
package kafka

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/ortelius/pdvd-cvelookup/config"
	"github.com/ortelius/pdvd-cvelookup/events/modules/components"
	"github.com/ortelius/pdvd-cvelookup/internal/services"
	"github.com/ortelius/pdvd-cvelookup/lookup"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"go.uber.org/zap"
)

const connectAttempts = 3

func brokerList(cfg config.KafkaConfig) []string {
	if len(cfg.Brokers) == 0 {
		return []string{"localhost:9092"}
	}
	return cfg.Brokers
}

// newDialer configures SASL/PLAIN over TLS when credentials are given and a plain
// dialer for local development otherwise. The transport mirrors it for the writer.
func newDialer(cfg config.KafkaConfig) (*kafka.Dialer, *kafka.Transport) {
	if cfg.Username != "" && cfg.Password != "" {
		mechanism := plain.Mechanism{
			Username: cfg.Username,
			Password: cfg.Password,
		}
		dialer := &kafka.Dialer{
			Timeout:       10 * time.Second,
			DualStack:     true,
			SASLMechanism: mechanism,
			TLS:           &tls.Config{},
		}
		transport := &kafka.Transport{
			SASL: mechanism,
			TLS:  &tls.Config{},
		}
		return dialer, transport
	}
	return &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}, nil
}

// RunEventProcessor checks the broker connection, then consumes ComponentsDetectedEvents
// in the background until ctx is cancelled, publishing one LookupCompletedEvent per batch.
func RunEventProcessor(ctx context.Context, cfg config.KafkaConfig, engine *lookup.Engine, logger *zap.Logger) error {
	brokers := brokerList(cfg)
	dialer, transport := newDialer(cfg)

	var err error
	for i := 1; i <= connectAttempts; i++ {
		logger.Info("Kafka connection attempt", zap.Int("attempt", i), zap.Int("of", connectAttempts))
		var conn *kafka.Conn
		conn, err = dialer.DialContext(ctx, "tcp", brokers[0])
		if err == nil {
			conn.Close()
			break
		}
		if i < connectAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}
	}
	if err != nil {
		return fmt.Errorf("kafka unreachable at %s: %w", brokers[0], err)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.InputTopic,
		MaxBytes: 10e6,
		Dialer:   dialer,
	})
	producer := components.NewResultProducer(brokers, cfg.OutputTopic, transport)

	go func() {
		defer reader.Close()
		defer producer.Close()
		service := &services.LookupServiceWrapper{Engine: engine, Logger: logger}

		logger.Info("Kafka Event Processor started. Listening for component events...",
			zap.String("topic", cfg.InputTopic))

		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("Failed to read message", zap.Error(err))
				continue
			}
			if err := components.HandleComponentsDetected(ctx, msg.Value, service, producer, logger); err != nil {
				logger.Error("Failed to process component event",
					zap.Int64("offset", msg.Offset), zap.Error(err))
			}
		}
	}()

	return nil
}
