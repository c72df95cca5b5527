package components

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// LookupService resolves component labels into the component to CVE ids map.
type LookupService interface {
	LookupLabels(ctx context.Context, labels []string) (map[string][]string, error)
}

// Publisher emits the result of a processed batch.
type Publisher interface {
	PublishLookupCompleted(ctx context.Context, event ComponentsDetectedEvent, result map[string][]string) error
}

// HandleComponentsDetected decodes a ComponentsDetectedEvent, resolves its components
// and publishes the result.
func HandleComponentsDetected(
	ctx context.Context,
	msg []byte,
	service LookupService,
	publisher Publisher,
	logger *zap.Logger,
) error {
	var event ComponentsDetectedEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		return fmt.Errorf("failed to unmarshal ComponentsDetectedEvent: %w", err)
	}

	if event.UID == "" || len(event.Components) == 0 {
		return fmt.Errorf("invalid event: missing required fields")
	}

	logger.Info("Processing components",
		zap.String("uid", event.UID),
		zap.String("event_id", event.EventID),
		zap.Int("components", len(event.Components)))

	result, err := service.LookupLabels(ctx, event.Components)
	if err != nil {
		return fmt.Errorf("lookup failed for %s: %w", event.UID, err)
	}

	if err := publisher.PublishLookupCompleted(ctx, event, result); err != nil {
		return fmt.Errorf("failed to publish result for %s: %w", event.UID, err)
	}

	logger.Info("Successfully processed components", zap.String("uid", event.UID))
	return nil
}
