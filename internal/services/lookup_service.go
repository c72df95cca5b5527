// Package services provides internal service implementations for the lookup worker.
package services

import (
	"context"

	"github.com/ortelius/pdvd-cvelookup/events/modules/components"
	"github.com/ortelius/pdvd-cvelookup/lookup"
	"go.uber.org/zap"
)

// LookupServiceWrapper implements components.LookupService on top of the lookup engine,
// so Kafka-driven batches resolve exactly like the REST API.
type LookupServiceWrapper struct {
	Engine *lookup.Engine
	Logger *zap.Logger
}

// LookupLabels runs one batch and returns its component to CVE ids map.
func (w *LookupServiceWrapper) LookupLabels(ctx context.Context, labels []string) (map[string][]string, error) {
	w.Logger.Debug("Worker: looking up components", zap.Int("count", len(labels)))
	res, err := w.Engine.LookupLabels(ctx, labels)
	if err != nil {
		return nil, err
	}
	return res.AsMap(), nil
}

var _ components.LookupService = (*LookupServiceWrapper)(nil)
