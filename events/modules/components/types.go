// Package components defines the Kafka event contract of the component lookup worker.
package components

import (
	"time"
)

// Event types exchanged on the worker topics.
const (
	EventComponentsDetected = "components.detected"
	EventLookupCompleted    = "cve.lookup.completed"
	SchemaVersion           = "v1"
)

// ComponentsDetectedEvent asks the worker to resolve a batch of component labels.
type ComponentsDetectedEvent struct {
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EventTime     time.Time `json:"event_time"`
	SchemaVersion string    `json:"schema_version"`

	// UID correlates the request with its LookupCompletedEvent.
	UID        string   `json:"uid"`
	Components []string `json:"components"`
}

// LookupCompletedEvent carries the component to CVE ids map of one batch,
// including the reserved summary key.
type LookupCompletedEvent struct {
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EventTime     time.Time `json:"event_time"`
	SchemaVersion string    `json:"schema_version"`

	UID       string              `json:"uid"`
	RequestID string              `json:"request_id"`
	Result    map[string][]string `json:"result"`
}
