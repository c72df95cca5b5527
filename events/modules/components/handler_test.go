package components

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeService struct {
	labels []string
	result map[string][]string
	err    error
}

func (f *fakeService) LookupLabels(_ context.Context, labels []string) (map[string][]string, error) {
	f.labels = labels
	return f.result, f.err
}

type fakePublisher struct {
	events  []ComponentsDetectedEvent
	results []map[string][]string
}

func (f *fakePublisher) PublishLookupCompleted(_ context.Context, event ComponentsDetectedEvent, result map[string][]string) error {
	f.events = append(f.events, event)
	f.results = append(f.results, result)
	return nil
}

type fakeWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestHandleComponentsDetected(t *testing.T) {
	t.Parallel()
	service := &fakeService{result: map[string][]string{
		"windows 7": {"CVE-1234-0006"},
		"summary":   {"CVE-1234-0006"},
	}}
	publisher := &fakePublisher{}

	msg := []byte(`{"event_type":"components.detected","event_id":"e-1","uid":"scan-42","components":["windows 7"]}`)
	require.NoError(t, HandleComponentsDetected(context.Background(), msg, service, publisher, zap.NewNop()))

	assert.Equal(t, []string{"windows 7"}, service.labels)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, "scan-42", publisher.events[0].UID)
	assert.Equal(t, service.result, publisher.results[0])
}

func TestHandleComponentsDetectedRejects(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"malformed":     `{"uid":`,
		"missing uid":   `{"components":["windows 7"]}`,
		"no components": `{"uid":"scan-42","components":[]}`,
	}
	for name, msg := range cases {
		t.Run(name, func(t *testing.T) {
			publisher := &fakePublisher{}
			err := HandleComponentsDetected(context.Background(), []byte(msg), &fakeService{}, publisher, zap.NewNop())
			assert.Error(t, err)
			assert.Empty(t, publisher.events)
		})
	}
}

func TestHandleComponentsDetectedLookupFailure(t *testing.T) {
	t.Parallel()
	boom := errors.New("store offline")
	publisher := &fakePublisher{}
	msg := []byte(`{"uid":"scan-42","components":["windows 7"]}`)

	err := HandleComponentsDetected(context.Background(), msg, &fakeService{err: boom}, publisher, zap.NewNop())
	require.ErrorIs(t, err, boom)
	assert.Empty(t, publisher.events)
}

func TestPublishLookupCompleted(t *testing.T) {
	t.Parallel()
	writer := &fakeWriter{}
	producer := &ResultProducer{Writer: writer}
	req := ComponentsDetectedEvent{EventID: "e-1", UID: "scan-42"}
	result := map[string][]string{"summary": {}}

	require.NoError(t, producer.PublishLookupCompleted(context.Background(), req, result))
	require.Len(t, writer.msgs, 1)
	assert.Equal(t, "scan-42", string(writer.msgs[0].Key))

	var event LookupCompletedEvent
	require.NoError(t, json.Unmarshal(writer.msgs[0].Value, &event))
	assert.Equal(t, EventLookupCompleted, event.EventType)
	assert.Equal(t, SchemaVersion, event.SchemaVersion)
	assert.Equal(t, "e-1", event.RequestID)
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, result, event.Result)

	require.NoError(t, producer.Close())
	assert.True(t, writer.closed)
}
