package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VijeshVS/LocalHire-sub000/internal/api/model"
)

type fakeOutboxSource struct {
	mu        sync.Mutex
	events    []model.OutboxEvent
	published []string
	markErr   error
}

func (f *fakeOutboxSource) ListUnpublishedEvents(_ context.Context, _ int) ([]model.OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.OutboxEvent
	for _, ev := range f.events {
		if !contains(f.published, ev.ID) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeOutboxSource) MarkEventsPublished(_ context.Context, ids []string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	f.published = append(f.published, ids...)
	return nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

type fakePublisher struct {
	mu     sync.Mutex
	bodies [][]byte
	err    error
}

func (f *fakePublisher) PublishWithRetry(_ context.Context, body []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.bodies = append(f.bodies, body)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// noopRelay builds a relay with no events to push, for services under
// test that relay after every transition.
func noopRelay() *OutboxRelay {
	return NewOutboxRelay(&fakeOutboxSource{}, &fakePublisher{}, discardLogger())
}

func TestOutboxRelayPublishesAndMarks(t *testing.T) {
	source := &fakeOutboxSource{events: []model.OutboxEvent{
		{ID: "ev-1", EventType: "offer_received"},
		{ID: "ev-2", EventType: "offer_rejected"},
	}}
	publisher := &fakePublisher{}
	relay := NewOutboxRelay(source, publisher, discardLogger())

	relay.Relay(context.Background())

	require.Len(t, publisher.bodies, 2)
	var msg struct {
		EventID string `json:"event_id"`
	}
	require.NoError(t, json.Unmarshal(publisher.bodies[0], &msg))
	assert.Equal(t, "ev-1", msg.EventID)
	assert.ElementsMatch(t, []string{"ev-1", "ev-2"}, source.published)

	// A second pass finds nothing left to publish.
	relay.Relay(context.Background())
	assert.Len(t, publisher.bodies, 2)
}

func TestOutboxRelayPublishFailureLeavesEventsUnmarked(t *testing.T) {
	source := &fakeOutboxSource{events: []model.OutboxEvent{{ID: "ev-1"}}}
	publisher := &fakePublisher{err: errors.New("broker down")}
	relay := NewOutboxRelay(source, publisher, discardLogger())

	relay.Relay(context.Background())
	assert.Empty(t, source.published)

	// Broker recovers, next pass delivers the event.
	publisher.err = nil
	relay.Relay(context.Background())
	assert.Equal(t, []string{"ev-1"}, source.published)
}

func TestOutboxRelayMarkFailureIsSwallowed(t *testing.T) {
	source := &fakeOutboxSource{
		events:  []model.OutboxEvent{{ID: "ev-1"}},
		markErr: errors.New("db down"),
	}
	relay := NewOutboxRelay(source, &fakePublisher{}, discardLogger())

	// Must not panic or surface the error.
	relay.Relay(context.Background())
	assert.Empty(t, source.published)
}
