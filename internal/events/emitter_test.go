package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	seen []*JobRequestEvent
	err  error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *JobRequestEvent) error {
	h.seen = append(h.seen, event)
	return h.err
}

func newEmitter() *InMemoryEventEmitter {
	return NewInMemoryEventEmitter(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNewJobRequestEvent(t *testing.T) {
	t.Parallel()
	event, err := NewJobRequestEvent("process_analysis", map[string]string{
		"user_id": uuid.New().String(),
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, "process_analysis", event.Type)
	assert.False(t, event.CreatedAt.IsZero())

	var payload struct {
		UserID uuid.UUID `json:"user_id"`
	}
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.NotEqual(t, uuid.Nil, payload.UserID)
}

func TestNewJobRequestEventUnmarshalablePayload(t *testing.T) {
	t.Parallel()
	_, err := NewJobRequestEvent("process_analysis", make(chan int))
	assert.Error(t, err)
}

func TestEmitEventNoHandlers(t *testing.T) {
	t.Parallel()
	emitter := newEmitter()
	event, err := NewJobRequestEvent("process_analysis", nil)
	require.NoError(t, err)

	assert.NoError(t, emitter.EmitEvent(context.Background(), event),
		"Emitting with no handlers is a no-op, not a failure")
}

func TestEmitEventReachesAllHandlers(t *testing.T) {
	t.Parallel()
	emitter := newEmitter()
	first := &recordingHandler{}
	second := &recordingHandler{}
	emitter.RegisterHandler(first)
	emitter.RegisterHandler(second)

	event, err := NewJobRequestEvent("process_analysis", nil)
	require.NoError(t, err)
	require.NoError(t, emitter.EmitEvent(context.Background(), event))

	require.Len(t, first.seen, 1)
	require.Len(t, second.seen, 1)
	assert.Equal(t, event.ID, first.seen[0].ID)
	assert.Equal(t, event.ID, second.seen[0].ID)
}

func TestEmitEventContinuesPastFailingHandler(t *testing.T) {
	t.Parallel()
	emitter := newEmitter()
	handlerErr := errors.New("handler exploded")
	failing := &recordingHandler{err: handlerErr}
	healthy := &recordingHandler{}
	emitter.RegisterHandler(failing)
	emitter.RegisterHandler(healthy)

	event, err := NewJobRequestEvent("process_analysis", nil)
	require.NoError(t, err)

	emitErr := emitter.EmitEvent(context.Background(), event)
	assert.ErrorIs(t, emitErr, handlerErr, "The first handler error is reported")
	assert.Len(t, healthy.seen, 1, "Later handlers still receive the event")
}
