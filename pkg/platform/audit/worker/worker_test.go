package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "worktrack/pkg/domain"
	audit "worktrack/pkg/platform/audit"
)

func event(action audit.Action) audit.Event {
	return audit.Event{
		Timestamp: time.Now().UTC(),
		Action:    action,
		ActorID:   id.NewUserID(),
		Subject:   "task-1",
	}
}

func TestWorkerPersistsEvents(t *testing.T) {
	store := audit.NewMemoryStore()
	inbox := make(chan audit.Event, 8)
	worker := New(store, inbox, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	publisher := NewChannelPublisher(inbox)
	require.NoError(t, publisher.Emit(ctx, event(audit.ActionTaskCreated)))
	require.NoError(t, publisher.Emit(ctx, event(audit.ActionProgressRecorded)))

	assert.Eventually(t, func() bool {
		return len(store.Events()) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestWorkerDrainsOnShutdown(t *testing.T) {
	store := audit.NewMemoryStore()
	inbox := make(chan audit.Event, 8)
	worker := New(store, inbox, nil)

	// Buffer events before the worker ever runs, then cancel immediately.
	publisher := NewChannelPublisher(inbox)
	for i := 0; i < 5; i++ {
		require.NoError(t, publisher.Emit(context.Background(), event(audit.ActionTaskEdited)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, worker.Run(ctx))

	assert.Len(t, store.Events(), 5)
}

func TestChannelPublisherDropsWhenFull(t *testing.T) {
	inbox := make(chan audit.Event, 1)
	publisher := NewChannelPublisher(inbox)

	require.NoError(t, publisher.Emit(context.Background(), event(audit.ActionTaskCreated)))
	err := publisher.Emit(context.Background(), event(audit.ActionTaskCreated))
	assert.ErrorIs(t, err, audit.ErrBufferFull)
}
