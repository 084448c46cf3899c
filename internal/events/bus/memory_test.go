package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/common/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(logger.LoggingConfig{Level: "error", Format: "console"})
	require.NoError(t, err)
	return log
}

func TestMemoryBusDeliversInOrder(t *testing.T) {
	b := NewMemoryEventBus(testLogger(t))
	defer b.Close()

	var got []string
	_, err := b.Subscribe("task.created", func(ctx context.Context, event *Event) error {
		got = append(got, event.Data.(string))
		return nil
	})
	require.NoError(t, err)

	for _, v := range []string{"a", "b", "c"} {
		require.NoError(t, b.Publish(context.Background(), "task.created", NewEvent("task.created", "test", v)))
	}

	assert.Equal(t, []string{"a", "b", "c"}, got, "publish order is delivery order")
}

func TestMemoryBusHandlersRunInRegistrationOrder(t *testing.T) {
	b := NewMemoryEventBus(testLogger(t))
	defer b.Close()

	var got []string
	for _, name := range []string{"first", "second", "third"} {
		n := name
		_, err := b.Subscribe("subj", func(ctx context.Context, event *Event) error {
			got = append(got, n)
			return nil
		})
		require.NoError(t, err)
	}

	require.NoError(t, b.Publish(context.Background(), "subj", NewEvent("subj", "test", nil)))
	assert.Equal(t, []string{"first", "second", "third"}, got)
}

func TestMemoryBusHandlerErrorDoesNotStopOthers(t *testing.T) {
	b := NewMemoryEventBus(testLogger(t))
	defer b.Close()

	var reached bool
	_, err := b.Subscribe("subj", func(ctx context.Context, event *Event) error {
		return errors.New("boom")
	})
	require.NoError(t, err)
	_, err = b.Subscribe("subj", func(ctx context.Context, event *Event) error {
		reached = true
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(context.Background(), "subj", NewEvent("subj", "test", nil)))
	assert.True(t, reached)
}

func TestMemoryBusUnsubscribe(t *testing.T) {
	b := NewMemoryEventBus(testLogger(t))
	defer b.Close()

	calls := 0
	sub, err := b.Subscribe("subj", func(ctx context.Context, event *Event) error {
		calls++
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(context.Background(), "subj", NewEvent("subj", "test", nil)))
	require.NoError(t, sub.Unsubscribe())
	assert.False(t, sub.IsValid())
	require.NoError(t, b.Publish(context.Background(), "subj", NewEvent("subj", "test", nil)))

	assert.Equal(t, 1, calls)
}

func TestMemoryBusSubjectIsolation(t *testing.T) {
	b := NewMemoryEventBus(testLogger(t))
	defer b.Close()

	var got []string
	_, err := b.Subscribe("task.created", func(ctx context.Context, event *Event) error {
		got = append(got, "created")
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(context.Background(), "task.deleted", NewEvent("task.deleted", "test", nil)))
	assert.Empty(t, got)
}

func TestMemoryBusClose(t *testing.T) {
	b := NewMemoryEventBus(testLogger(t))
	assert.True(t, b.IsConnected())

	b.Close()
	assert.False(t, b.IsConnected())

	err := b.Publish(context.Background(), "subj", NewEvent("subj", "test", nil))
	assert.Error(t, err)
	_, err = b.Subscribe("subj", func(ctx context.Context, event *Event) error { return nil })
	assert.Error(t, err)
}
