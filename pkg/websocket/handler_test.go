package websocket

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherRoutesByAction(t *testing.T) {
	d := NewDispatcher()

	d.RegisterFunc("echo", func(ctx context.Context, msg *Message) (*Message, error) {
		return NewResponse(msg.ID, msg.Action, map[string]any{"ok": true})
	})
	d.Register("static", HandlerFunc(func(ctx context.Context, msg *Message) (*Message, error) {
		return NewResponse(msg.ID, msg.Action, nil)
	}))

	assert.True(t, d.HasHandler("echo"))
	assert.True(t, d.HasHandler("static"))
	assert.False(t, d.HasHandler("missing"))

	req, err := NewRequest("r1", "echo", nil)
	require.NoError(t, err)
	resp, err := d.Dispatch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, MessageTypeResponse, resp.Type)
	assert.Equal(t, "r1", resp.ID)
	assert.Equal(t, "echo", resp.Action)
}

func TestDispatcherUnknownAction(t *testing.T) {
	d := NewDispatcher()

	req, err := NewRequest("r2", "missing", nil)
	require.NoError(t, err)

	resp, err := d.Dispatch(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, MessageTypeError, resp.Type)

	var payload ErrorPayload
	require.NoError(t, resp.ParsePayload(&payload))
	assert.Equal(t, ErrorCodeUnknownAction, payload.Code)
}
