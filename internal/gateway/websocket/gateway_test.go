package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/board/store"
	"github.com/taskdeck/taskdeck/internal/common/logger"
	"github.com/taskdeck/taskdeck/internal/events/bus"
	v1 "github.com/taskdeck/taskdeck/pkg/api/v1"
	ws "github.com/taskdeck/taskdeck/pkg/websocket"
)

func newTestGateway(t *testing.T) (*httptest.Server, *store.Store, *Gateway) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.NewLogger(logger.LoggingConfig{Level: "error", Format: "console"})
	require.NoError(t, err)

	eventBus := bus.NewMemoryEventBus(log)
	st, err := store.New(filepath.Join(t.TempDir(), "board.json"), eventBus, log)
	require.NoError(t, err)

	gateway := NewGateway(st, log)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	RegisterBoardNotifications(ctx, eventBus, gateway.Hub, log)
	go gateway.Hub.Run(ctx)

	router := gin.New()
	gateway.SetupRoutes(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv, st, gateway
}

func dialGateway(t *testing.T, srv *httptest.Server) *gorillaws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readNotification(t *testing.T, conn *gorillaws.Conn) *ws.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg ws.Message
	require.NoError(t, conn.ReadJSON(&msg))
	return &msg
}

func waitForClients(t *testing.T, gw *Gateway, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for gw.Hub.GetClientCount() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d clients", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestConnectionReceivesSnapshotFirst(t *testing.T) {
	srv, st, gw := newTestGateway(t)

	_, err := st.CreateTask(t.Context(), store.CreateTaskParams{Title: "pre-existing"})
	require.NoError(t, err)

	conn := dialGateway(t, srv)
	msg := readNotification(t, conn)

	require.Equal(t, ws.ActionBoardSync, msg.Action)
	require.Equal(t, ws.MessageTypeNotification, msg.Type)

	var payload v1.BoardSyncPayload
	require.NoError(t, msg.ParsePayload(&payload))
	assert.Len(t, payload.Board.Columns, 3)
	require.Len(t, payload.Board.Tasks, 1)
	assert.Equal(t, "pre-existing", payload.Board.Tasks[0].Title)

	waitForClients(t, gw, 1)
}

func TestEventsFollowSnapshot(t *testing.T) {
	srv, st, gw := newTestGateway(t)

	conn := dialGateway(t, srv)
	first := readNotification(t, conn)
	require.Equal(t, ws.ActionBoardSync, first.Action)
	waitForClients(t, gw, 1)

	task, err := st.CreateTask(t.Context(), store.CreateTaskParams{Title: "live"})
	require.NoError(t, err)

	created := readNotification(t, conn)
	require.Equal(t, ws.ActionTaskCreated, created.Action)
	var createdPayload v1.TaskCreatedPayload
	require.NoError(t, created.ParsePayload(&createdPayload))
	assert.Equal(t, task.ID, createdPayload.Task.ID)

	_, err = st.MoveTask(t.Context(), task.ID, "Done")
	require.NoError(t, err)

	moved := readNotification(t, conn)
	require.Equal(t, ws.ActionTaskMoved, moved.Action)
	var movedPayload v1.TaskMovedPayload
	require.NoError(t, moved.ParsePayload(&movedPayload))
	assert.Equal(t, "Todo", movedPayload.FromColumn)
	assert.Equal(t, "Done", movedPayload.Task.Column)

	require.NoError(t, st.DeleteTask(t.Context(), task.ID))
	deleted := readNotification(t, conn)
	require.Equal(t, ws.ActionTaskDeleted, deleted.Action)
	var deletedPayload v1.TaskDeletedPayload
	require.NoError(t, deleted.ParsePayload(&deletedPayload))
	assert.Equal(t, task.ID, deletedPayload.TaskID)
}

func TestBoardGetRequest(t *testing.T) {
	srv, _, gw := newTestGateway(t)

	conn := dialGateway(t, srv)
	_ = readNotification(t, conn)
	waitForClients(t, gw, 1)

	req, err := ws.NewRequest("req-1", ws.ActionBoardGet, nil)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(req))

	resp := readNotification(t, conn)
	assert.Equal(t, ws.MessageTypeResponse, resp.Type)
	assert.Equal(t, "req-1", resp.ID)

	var payload v1.BoardSyncPayload
	require.NoError(t, resp.ParsePayload(&payload))
	assert.Len(t, payload.Board.Columns, 3)
}

func TestHandlerErrorsMapToWireCodes(t *testing.T) {
	srv, _, gw := newTestGateway(t)

	gw.Dispatcher.RegisterFunc("test.missing", func(ctx context.Context, msg *ws.Message) (*ws.Message, error) {
		return nil, fmt.Errorf("lookup: %w", store.ErrTaskNotFound)
	})
	gw.Dispatcher.RegisterFunc("test.invalid", func(ctx context.Context, msg *ws.Message) (*ws.Message, error) {
		return nil, fmt.Errorf("apply: %w", store.ErrValidation)
	})

	conn := dialGateway(t, srv)
	_ = readNotification(t, conn)
	waitForClients(t, gw, 1)

	cases := []struct {
		action string
		code   string
	}{
		{"test.missing", ws.ErrorCodeNotFound},
		{"test.invalid", ws.ErrorCodeValidation},
	}
	for i, tc := range cases {
		req, err := ws.NewRequest(fmt.Sprintf("req-%d", i), tc.action, nil)
		require.NoError(t, err)
		require.NoError(t, conn.WriteJSON(req))

		resp := readNotification(t, conn)
		require.Equal(t, ws.MessageTypeError, resp.Type)

		var payload ws.ErrorPayload
		require.NoError(t, resp.ParsePayload(&payload))
		assert.Equal(t, tc.code, payload.Code, tc.action)
	}
}

func TestRegisterWithSnapshotIsAtomic(t *testing.T) {
	log, err := logger.NewLogger(logger.LoggingConfig{Level: "error", Format: "console"})
	require.NoError(t, err)

	hub := NewHub(ws.NewDispatcher(), log)
	client := NewClient("c1", nil, hub, log)

	snapshot, err := ws.NewNotification(ws.ActionBoardSync, v1.BoardSyncPayload{})
	require.NoError(t, err)

	require.NoError(t, hub.RegisterWithSnapshot(client, func() (*ws.Message, error) {
		return snapshot, nil
	}))

	// The client is visible to broadcasts as soon as registration returns,
	// with the snapshot already ahead of anything broadcast later.
	assert.Equal(t, 1, hub.GetClientCount())
	require.Len(t, client.send, 1)

	note, err := ws.NewNotification(ws.ActionTaskCreated, v1.TaskCreatedPayload{})
	require.NoError(t, err)
	hub.broadcastMessage(note)
	require.Len(t, client.send, 2)

	var first ws.Message
	require.NoError(t, json.Unmarshal(<-client.send, &first))
	assert.Equal(t, ws.ActionBoardSync, first.Action)

	buildErr := fmt.Errorf("snapshot: %w", store.ErrNoColumns)
	failed := NewClient("c2", nil, hub, log)
	err = hub.RegisterWithSnapshot(failed, func() (*ws.Message, error) {
		return nil, buildErr
	})
	require.ErrorIs(t, err, store.ErrNoColumns)
	assert.Equal(t, 1, hub.GetClientCount())
}

func TestUnknownActionReturnsError(t *testing.T) {
	srv, _, gw := newTestGateway(t)

	conn := dialGateway(t, srv)
	_ = readNotification(t, conn)
	waitForClients(t, gw, 1)

	req, err := ws.NewRequest("req-2", "no.such.action", nil)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(req))

	resp := readNotification(t, conn)
	assert.Equal(t, ws.MessageTypeError, resp.Type)

	var payload ws.ErrorPayload
	require.NoError(t, resp.ParsePayload(&payload))
	assert.Equal(t, ws.ErrorCodeUnknownAction, payload.Code)
}
