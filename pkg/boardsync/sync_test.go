package boardsync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/common/logger"
	v1 "github.com/taskdeck/taskdeck/pkg/api/v1"
	ws "github.com/taskdeck/taskdeck/pkg/websocket"
)

var errConnClosed = errors.New("connection closed")

// fakeConn serves a scripted message sequence, then fails reads.
type fakeConn struct {
	mu       sync.Mutex
	messages []*ws.Message
	closed   chan struct{}
	once     sync.Once
}

func newFakeConn(messages ...*ws.Message) *fakeConn {
	return &fakeConn{messages: messages, closed: make(chan struct{})}
}

func (c *fakeConn) ReadMessage() (*ws.Message, error) {
	c.mu.Lock()
	if len(c.messages) > 0 {
		msg := c.messages[0]
		c.messages = c.messages[1:]
		c.mu.Unlock()
		return msg, nil
	}
	c.mu.Unlock()
	<-c.closed
	return nil, errConnClosed
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

// fakeDialer hands out scripted connections, then blocks until cancelled.
type fakeDialer struct {
	mu    sync.Mutex
	conns []*fakeConn
	dials int
}

func (d *fakeDialer) Dial(ctx context.Context) (Conn, error) {
	d.mu.Lock()
	d.dials++
	if len(d.conns) > 0 {
		conn := d.conns[0]
		d.conns = d.conns[1:]
		d.mu.Unlock()
		return conn, nil
	}
	d.mu.Unlock()
	<-ctx.Done()
	return nil, ctx.Err()
}

func syncTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(logger.LoggingConfig{Level: "error", Format: "console"})
	require.NoError(t, err)
	return log
}

func snapshotMsg(t *testing.T, tasks ...v1.Task) *ws.Message {
	t.Helper()
	return notification(t, ws.ActionBoardSync, v1.BoardSyncPayload{
		Board: v1.Board{
			Columns: []v1.Column{{Name: "Todo", SortBy: "created", SortOrder: "asc"}},
			Tasks:   tasks,
		},
	})
}

func TestSyncerSyncsAndAppliesEvents(t *testing.T) {
	conn := newFakeConn(
		snapshotMsg(t),
		notification(t, ws.ActionTaskCreated, v1.TaskCreatedPayload{
			Task: v1.Task{ID: "t1", Title: "new", Column: "Todo", Priority: "P1"},
		}),
	)
	dialer := &fakeDialer{conns: []*fakeConn{conn}}
	syncer := NewSyncer(dialer, syncTestLogger(t))

	applied := make(chan string, 8)
	syncer.OnEvent = func(msg *ws.Message) {
		applied <- msg.Action
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- syncer.Run(ctx) }()

	assert.Equal(t, ws.ActionBoardSync, waitFor(t, applied))
	assert.Equal(t, ws.ActionTaskCreated, waitFor(t, applied))
	assert.Equal(t, StateSynced, syncer.State())

	board := syncer.Replica().Board()
	require.Len(t, board.Tasks, 1)
	assert.Equal(t, "new", board.Tasks[0].Title)

	cancel()
	conn.Close()
	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateDisconnected, syncer.State())
}

func TestSyncerReconnectsAndResyncs(t *testing.T) {
	first := newFakeConn(
		snapshotMsg(t, v1.Task{ID: "t1", Title: "old", Column: "Todo", Priority: "P1"}),
	)
	second := newFakeConn(
		snapshotMsg(t, v1.Task{ID: "t2", Title: "fresh", Column: "Todo", Priority: "P0"}),
	)
	dialer := &fakeDialer{conns: []*fakeConn{first, second}}
	syncer := NewSyncer(dialer, syncTestLogger(t))

	applied := make(chan string, 8)
	syncer.OnEvent = func(msg *ws.Message) {
		applied <- msg.Action
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = syncer.Run(ctx) }()

	assert.Equal(t, ws.ActionBoardSync, waitFor(t, applied))

	// Drop the first connection; the syncer backs off and redials.
	first.Close()
	assert.Equal(t, ws.ActionBoardSync, waitFor(t, applied))

	board := syncer.Replica().Board()
	require.Len(t, board.Tasks, 1)
	assert.Equal(t, "fresh", board.Tasks[0].Title, "snapshot replaces the stale replica")
	assert.Equal(t, StateSynced, syncer.State())

	dialer.mu.Lock()
	assert.Equal(t, 2, dialer.dials)
	dialer.mu.Unlock()
}

func TestSyncerRefetchesOnReconnect(t *testing.T) {
	first := newFakeConn(snapshotMsg(t))
	second := newFakeConn(
		snapshotMsg(t, v1.Task{ID: "t1", Title: "from snapshot", Column: "Todo", Priority: "P1"}),
	)
	dialer := &fakeDialer{conns: []*fakeConn{first, second}}
	syncer := NewSyncer(dialer, syncTestLogger(t))

	refetches := 0
	syncer.Refetch = func(ctx context.Context) (v1.Board, error) {
		refetches++
		return v1.Board{
			Columns: []v1.Column{{Name: "Todo", SortBy: "created", SortOrder: "asc"}},
			Tasks:   []v1.Task{{ID: "t1", Title: "authoritative", Column: "Todo", Priority: "P1"}},
		}, nil
	}

	applied := make(chan string, 8)
	syncer.OnEvent = func(msg *ws.Message) {
		applied <- msg.Action
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = syncer.Run(ctx) }()

	assert.Equal(t, ws.ActionBoardSync, waitFor(t, applied))
	assert.Equal(t, 0, refetches, "first connect trusts the snapshot alone")

	first.Close()
	assert.Equal(t, ws.ActionBoardSync, waitFor(t, applied))

	assert.Equal(t, 1, refetches)
	board := syncer.Replica().Board()
	require.Len(t, board.Tasks, 1)
	assert.Equal(t, "authoritative", board.Tasks[0].Title, "refetched state wins over the snapshot")
}

func waitFor(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return ""
	}
}
