// Package boardsync keeps a client-side replica of the board in sync with
// the server's push channel. The server sends a full board_sync snapshot
// on every (re)connect, then incremental events; the syncer applies them
// to the replica and reconnects with exponential backoff when the
// connection drops.
package boardsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/taskdeck/taskdeck/internal/common/logger"
	ws "github.com/taskdeck/taskdeck/pkg/websocket"
	"go.uber.org/zap"
)

// State is the connection state of the syncer.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateSynced       State = "synced"
	StateReconnecting State = "reconnecting"
)

// Conn is one established push connection.
type Conn interface {
	// ReadMessage blocks until the next message or a connection error.
	ReadMessage() (*ws.Message, error)
	Close() error
}

// Dialer establishes push connections.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// Syncer runs the reconnect state machine. It owns a Replica that callers
// read through Board().
type Syncer struct {
	dialer  Dialer
	replica *Replica
	logger  *logger.Logger

	// OnEvent, when set, is called for every applied notification after
	// the replica has been updated.
	OnEvent func(msg *ws.Message)

	// Refetch, when set, is called after the first board_sync of a
	// reconnection. The fetched board replaces the snapshot, guarding
	// against events missed between the channel opening and the first
	// message arriving.
	Refetch RefetchFunc

	mu    sync.RWMutex
	state State
}

// NewSyncer creates a syncer in the disconnected state.
func NewSyncer(dialer Dialer, log *logger.Logger) *Syncer {
	return &Syncer{
		dialer:  dialer,
		replica: NewReplica(),
		logger:  log.WithFields(zap.String("component", "boardsync")),
		state:   StateDisconnected,
	}
}

// State returns the current connection state.
func (s *Syncer) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Replica returns the syncer's replica.
func (s *Syncer) Replica() *Replica {
	return s.replica
}

func (s *Syncer) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Run connects and keeps the replica in sync until ctx is cancelled.
// Connection failures and drops are retried with exponential backoff
// (1s doubling to 30s); a successful sync resets the backoff.
func (s *Syncer) Run(ctx context.Context) error {
	var backoff Backoff
	attempts := 0

	for {
		if attempts > 0 {
			s.setState(StateReconnecting)
			if err := sleep(ctx, backoff.Next()); err != nil {
				s.setState(StateDisconnected)
				return err
			}
		} else {
			s.setState(StateConnecting)
		}
		attempts++

		conn, err := s.dialer.Dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				s.setState(StateDisconnected)
				return ctx.Err()
			}
			s.logger.Warn("connect failed", zap.Error(err))
			continue
		}

		err = s.pump(ctx, conn, &backoff, attempts > 1)
		_ = conn.Close()
		if ctx.Err() != nil {
			s.setState(StateDisconnected)
			return ctx.Err()
		}
		if err != nil {
			s.logger.Warn("connection lost", zap.Error(err))
		}
	}
}

// pump reads messages from one connection until it fails. The first
// board_sync moves the syncer to synced and resets the backoff.
func (s *Syncer) pump(ctx context.Context, conn Conn, backoff *Backoff, reconnect bool) error {
	// Unblock the read when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if msg.Type != ws.MessageTypeNotification {
			continue
		}

		if err := s.replica.Apply(msg); err != nil {
			// A malformed event means the replica can no longer be
			// trusted; drop the connection and resync from a fresh
			// snapshot.
			return err
		}

		if msg.Action == ws.ActionBoardSync {
			if reconnect && s.Refetch != nil {
				board, err := s.Refetch(ctx)
				if err != nil {
					return fmt.Errorf("refetch after reconnect: %w", err)
				}
				s.replica.Replace(board)
				reconnect = false
			}
			backoff.Reset()
			s.setState(StateSynced)
			s.logger.Debug("replica synced")
		}

		if s.OnEvent != nil {
			s.OnEvent(msg)
		}
	}
}

// sleep waits for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
