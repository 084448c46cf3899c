package boardsync

import (
	"fmt"
	"sync"

	v1 "github.com/taskdeck/taskdeck/pkg/api/v1"
	ws "github.com/taskdeck/taskdeck/pkg/websocket"
)

// Replica is a client-side copy of the board, kept current by applying the
// event stream. It never mutates state on its own: a board_sync replaces
// everything, incremental events patch in place.
type Replica struct {
	mu    sync.RWMutex
	board v1.Board
	ready bool
}

// NewReplica returns an empty replica. It reports not-ready until the
// first board_sync arrives.
func NewReplica() *Replica {
	return &Replica{}
}

// Ready reports whether a board_sync has been applied yet.
func (r *Replica) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ready
}

// Board returns a deep copy of the current replica state.
func (r *Replica) Board() v1.Board {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneBoard(r.board)
}

// Replace swaps in a full board fetched out of band, e.g. from the REST
// API after a reconnect.
func (r *Replica) Replace(board v1.Board) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.board = cloneBoard(board)
	r.ready = true
}

// Apply applies one notification to the replica. Unknown actions are
// ignored so that newer servers can ship event types an older client does
// not understand.
func (r *Replica) Apply(msg *ws.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch msg.Action {
	case ws.ActionBoardSync:
		var p v1.BoardSyncPayload
		if err := msg.ParsePayload(&p); err != nil {
			return fmt.Errorf("parse board_sync: %w", err)
		}
		r.board = cloneBoard(p.Board)
		r.ready = true

	case ws.ActionTaskCreated:
		var p v1.TaskCreatedPayload
		if err := msg.ParsePayload(&p); err != nil {
			return fmt.Errorf("parse task_created: %w", err)
		}
		r.upsertTask(p.Task)

	case ws.ActionTaskUpdated:
		var p v1.TaskUpdatedPayload
		if err := msg.ParsePayload(&p); err != nil {
			return fmt.Errorf("parse task_updated: %w", err)
		}
		r.upsertTask(p.Task)

	case ws.ActionTaskMoved:
		var p v1.TaskMovedPayload
		if err := msg.ParsePayload(&p); err != nil {
			return fmt.Errorf("parse task_moved: %w", err)
		}
		r.upsertTask(p.Task)

	case ws.ActionTaskDeleted:
		var p v1.TaskDeletedPayload
		if err := msg.ParsePayload(&p); err != nil {
			return fmt.Errorf("parse task_deleted: %w", err)
		}
		for i, t := range r.board.Tasks {
			if t.ID == p.TaskID {
				r.board.Tasks = append(r.board.Tasks[:i], r.board.Tasks[i+1:]...)
				break
			}
		}

	case ws.ActionColumnsUpdated:
		var p v1.ColumnsUpdatedPayload
		if err := msg.ParsePayload(&p); err != nil {
			return fmt.Errorf("parse columns_updated: %w", err)
		}
		r.board.Columns = append([]v1.Column(nil), p.Columns...)
		// The server reassigns stranded tasks without task-level events;
		// mirror that so the replica stays renderable. Timestamps may lag
		// until the next board_sync.
		if len(r.board.Columns) > 0 {
			known := make(map[string]bool, len(r.board.Columns))
			for _, c := range r.board.Columns {
				known[c.Name] = true
			}
			for i := range r.board.Tasks {
				if !known[r.board.Tasks[i].Column] {
					r.board.Tasks[i].Column = r.board.Columns[0].Name
				}
			}
		}
	}

	return nil
}

// upsertTask replaces the task with the same id, or appends it. Updates
// for ids the replica has never seen are treated as creations so a missed
// event cannot wedge the stream.
func (r *Replica) upsertTask(task v1.Task) {
	for i, t := range r.board.Tasks {
		if t.ID == task.ID {
			r.board.Tasks[i] = task
			return
		}
	}
	r.board.Tasks = append(r.board.Tasks, task)
}

func cloneBoard(b v1.Board) v1.Board {
	out := v1.Board{
		Columns: append([]v1.Column(nil), b.Columns...),
		Tasks:   append([]v1.Task(nil), b.Tasks...),
		Theme:   b.Theme,
	}
	return out
}
