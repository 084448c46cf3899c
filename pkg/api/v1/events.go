package v1

// Event payloads carried on the push channel, one per event discriminator.
// board_sync is synthetic: it is built per connection, not published on the
// event bus.

// BoardSyncPayload carries the full snapshot delivered to a freshly
// connected observer before any incremental event.
type BoardSyncPayload struct {
	Board Board `json:"board"`
}

// TaskCreatedPayload carries the newly created task.
type TaskCreatedPayload struct {
	Task Task `json:"task"`
}

// TaskUpdatedPayload carries the task after a field update.
type TaskUpdatedPayload struct {
	Task Task `json:"task"`
}

// TaskMovedPayload carries the moved task plus the column it left, so
// observers can remove stale renderings from the source column.
type TaskMovedPayload struct {
	Task       Task   `json:"task"`
	FromColumn string `json:"fromColumn"`
}

// TaskDeletedPayload carries only the id: the task body is gone and is not
// replayable.
type TaskDeletedPayload struct {
	TaskID string `json:"taskId"`
}

// ColumnsUpdatedPayload carries the full replacement column set.
type ColumnsUpdatedPayload struct {
	Columns []Column `json:"columns"`
}
