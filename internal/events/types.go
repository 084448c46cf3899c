// Package events provides event subjects for the taskdeck event system.
package events

// Subjects for task events.
const (
	TaskCreated = "task.created"
	TaskUpdated = "task.updated"
	TaskMoved   = "task.moved"
	TaskDeleted = "task.deleted"
)

// Subjects for board-level events. board_sync never crosses the bus: it
// is synthesized per websocket connection from a store snapshot.
const (
	ColumnsUpdated = "columns.updated"
)

// All lists every subject the board store publishes, in no particular
// order. The websocket bridge subscribes to each explicitly.
func All() []string {
	return []string{
		TaskCreated,
		TaskUpdated,
		TaskMoved,
		TaskDeleted,
		ColumnsUpdated,
	}
}
