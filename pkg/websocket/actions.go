package websocket

// Action constants for WebSocket messages
const (
	// Health
	ActionHealthCheck = "health.check"

	// Request actions (client -> server)
	ActionBoardGet = "board.get"

	// Notification actions (server -> client). These are the event
	// discriminators observers switch on; board_sync always precedes any
	// incremental event on a fresh connection.
	ActionBoardSync      = "board_sync"
	ActionTaskCreated    = "task_created"
	ActionTaskUpdated    = "task_updated"
	ActionTaskMoved      = "task_moved"
	ActionTaskDeleted    = "task_deleted"
	ActionColumnsUpdated = "columns_updated"
)

// Error codes
const (
	ErrorCodeBadRequest    = "BAD_REQUEST"
	ErrorCodeNotFound      = "NOT_FOUND"
	ErrorCodeInternalError = "INTERNAL_ERROR"
	ErrorCodeValidation    = "VALIDATION_ERROR"
	ErrorCodeUnknownAction = "UNKNOWN_ACTION"
)
