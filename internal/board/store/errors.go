package store

import "errors"

// Sentinel errors for the four rejection classes. Every operation is
// all-or-nothing: a returned error means neither the in-memory board nor
// the persisted file changed.
var (
	// ErrValidation marks a malformed, missing or oversized field.
	ErrValidation = errors.New("validation failed")

	// ErrTaskNotFound marks an unknown task id.
	ErrTaskNotFound = errors.New("task not found")

	// ErrColumnNotFound marks a column name not present in the current
	// column set.
	ErrColumnNotFound = errors.New("column not found")

	// ErrNoColumns marks a column-set update that would leave the board
	// without any column.
	ErrNoColumns = errors.New("board must keep at least one column")
)
