// Package v1 defines the public wire shapes shared by the REST façade, the
// MCP tools, the push channel and the sync client. The JSON field names
// match the persisted board file.
package v1

import "time"

// Task represents a task on the board.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Column      string    `json:"column"`
	Priority    string    `json:"priority"` // P0 | P1 | P2
	Assignee    string    `json:"assignee"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Column represents a named bucket with its display-sort policy.
type Column struct {
	Name      string `json:"name"`
	SortBy    string `json:"sortBy"`    // priority | created | updated
	SortOrder string `json:"sortOrder"` // asc | desc
}

// Board is the full board snapshot.
type Board struct {
	Columns []Column `json:"columns"`
	Tasks   []Task   `json:"tasks"`
	Theme   string   `json:"theme,omitempty"`
}
