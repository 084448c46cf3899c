// Package models defines the board's value types: tasks, columns and the
// board aggregate itself.
package models

import (
	"strings"
	"time"
)

// Validation limits enforced by the store.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
)

// Priority is a fixed 3-level task priority.
type Priority string

const (
	// PriorityCritical is the highest priority level.
	PriorityCritical Priority = "P0"
	// PriorityNormal is the default priority level.
	PriorityNormal Priority = "P1"
	// PriorityLow is the lowest priority level.
	PriorityLow Priority = "P2"
)

// Rank returns the sort rank of a priority, critical first.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityNormal:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Valid reports whether p is one of the three known levels.
func (p Priority) Valid() bool {
	return p == PriorityCritical || p == PriorityNormal || p == PriorityLow
}

// ParsePriority accepts both the wire form ("P0") and the spelled-out form
// ("critical") used by humans on the CLI and by tool-calling agents.
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "p0", "critical":
		return PriorityCritical, true
	case "p1", "normal", "":
		return PriorityNormal, true
	case "p2", "low":
		return PriorityLow, true
	default:
		return "", false
	}
}

// SortBy is the task field a column orders its tasks by for display.
type SortBy string

const (
	SortByPriority SortBy = "priority"
	SortByCreated  SortBy = "created"
	SortByUpdated  SortBy = "updated"
)

// Valid reports whether s is a known sort field.
func (s SortBy) Valid() bool {
	return s == SortByPriority || s == SortByCreated || s == SortByUpdated
}

// SortOrder is the direction of a column's display sort.
type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

// Valid reports whether o is a known sort order.
func (o SortOrder) Valid() bool {
	return o == SortAscending || o == SortDescending
}

// Task is a mutable unit of work. Identity and timestamps are assigned by
// the store at creation and never supplied by callers.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Column      string    `json:"column"`
	Priority    Priority  `json:"priority"`
	Assignee    string    `json:"assignee"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Column is an ordered named bucket with a display-sort policy.
type Column struct {
	Name      string    `json:"name"`
	SortBy    SortBy    `json:"sortBy"`
	SortOrder SortOrder `json:"sortOrder"`
}

// Board is the aggregate root and the unit of persistence. Column order is
// significant; the first column is the default for task creation. Task
// insertion order carries no meaning but is preserved in the file.
type Board struct {
	Columns []Column `json:"columns"`
	Tasks   []*Task  `json:"tasks"`
	Theme   string   `json:"theme,omitempty"`
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	c := &Board{
		Columns: make([]Column, len(b.Columns)),
		Tasks:   make([]*Task, len(b.Tasks)),
		Theme:   b.Theme,
	}
	copy(c.Columns, b.Columns)
	for i, t := range b.Tasks {
		c.Tasks[i] = t.Clone()
	}
	return c
}

// HasColumn reports whether the board contains a column with the given name.
func (b *Board) HasColumn(name string) bool {
	for _, col := range b.Columns {
		if col.Name == name {
			return true
		}
	}
	return false
}

// TaskUpdate carries the optional fields of a partial task update.
// A nil field leaves the current value untouched.
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *Priority
	Assignee    *string
}

// Empty reports whether the update changes nothing.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Priority == nil && u.Assignee == nil
}
