// Package dto defines request and response shapes for the board HTTP API.
package dto

import (
	v1 "github.com/taskdeck/taskdeck/pkg/api/v1"
)

// CreateTaskRequest is the POST /api/v1/tasks body.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Column      string `json:"column"`
	Priority    string `json:"priority"`
	Assignee    string `json:"assignee"`
}

// UpdateTaskRequest is the PATCH /api/v1/tasks/:id body. All fields are
// optional; Column moves the task, the rest patch fields in place. When a
// move and field edits arrive together the move is applied first.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Column      *string `json:"column"`
	Priority    *string `json:"priority"`
	Assignee    *string `json:"assignee"`
}

// Empty reports whether the request carries no changes at all.
func (r UpdateTaskRequest) Empty() bool {
	return r.Title == nil && r.Description == nil && r.Column == nil &&
		r.Priority == nil && r.Assignee == nil
}

// UpdateColumnsRequest is the PUT /api/v1/columns body. It replaces the
// whole column set.
type UpdateColumnsRequest struct {
	Columns []v1.Column `json:"columns"`
}

// ListTasksResponse wraps a task listing.
type ListTasksResponse struct {
	Tasks []v1.Task `json:"tasks"`
	Total int       `json:"total"`
}

// ColumnsResponse wraps the current column set.
type ColumnsResponse struct {
	Columns []v1.Column `json:"columns"`
}
