package models

import (
	v1 "github.com/taskdeck/taskdeck/pkg/api/v1"
)

// ToAPI converts an internal Task to its wire shape.
func (t *Task) ToAPI() v1.Task {
	return v1.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Column:      t.Column,
		Priority:    string(t.Priority),
		Assignee:    t.Assignee,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// ToAPI converts an internal Column to its wire shape.
func (c Column) ToAPI() v1.Column {
	return v1.Column{
		Name:      c.Name,
		SortBy:    string(c.SortBy),
		SortOrder: string(c.SortOrder),
	}
}

// ColumnsToAPI converts a column slice to wire shapes.
func ColumnsToAPI(cols []Column) []v1.Column {
	out := make([]v1.Column, 0, len(cols))
	for _, c := range cols {
		out = append(out, c.ToAPI())
	}
	return out
}

// ToAPI converts an internal Board to its wire shape.
func (b *Board) ToAPI() v1.Board {
	tasks := make([]v1.Task, 0, len(b.Tasks))
	for _, t := range b.Tasks {
		tasks = append(tasks, t.ToAPI())
	}
	return v1.Board{
		Columns: ColumnsToAPI(b.Columns),
		Tasks:   tasks,
		Theme:   b.Theme,
	}
}
