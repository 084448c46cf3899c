package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/taskdeck/taskdeck/internal/board/models"
)

// persistedBoard is the on-disk shape with columns kept raw so that legacy
// files (columns as bare name strings) can be upcast in one place. After
// decodeBoard returns, in-memory state is always current-shape.
type persistedBoard struct {
	Columns []json.RawMessage `json:"columns"`
	Tasks   []*models.Task    `json:"tasks"`
	Theme   string            `json:"theme,omitempty"`
}

// decodeBoard parses a board file, upcasting legacy shapes. The second
// return value reports whether a migration happened, so the caller can
// rewrite the file in the current shape immediately.
func decodeBoard(data []byte) (*models.Board, bool, error) {
	var raw persistedBoard
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false, fmt.Errorf("parse board file: %w", err)
	}

	board := &models.Board{
		Columns: make([]models.Column, 0, len(raw.Columns)),
		Tasks:   make([]*models.Task, 0, len(raw.Tasks)),
		Theme:   raw.Theme,
	}

	migrated := false
	for _, rawCol := range raw.Columns {
		var name string
		if err := json.Unmarshal(rawCol, &name); err == nil {
			// Legacy shape: column persisted as a bare name.
			board.Columns = append(board.Columns, upcastColumn(name))
			migrated = true
			continue
		}

		var col models.Column
		if err := json.Unmarshal(rawCol, &col); err != nil {
			return nil, false, fmt.Errorf("parse column: %w", err)
		}
		if !col.SortBy.Valid() || !col.SortOrder.Valid() {
			defaulted := upcastColumn(col.Name)
			if !col.SortBy.Valid() {
				col.SortBy = defaulted.SortBy
				migrated = true
			}
			if !col.SortOrder.Valid() {
				col.SortOrder = defaulted.SortOrder
				migrated = true
			}
		}
		board.Columns = append(board.Columns, col)
	}

	for _, task := range raw.Tasks {
		if task == nil {
			continue
		}
		if !task.Priority.Valid() {
			if p, ok := models.ParsePriority(string(task.Priority)); ok {
				task.Priority = p
			} else {
				task.Priority = models.PriorityNormal
			}
			migrated = true
		}
		if task.UpdatedAt.Before(task.CreatedAt) {
			task.UpdatedAt = task.CreatedAt
			migrated = true
		}
		board.Tasks = append(board.Tasks, task)
	}

	return board, migrated, nil
}

// upcastColumn infers a sort policy from conventional column names and
// defaults to creation order otherwise.
func upcastColumn(name string) models.Column {
	col := models.Column{
		Name:      strings.TrimSpace(name),
		SortBy:    models.SortByCreated,
		SortOrder: models.SortAscending,
	}
	switch strings.ToLower(col.Name) {
	case "done", "completed", "archived":
		col.SortBy = models.SortByUpdated
		col.SortOrder = models.SortDescending
	case "in progress", "doing", "review":
		col.SortBy = models.SortByUpdated
		col.SortOrder = models.SortDescending
	}
	return col
}
