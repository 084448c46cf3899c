// Package store holds the authoritative board state. It is the only
// component allowed to mutate the board: every mutation validates its
// input, rewrites the backing file, and publishes exactly one domain event
// after the new state is durably written.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"
	"go.uber.org/zap"

	"github.com/taskdeck/taskdeck/internal/board/models"
	"github.com/taskdeck/taskdeck/internal/common/logger"
	"github.com/taskdeck/taskdeck/internal/events"
	"github.com/taskdeck/taskdeck/internal/events/bus"
	v1 "github.com/taskdeck/taskdeck/pkg/api/v1"
)

const eventSource = "board-store"

// Store is the single source of truth for board state. Mutations are
// serialized by one mutex, the Go analogue of the original single-threaded
// loop; there is no finer-grained locking to reason about.
type Store struct {
	mu     sync.Mutex
	path   string
	board  *models.Board
	index  map[string]*models.Task
	bus    bus.EventBus
	logger *logger.Logger
}

// CreateTaskParams carries the caller-supplied fields of a new task.
// Column and Priority are optional; identity and timestamps are never
// caller-supplied.
type CreateTaskParams struct {
	Title       string
	Description string
	Column      string
	Priority    models.Priority
	Assignee    string
}

// New loads the board from path, or initializes and persists a default
// board when no file exists. Legacy file shapes are migrated on load and
// written back immediately so the file is always current-shape.
func New(path string, eventBus bus.EventBus, log *logger.Logger) (*Store, error) {
	s := &Store{
		path:   path,
		bus:    eventBus,
		logger: log.WithFields(zap.String("component", "board-store")),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create board directory: %w", err)
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		s.board = defaultBoard()
		if err := s.persist(s.board); err != nil {
			return nil, err
		}
		s.logger.Info("initialized new board", zap.String("path", path))
	case err != nil:
		return nil, fmt.Errorf("read board file: %w", err)
	default:
		board, migrated, decodeErr := decodeBoard(data)
		if decodeErr != nil {
			return nil, decodeErr
		}
		s.board = board
		if migrated {
			if err := s.persist(s.board); err != nil {
				return nil, err
			}
			s.logger.Info("migrated board file to current shape", zap.String("path", path))
		}
		s.logger.Info("loaded board",
			zap.String("path", path),
			zap.Int("columns", len(board.Columns)),
			zap.Int("tasks", len(board.Tasks)))
	}

	s.reindex()
	return s, nil
}

// defaultBoard is the starter board used when no file exists yet.
func defaultBoard() *models.Board {
	return &models.Board{
		Columns: []models.Column{
			{Name: "Todo", SortBy: models.SortByCreated, SortOrder: models.SortAscending},
			{Name: "In Progress", SortBy: models.SortByUpdated, SortOrder: models.SortDescending},
			{Name: "Done", SortBy: models.SortByUpdated, SortOrder: models.SortDescending},
		},
		Tasks: []*models.Task{},
	}
}

func (s *Store) reindex() {
	s.index = make(map[string]*models.Task, len(s.board.Tasks))
	for _, t := range s.board.Tasks {
		s.index[t.ID] = t
	}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// GetBoard returns a deep copy of the current board state.
func (s *Store) GetBoard(ctx context.Context) *models.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Clone()
}

// GetColumns returns a copy of the current column set, in board order.
func (s *Store) GetColumns(ctx context.Context) []models.Column {
	s.mu.Lock()
	defer s.mu.Unlock()
	cols := make([]models.Column, len(s.board.Columns))
	copy(cols, s.board.Columns)
	return cols
}

// GetTasks returns copies of all tasks, optionally filtered to one column.
// An empty filter returns every task.
func (s *Store) GetTasks(ctx context.Context, columnFilter string) []*models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := make([]*models.Task, 0, len(s.board.Tasks))
	for _, t := range s.board.Tasks {
		if columnFilter != "" && t.Column != columnFilter {
			continue
		}
		tasks = append(tasks, t.Clone())
	}
	return tasks
}

// GetTask returns a copy of the task with the given id. Absence is not an
// error: the second return value reports whether the task exists.
func (s *Store) GetTask(ctx context.Context, id string) (*models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// CreateTask validates, assigns identity and timestamps, appends, persists
// and publishes task_created. The column defaults to the board's first
// column when omitted.
func (s *Store) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if len(title) > models.MaxTitleLength {
		return nil, fmt.Errorf("%w: title exceeds %d characters", ErrValidation, models.MaxTitleLength)
	}
	if len(params.Description) > models.MaxDescriptionLength {
		return nil, fmt.Errorf("%w: description exceeds %d characters", ErrValidation, models.MaxDescriptionLength)
	}

	priority := params.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}
	if !priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrValidation, string(params.Priority))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	column := params.Column
	if column == "" {
		column = s.board.Columns[0].Name
	}
	if !s.board.HasColumn(column) {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:          uuid.New().String(),
		Title:       title,
		Description: params.Description,
		Column:      column,
		Priority:    priority,
		Assignee:    params.Assignee,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	next := s.board.Clone()
	next.Tasks = append(next.Tasks, task.Clone())

	if err := s.commit(ctx, next, events.TaskCreated, v1.TaskCreatedPayload{Task: task.ToAPI()}); err != nil {
		return nil, err
	}
	s.logger.WithTaskID(task.ID).Info("task created", zap.String("column", column))
	return task, nil
}

// MoveTask moves a task to another column, refreshing its updated_at. The
// published task_moved event carries the previous column so observers can
// drop stale renderings.
func (s *Store) MoveTask(ctx context.Context, id, targetColumn string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrTaskNotFound, id)
	}
	if !s.board.HasColumn(targetColumn) {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, targetColumn)
	}

	next := s.board.Clone()
	task := findTask(next, id)
	fromColumn := task.Column
	task.Column = targetColumn
	task.UpdatedAt = time.Now().UTC()

	payload := v1.TaskMovedPayload{Task: task.ToAPI(), FromColumn: fromColumn}
	if err := s.commit(ctx, next, events.TaskMoved, payload); err != nil {
		return nil, err
	}
	s.logger.WithTaskID(id).Info("task moved",
		zap.String("from", fromColumn),
		zap.String("to", targetColumn))
	return task.Clone(), nil
}

// ValidateTaskUpdate normalizes and validates the fields of a partial
// update without applying it. Façades that combine a move with a field
// update call it up front so the whole request is rejected before any
// state changes.
func ValidateTaskUpdate(update models.TaskUpdate) (models.TaskUpdate, error) {
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return update, fmt.Errorf("%w: title is required", ErrValidation)
		}
		if len(title) > models.MaxTitleLength {
			return update, fmt.Errorf("%w: title exceeds %d characters", ErrValidation, models.MaxTitleLength)
		}
		update.Title = &title
	}
	if update.Description != nil && len(*update.Description) > models.MaxDescriptionLength {
		return update, fmt.Errorf("%w: description exceeds %d characters", ErrValidation, models.MaxDescriptionLength)
	}
	if update.Priority != nil && !update.Priority.Valid() {
		return update, fmt.Errorf("%w: unknown priority %q", ErrValidation, string(*update.Priority))
	}
	return update, nil
}

// UpdateTask applies the supplied fields, leaving the rest untouched, and
// refreshes updated_at.
func (s *Store) UpdateTask(ctx context.Context, id string, update models.TaskUpdate) (*models.Task, error) {
	update, err := ValidateTaskUpdate(update)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrTaskNotFound, id)
	}

	next := s.board.Clone()
	task := findTask(next, id)
	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Priority != nil {
		task.Priority = *update.Priority
	}
	if update.Assignee != nil {
		task.Assignee = *update.Assignee
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.commit(ctx, next, events.TaskUpdated, v1.TaskUpdatedPayload{Task: task.ToAPI()}); err != nil {
		return nil, err
	}
	s.logger.WithTaskID(id).Info("task updated")
	return task.Clone(), nil
}

// DeleteTask removes a task. The published event carries only the id.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; !ok {
		return fmt.Errorf("%w: %q", ErrTaskNotFound, id)
	}

	next := s.board.Clone()
	for i, t := range next.Tasks {
		if t.ID == id {
			next.Tasks = append(next.Tasks[:i], next.Tasks[i+1:]...)
			break
		}
	}

	if err := s.commit(ctx, next, events.TaskDeleted, v1.TaskDeletedPayload{TaskID: id}); err != nil {
		return err
	}
	s.logger.WithTaskID(id).Info("task deleted")
	return nil
}

// UpdateColumns replaces the whole column set. Names are trimmed and
// deduplicated (first occurrence wins); an empty resulting set is
// rejected. Tasks in removed columns are reassigned to the new first
// column with a refreshed updated_at, but that reassignment emits no
// task-level events: the whole operation publishes one columns_updated.
func (s *Store) UpdateColumns(ctx context.Context, newColumns []models.Column) ([]models.Column, error) {
	cleaned := make([]models.Column, 0, len(newColumns))
	seen := make(map[string]bool, len(newColumns))
	for _, col := range newColumns {
		col.Name = strings.TrimSpace(col.Name)
		if col.Name == "" {
			return nil, fmt.Errorf("%w: column name is required", ErrValidation)
		}
		if seen[col.Name] {
			continue
		}
		if col.SortBy == "" {
			col.SortBy = models.SortByCreated
		}
		if col.SortOrder == "" {
			col.SortOrder = models.SortAscending
		}
		if !col.SortBy.Valid() {
			return nil, fmt.Errorf("%w: unknown sort field %q", ErrValidation, string(col.SortBy))
		}
		if !col.SortOrder.Valid() {
			return nil, fmt.Errorf("%w: unknown sort order %q", ErrValidation, string(col.SortOrder))
		}
		seen[col.Name] = true
		cleaned = append(cleaned, col)
	}
	if len(cleaned) == 0 {
		return nil, ErrNoColumns
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.board.Clone()
	next.Columns = cleaned

	// Reassign tasks stranded in removed columns to the new first column.
	now := time.Now().UTC()
	reassigned := 0
	for _, task := range next.Tasks {
		if !seen[task.Column] {
			task.Column = cleaned[0].Name
			task.UpdatedAt = now
			reassigned++
		}
	}

	payload := v1.ColumnsUpdatedPayload{Columns: models.ColumnsToAPI(cleaned)}
	if err := s.commit(ctx, next, events.ColumnsUpdated, payload); err != nil {
		return nil, err
	}
	s.logger.Info("columns updated",
		zap.Int("columns", len(cleaned)),
		zap.Int("reassigned_tasks", reassigned))

	out := make([]models.Column, len(cleaned))
	copy(out, cleaned)
	return out, nil
}

// commit persists the candidate state, swaps it in, and publishes the
// operation's single event. The swap happens only after the file write
// succeeds, so a failed write leaves both memory and disk untouched, and
// observers never see an event for state that is not durable yet.
func (s *Store) commit(ctx context.Context, next *models.Board, subject string, payload any) error {
	if err := s.persist(next); err != nil {
		return err
	}
	s.board = next
	s.reindex()
	s.publish(ctx, subject, payload)
	return nil
}

// persist rewrites the whole backing file, pretty-printed, via an atomic
// rename so a crash mid-write can never leave a torn file.
func (s *Store) persist(board *models.Board) error {
	data, err := json.MarshalIndent(board, "", "  ")
	if err != nil {
		return fmt.Errorf("encode board: %w", err)
	}
	data = append(data, '\n')
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write board file: %w", err)
	}
	return nil
}

func (s *Store) publish(ctx context.Context, subject string, payload any) {
	if s.bus == nil {
		return
	}
	event := bus.NewEvent(subject, eventSource, payload)
	if err := s.bus.Publish(ctx, subject, event); err != nil {
		// The state change is already durable; a lost notification is
		// recovered by the next observer snapshot.
		s.logger.WithError(err).Warn("failed to publish event",
			zap.String("subject", subject))
	}
}

func findTask(board *models.Board, id string) *models.Task {
	for _, t := range board.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}
