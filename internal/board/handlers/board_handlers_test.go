package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/board/dto"
	"github.com/taskdeck/taskdeck/internal/board/models"
	"github.com/taskdeck/taskdeck/internal/board/store"
	"github.com/taskdeck/taskdeck/internal/common/logger"
	"github.com/taskdeck/taskdeck/internal/events/bus"
	v1 "github.com/taskdeck/taskdeck/pkg/api/v1"
)

func newTestRouter(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.NewLogger(logger.LoggingConfig{Level: "error", Format: "console"})
	require.NoError(t, err)

	st, err := store.New(filepath.Join(t.TempDir(), "board.json"), bus.NewMemoryEventBus(log), log)
	require.NoError(t, err)

	router := gin.New()
	RegisterBoardRoutes(router, st, log)
	return router, st
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetBoard(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/board", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var board v1.Board
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	assert.Len(t, board.Columns, 3)
	assert.Empty(t, board.Tasks)
}

func TestCreateTaskEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/tasks", dto.CreateTaskRequest{
		Title:    "ship it",
		Priority: "critical",
		Assignee: "alice",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var task v1.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "ship it", task.Title)
	assert.Equal(t, "P0", task.Priority)
	assert.Equal(t, "Todo", task.Column)
}

func TestCreateTaskEndpointRejections(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/tasks", dto.CreateTaskRequest{Title: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/tasks", dto.CreateTaskRequest{Title: "x", Priority: "urgent"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/tasks", dto.CreateTaskRequest{Title: "x", Column: "Nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListTasksEndpoint(t *testing.T) {
	router, st := newTestRouter(t)
	ctx := t.Context()

	_, err := st.CreateTask(ctx, store.CreateTaskParams{Title: "a"})
	require.NoError(t, err)
	_, err = st.CreateTask(ctx, store.CreateTaskParams{Title: "b", Column: "Done"})
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodGet, "/api/v1/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.ListTasksResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)

	w = doJSON(t, router, http.MethodGet, "/api/v1/tasks?column=Done", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "b", resp.Tasks[0].Title)
}

func TestPatchTaskMoveAndUpdate(t *testing.T) {
	router, st := newTestRouter(t)

	task, err := st.CreateTask(t.Context(), store.CreateTaskParams{Title: "patch me"})
	require.NoError(t, err)

	newTitle := "patched"
	newColumn := "In Progress"
	w := doJSON(t, router, http.MethodPatch, "/api/v1/tasks/"+task.ID, dto.UpdateTaskRequest{
		Title:  &newTitle,
		Column: &newColumn,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var got v1.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "patched", got.Title)
	assert.Equal(t, "In Progress", got.Column)
}

func TestPatchTaskMoveOnly(t *testing.T) {
	router, st := newTestRouter(t)

	task, err := st.CreateTask(t.Context(), store.CreateTaskParams{Title: "mover"})
	require.NoError(t, err)

	newColumn := "Done"
	w := doJSON(t, router, http.MethodPatch, "/api/v1/tasks/"+task.ID, dto.UpdateTaskRequest{
		Column: &newColumn,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var got v1.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Done", got.Column)
	assert.Equal(t, "mover", got.Title)
}

func TestPatchTaskRejectedCombinedRequestChangesNothing(t *testing.T) {
	router, st := newTestRouter(t)

	task, err := st.CreateTask(t.Context(), store.CreateTaskParams{Title: "atomic"})
	require.NoError(t, err)

	// A valid move combined with an invalid priority must not move the task.
	newColumn := "Done"
	badPriority := "urgent"
	w := doJSON(t, router, http.MethodPatch, "/api/v1/tasks/"+task.ID, dto.UpdateTaskRequest{
		Column:   &newColumn,
		Priority: &badPriority,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	got, ok := st.GetTask(t.Context(), task.ID)
	require.True(t, ok)
	assert.Equal(t, "Todo", got.Column, "rejected request leaves the column unchanged")

	// Same for a field the store itself would reject.
	longTitle := strings.Repeat("x", models.MaxTitleLength+1)
	w = doJSON(t, router, http.MethodPatch, "/api/v1/tasks/"+task.ID, dto.UpdateTaskRequest{
		Column: &newColumn,
		Title:  &longTitle,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	got, ok = st.GetTask(t.Context(), task.ID)
	require.True(t, ok)
	assert.Equal(t, "Todo", got.Column)
	assert.Equal(t, "atomic", got.Title)
}

func TestPatchTaskErrors(t *testing.T) {
	router, st := newTestRouter(t)

	title := "x"
	w := doJSON(t, router, http.MethodPatch, "/api/v1/tasks/missing", dto.UpdateTaskRequest{Title: &title})
	assert.Equal(t, http.StatusNotFound, w.Code)

	task, err := st.CreateTask(t.Context(), store.CreateTaskParams{Title: "y"})
	require.NoError(t, err)

	w = doJSON(t, router, http.MethodPatch, "/api/v1/tasks/"+task.ID, dto.UpdateTaskRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	bad := "urgent"
	w = doJSON(t, router, http.MethodPatch, "/api/v1/tasks/"+task.ID, dto.UpdateTaskRequest{Priority: &bad})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteTaskEndpoint(t *testing.T) {
	router, st := newTestRouter(t)

	task, err := st.CreateTask(t.Context(), store.CreateTaskParams{Title: "bye"})
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodDelete, "/api/v1/tasks/"+task.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/tasks/"+task.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetTaskEndpoint(t *testing.T) {
	router, st := newTestRouter(t)

	task, err := st.CreateTask(t.Context(), store.CreateTaskParams{Title: "lookup"})
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodGet, "/api/v1/tasks/"+task.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/tasks/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateColumnsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPut, "/api/v1/columns", dto.UpdateColumnsRequest{
		Columns: []v1.Column{
			{Name: "Now"},
			{Name: "Now"},
			{Name: "Later", SortBy: "updated", SortOrder: "desc"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.ColumnsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Columns, 2)
	assert.Equal(t, "Now", resp.Columns[0].Name)
	assert.Equal(t, "created", resp.Columns[0].SortBy)

	// Emptying the board is rejected.
	w = doJSON(t, router, http.MethodPut, "/api/v1/columns", dto.UpdateColumnsRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
