// Package handlers exposes the board store over HTTP. The handlers are a
// thin façade: every operation is one store call, and events reach
// observers through the store's bus, never from here.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskdeck/taskdeck/internal/board/dto"
	"github.com/taskdeck/taskdeck/internal/board/models"
	"github.com/taskdeck/taskdeck/internal/board/store"
	"github.com/taskdeck/taskdeck/internal/common/logger"
	v1 "github.com/taskdeck/taskdeck/pkg/api/v1"
)

type BoardHandlers struct {
	store  *store.Store
	logger *logger.Logger
}

func NewBoardHandlers(st *store.Store, log *logger.Logger) *BoardHandlers {
	return &BoardHandlers{
		store:  st,
		logger: log.WithFields(zap.String("component", "board-handlers")),
	}
}

func RegisterBoardRoutes(router *gin.Engine, st *store.Store, log *logger.Logger) *BoardHandlers {
	handlers := NewBoardHandlers(st, log)
	handlers.registerHTTP(router)
	return handlers
}

func (h *BoardHandlers) registerHTTP(router *gin.Engine) {
	api := router.Group("/api/v1")
	api.GET("/board", h.httpGetBoard)
	api.GET("/tasks", h.httpListTasks)
	api.POST("/tasks", h.httpCreateTask)
	api.GET("/tasks/:id", h.httpGetTask)
	api.PATCH("/tasks/:id", h.httpUpdateTask)
	api.DELETE("/tasks/:id", h.httpDeleteTask)
	api.GET("/columns", h.httpGetColumns)
	api.PUT("/columns", h.httpUpdateColumns)
}

func (h *BoardHandlers) httpGetBoard(c *gin.Context) {
	board := h.store.GetBoard(c.Request.Context())
	c.JSON(http.StatusOK, board.ToAPI())
}

func (h *BoardHandlers) httpListTasks(c *gin.Context) {
	tasks := h.store.GetTasks(c.Request.Context(), c.Query("column"))
	taskDTOs := make([]v1.Task, 0, len(tasks))
	for _, task := range tasks {
		taskDTOs = append(taskDTOs, task.ToAPI())
	}
	c.JSON(http.StatusOK, dto.ListTasksResponse{
		Tasks: taskDTOs,
		Total: len(tasks),
	})
}

func (h *BoardHandlers) httpGetTask(c *gin.Context) {
	task, ok := h.store.GetTask(c.Request.Context(), c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("task not found: %q", c.Param("id"))})
		return
	}
	c.JSON(http.StatusOK, task.ToAPI())
}

func (h *BoardHandlers) httpCreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	priority, ok := models.ParsePriority(req.Priority)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown priority %q", req.Priority)})
		return
	}

	task, err := h.store.CreateTask(c.Request.Context(), store.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Column:      req.Column,
		Priority:    priority,
		Assignee:    req.Assignee,
	})
	if err != nil {
		handleStoreError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, task.ToAPI())
}

func (h *BoardHandlers) httpUpdateTask(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")

	// Every wire field is parsed and validated before the first store
	// call, so a combined move-and-update is all-or-nothing: a bad
	// priority or oversized title rejects the request without moving the
	// task.
	update := models.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Assignee:    req.Assignee,
	}
	if req.Priority != nil {
		priority, ok := models.ParsePriority(*req.Priority)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown priority %q", *req.Priority)})
			return
		}
		update.Priority = &priority
	}
	update, err := store.ValidateTaskUpdate(update)
	if err != nil {
		handleStoreError(c, h.logger, err)
		return
	}

	// The move is applied first; the field update then owns the final
	// updated_at.
	if req.Column != nil {
		if _, err := h.store.MoveTask(ctx, id, *req.Column); err != nil {
			handleStoreError(c, h.logger, err)
			return
		}
	}

	if update.Empty() {
		// Move-only request; return the task as it stands.
		task, ok := h.store.GetTask(ctx, id)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("task not found: %q", id)})
			return
		}
		c.JSON(http.StatusOK, task.ToAPI())
		return
	}

	task, err := h.store.UpdateTask(ctx, id, update)
	if err != nil {
		handleStoreError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, task.ToAPI())
}

func (h *BoardHandlers) httpDeleteTask(c *gin.Context) {
	if err := h.store.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		handleStoreError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BoardHandlers) httpGetColumns(c *gin.Context) {
	cols := h.store.GetColumns(c.Request.Context())
	c.JSON(http.StatusOK, dto.ColumnsResponse{Columns: models.ColumnsToAPI(cols)})
}

func (h *BoardHandlers) httpUpdateColumns(c *gin.Context) {
	var req dto.UpdateColumnsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	cols := make([]models.Column, 0, len(req.Columns))
	for _, col := range req.Columns {
		cols = append(cols, models.Column{
			Name:      col.Name,
			SortBy:    models.SortBy(col.SortBy),
			SortOrder: models.SortOrder(col.SortOrder),
		})
	}

	updated, err := h.store.UpdateColumns(c.Request.Context(), cols)
	if err != nil {
		handleStoreError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ColumnsResponse{Columns: models.ColumnsToAPI(updated)})
}
