package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/taskdeck/taskdeck/internal/board/models"
	"github.com/taskdeck/taskdeck/internal/board/store"
	"github.com/taskdeck/taskdeck/internal/common/logger"
	v1 "github.com/taskdeck/taskdeck/pkg/api/v1"
	"go.uber.org/zap"
)

const defaultListLimit = 10

func registerTools(s *server.MCPServer, st *store.Store, log *logger.Logger) {
	s.AddTool(
		mcp.NewTool("get_columns",
			mcp.WithDescription("List the board's columns in display order, with each column's sort policy."),
		),
		getColumnsHandler(st),
	)

	s.AddTool(
		mcp.NewTool("list_tasks",
			mcp.WithDescription("List tasks in a column, most urgent first (priority, then oldest). Defaults to the first column."),
			mcp.WithString("column",
				mcp.Description("Column to list tasks from (defaults to the board's first column)"),
			),
			mcp.WithString("priority",
				mcp.Description("Only return tasks with this priority: P0/critical, P1/normal, P2/low"),
			),
			mcp.WithString("assignee",
				mcp.Description("Only return tasks assigned to this name (case-insensitive)"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of tasks to return (default 10)"),
			),
		),
		listTasksHandler(st),
	)

	s.AddTool(
		mcp.NewTool("create_task",
			mcp.WithDescription("Create a new task on the board"),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("The task title"),
			),
			mcp.WithString("description",
				mcp.Description("The task description (optional)"),
			),
			mcp.WithString("column",
				mcp.Description("Column to place the task in (defaults to the board's first column)"),
			),
			mcp.WithString("priority",
				mcp.Description("Task priority: P0/critical, P1/normal, P2/low (default P1)"),
			),
			mcp.WithString("assignee",
				mcp.Description("Who the task is assigned to (optional)"),
			),
		),
		createTaskHandler(st, log),
	)

	s.AddTool(
		mcp.NewTool("move_task",
			mcp.WithDescription("Move a task to another column"),
			mcp.WithString("task_id",
				mcp.Required(),
				mcp.Description("The task ID to move"),
			),
			mcp.WithString("column",
				mcp.Required(),
				mcp.Description("The target column name"),
			),
		),
		moveTaskHandler(st, log),
	)

	s.AddTool(
		mcp.NewTool("update_task",
			mcp.WithDescription("Update fields of an existing task"),
			mcp.WithString("task_id",
				mcp.Required(),
				mcp.Description("The task ID to update"),
			),
			mcp.WithString("title",
				mcp.Description("New title (optional)"),
			),
			mcp.WithString("description",
				mcp.Description("New description (optional)"),
			),
			mcp.WithString("priority",
				mcp.Description("New priority: P0/critical, P1/normal, P2/low (optional)"),
			),
			mcp.WithString("assignee",
				mcp.Description("New assignee (optional)"),
			),
		),
		updateTaskHandler(st, log),
	)

	s.AddTool(
		mcp.NewTool("delete_task",
			mcp.WithDescription("Delete a task from the board"),
			mcp.WithString("task_id",
				mcp.Required(),
				mcp.Description("The task ID to delete"),
			),
		),
		deleteTaskHandler(st, log),
	)

	log.Info("registered MCP tools", zap.Int("count", 6))
}

func getColumnsHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cols := st.GetColumns(ctx)
		return jsonResult(models.ColumnsToAPI(cols))
	}
}

func listTasksHandler(st *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		column := req.GetString("column", "")
		if column == "" {
			cols := st.GetColumns(ctx)
			if len(cols) == 0 {
				return mcp.NewToolResultError("board has no columns"), nil
			}
			column = cols[0].Name
		} else if !hasColumn(st.GetColumns(ctx), column) {
			return mcp.NewToolResultError(fmt.Sprintf("column not found: %q", column)), nil
		}

		var priorityFilter models.Priority
		if p := req.GetString("priority", ""); p != "" {
			parsed, ok := models.ParsePriority(p)
			if !ok {
				return mcp.NewToolResultError(fmt.Sprintf("unknown priority %q", p)), nil
			}
			priorityFilter = parsed
		}
		assigneeFilter := strings.ToLower(strings.TrimSpace(req.GetString("assignee", "")))

		limit := req.GetInt("limit", defaultListLimit)
		if limit <= 0 {
			limit = defaultListLimit
		}

		tasks := st.GetTasks(ctx, column)
		filtered := make([]*models.Task, 0, len(tasks))
		for _, t := range tasks {
			if priorityFilter != "" && t.Priority != priorityFilter {
				continue
			}
			if assigneeFilter != "" && strings.ToLower(t.Assignee) != assigneeFilter {
				continue
			}
			filtered = append(filtered, t)
		}

		// Most urgent first: priority rank, then oldest created.
		sort.SliceStable(filtered, func(i, j int) bool {
			if filtered[i].Priority.Rank() != filtered[j].Priority.Rank() {
				return filtered[i].Priority.Rank() < filtered[j].Priority.Rank()
			}
			return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
		})

		if len(filtered) > limit {
			filtered = filtered[:limit]
		}

		out := make([]v1.Task, 0, len(filtered))
		for _, t := range filtered {
			out = append(out, t.ToAPI())
		}
		return jsonResult(map[string]any{
			"column": column,
			"tasks":  out,
			"total":  len(out),
		})
	}
}

func createTaskHandler(st *store.Store, log *logger.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, err := req.RequireString("title")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		priority, ok := models.ParsePriority(req.GetString("priority", ""))
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown priority %q", req.GetString("priority", ""))), nil
		}

		task, err := st.CreateTask(ctx, store.CreateTaskParams{
			Title:       title,
			Description: req.GetString("description", ""),
			Column:      req.GetString("column", ""),
			Priority:    priority,
			Assignee:    req.GetString("assignee", ""),
		})
		if err != nil {
			log.Error("create_task failed", zap.Error(err))
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(task.ToAPI())
	}
}

func moveTaskHandler(st *store.Store, log *logger.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		taskID, err := req.RequireString("task_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		column, err := req.RequireString("column")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		task, err := st.MoveTask(ctx, taskID, column)
		if err != nil {
			log.Error("move_task failed", zap.Error(err))
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(task.ToAPI())
	}
}

func updateTaskHandler(st *store.Store, log *logger.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		taskID, err := req.RequireString("task_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		args := req.GetArguments()
		var update models.TaskUpdate
		if v, ok := args["title"].(string); ok {
			update.Title = &v
		}
		if v, ok := args["description"].(string); ok {
			update.Description = &v
		}
		if v, ok := args["priority"].(string); ok {
			priority, ok := models.ParsePriority(v)
			if !ok {
				return mcp.NewToolResultError(fmt.Sprintf("unknown priority %q", v)), nil
			}
			update.Priority = &priority
		}
		if v, ok := args["assignee"].(string); ok {
			update.Assignee = &v
		}
		if update.Empty() {
			return mcp.NewToolResultError("no fields to update"), nil
		}

		task, err := st.UpdateTask(ctx, taskID, update)
		if err != nil {
			log.Error("update_task failed", zap.Error(err))
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(task.ToAPI())
	}
}

func deleteTaskHandler(st *store.Store, log *logger.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		taskID, err := req.RequireString("task_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if err := st.DeleteTask(ctx, taskID); err != nil {
			log.Error("delete_task failed", zap.Error(err))
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]any{
			"deleted": true,
			"taskId":  taskID,
		})
	}
}

func hasColumn(cols []models.Column, name string) bool {
	for _, c := range cols {
		if c.Name == name {
			return true
		}
	}
	return false
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	formatted, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(formatted)), nil
}
