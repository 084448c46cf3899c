package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/taskdeck/taskdeck/internal/board/models"
	"github.com/taskdeck/taskdeck/internal/board/store"
)

// resolveTask finds a task by exact id, unique id prefix, or unique exact
// title. Ambiguity is an error rather than a guess.
func resolveTask(ctx context.Context, st *store.Store, ref string) (*models.Task, error) {
	if task, ok := st.GetTask(ctx, ref); ok {
		return task, nil
	}

	tasks := st.GetTasks(ctx, "")

	var byPrefix []*models.Task
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, ref) {
			byPrefix = append(byPrefix, t)
		}
	}
	if len(byPrefix) == 1 {
		return byPrefix[0], nil
	}
	if len(byPrefix) > 1 {
		return nil, fmt.Errorf("id prefix %q matches %d tasks", ref, len(byPrefix))
	}

	var byTitle []*models.Task
	for _, t := range tasks {
		if t.Title == ref {
			byTitle = append(byTitle, t)
		}
	}
	if len(byTitle) == 1 {
		return byTitle[0], nil
	}
	if len(byTitle) > 1 {
		return nil, fmt.Errorf("title %q matches %d tasks, use the id", ref, len(byTitle))
	}

	return nil, fmt.Errorf("no task matches %q", ref)
}
