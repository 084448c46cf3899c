package cli

import (
	"context"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/taskdeck/taskdeck/internal/board/models"
	"github.com/taskdeck/taskdeck/internal/board/store"
)

// cmdPut creates a task, or updates the existing task that has the same
// title. One title, one task: put is idempotent from the caller's side.
func cmdPut(out, errOut io.Writer, args []string) int {
	flagSet := flag.NewFlagSet("put", flag.ContinueOnError)
	flagSet.SetOutput(errOut)
	file := flagSet.String("file", "", "Board file path")
	description := flagSet.StringP("description", "d", "", "Task description")
	column := flagSet.StringP("column", "c", "", "Column to place the task in")
	priority := flagSet.StringP("priority", "p", "", "Priority: P0/critical, P1/normal, P2/low")
	assignee := flagSet.StringP("assignee", "a", "", "Assignee")
	flagSet.Usage = func() {
		fmt.Fprintln(errOut, "Usage: taskdeckctl put <title> [options]")
		flagSet.PrintDefaults()
	}
	if err := flagSet.Parse(args); err != nil {
		return 1
	}
	if flagSet.NArg() != 1 {
		flagSet.Usage()
		return 1
	}
	title := flagSet.Arg(0)

	st, err := openStore(boardFile(*file))
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	ctx := context.Background()

	var existing []*models.Task
	for _, t := range st.GetTasks(ctx, "") {
		if t.Title == title {
			existing = append(existing, t)
		}
	}
	if len(existing) > 1 {
		fmt.Fprintf(errOut, "error: title %q matches %d tasks, cannot put\n", title, len(existing))
		return 1
	}

	prio, ok := models.ParsePriority(*priority)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown priority %q\n", *priority)
		return 1
	}

	if len(existing) == 0 {
		task, err := st.CreateTask(ctx, store.CreateTaskParams{
			Title:       title,
			Description: *description,
			Column:      *column,
			Priority:    prio,
			Assignee:    *assignee,
		})
		if err != nil {
			fmt.Fprintln(errOut, "error:", err)
			return 1
		}
		fmt.Fprintf(out, "created %s  %s\n", task.ID, task.Title)
		return 0
	}

	task := existing[0]
	if *column != "" && *column != task.Column {
		if _, err := st.MoveTask(ctx, task.ID, *column); err != nil {
			fmt.Fprintln(errOut, "error:", err)
			return 1
		}
	}

	update := models.TaskUpdate{}
	if flagSet.Changed("description") {
		update.Description = description
	}
	if flagSet.Changed("priority") {
		update.Priority = &prio
	}
	if flagSet.Changed("assignee") {
		update.Assignee = assignee
	}
	if !update.Empty() {
		if _, err := st.UpdateTask(ctx, task.ID, update); err != nil {
			fmt.Fprintln(errOut, "error:", err)
			return 1
		}
	}
	fmt.Fprintf(out, "updated %s  %s\n", task.ID, task.Title)
	return 0
}
