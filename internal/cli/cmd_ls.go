package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	"github.com/taskdeck/taskdeck/internal/board/models"
)

func cmdLs(out, errOut io.Writer, args []string) int {
	flagSet := flag.NewFlagSet("ls", flag.ContinueOnError)
	flagSet.SetOutput(errOut)
	file := flagSet.String("file", "", "Board file path")
	column := flagSet.StringP("column", "c", "", "Only tasks in this column")
	priority := flagSet.StringP("priority", "p", "", "Only tasks with this priority")
	assignee := flagSet.StringP("assignee", "a", "", "Only tasks assigned to this name")
	asJSON := flagSet.Bool("json", false, "Emit JSON instead of a table")
	flagSet.Usage = func() {
		fmt.Fprintln(errOut, "Usage: taskdeckctl ls [options]")
		flagSet.PrintDefaults()
	}
	if err := flagSet.Parse(args); err != nil {
		return 1
	}

	st, err := openStore(boardFile(*file))
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	ctx := context.Background()

	var priorityFilter models.Priority
	if *priority != "" {
		parsed, ok := models.ParsePriority(*priority)
		if !ok {
			fmt.Fprintf(errOut, "error: unknown priority %q\n", *priority)
			return 1
		}
		priorityFilter = parsed
	}
	assigneeFilter := strings.ToLower(strings.TrimSpace(*assignee))

	tasks := st.GetTasks(ctx, *column)
	filtered := tasks[:0]
	for _, t := range tasks {
		if priorityFilter != "" && t.Priority != priorityFilter {
			continue
		}
		if assigneeFilter != "" && strings.ToLower(t.Assignee) != assigneeFilter {
			continue
		}
		filtered = append(filtered, t)
	}

	// Column order first, then priority, then oldest.
	colRank := make(map[string]int)
	for i, c := range st.GetColumns(ctx) {
		colRank[c.Name] = i
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		if colRank[filtered[i].Column] != colRank[filtered[j].Column] {
			return colRank[filtered[i].Column] < colRank[filtered[j].Column]
		}
		if filtered[i].Priority.Rank() != filtered[j].Priority.Rank() {
			return filtered[i].Priority.Rank() < filtered[j].Priority.Rank()
		}
		return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
	})

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(filtered); err != nil {
			fmt.Fprintln(errOut, "error:", err)
			return 1
		}
		return 0
	}

	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRI\tCOLUMN\tASSIGNEE\tTITLE")
	for _, t := range filtered {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			shortID(t.ID), t.Priority, t.Column, t.Assignee, t.Title)
	}
	w.Flush()
	return 0
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
