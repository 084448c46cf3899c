package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	"github.com/taskdeck/taskdeck/internal/board/models"
)

// cmdColumns prints the column set, or replaces it when column specs are
// given. A spec is name[:sortBy[:sortOrder]], e.g. "Done:updated:desc".
func cmdColumns(out, errOut io.Writer, args []string) int {
	flagSet := flag.NewFlagSet("columns", flag.ContinueOnError)
	flagSet.SetOutput(errOut)
	file := flagSet.String("file", "", "Board file path")
	flagSet.Usage = func() {
		fmt.Fprintln(errOut, "Usage: taskdeckctl columns [name[:sortBy[:sortOrder]] ...]")
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

	if flagSet.NArg() == 0 {
		printColumns(out, st.GetColumns(ctx))
		return 0
	}

	cols := make([]models.Column, 0, flagSet.NArg())
	for _, spec := range flagSet.Args() {
		col, err := parseColumnSpec(spec)
		if err != nil {
			fmt.Fprintln(errOut, "error:", err)
			return 1
		}
		cols = append(cols, col)
	}

	updated, err := st.UpdateColumns(ctx, cols)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	printColumns(out, updated)
	return 0
}

func parseColumnSpec(spec string) (models.Column, error) {
	parts := strings.SplitN(spec, ":", 3)
	col := models.Column{Name: parts[0]}
	if len(parts) > 1 {
		col.SortBy = models.SortBy(parts[1])
	}
	if len(parts) > 2 {
		col.SortOrder = models.SortOrder(parts[2])
	}
	if col.SortBy != "" && !col.SortBy.Valid() {
		return models.Column{}, fmt.Errorf("unknown sort field %q in %q", parts[1], spec)
	}
	if col.SortOrder != "" && !col.SortOrder.Valid() {
		return models.Column{}, fmt.Errorf("unknown sort order %q in %q", parts[2], spec)
	}
	return col, nil
}

func printColumns(out io.Writer, cols []models.Column) {
	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSORT BY\tORDER")
	for _, c := range cols {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, c.SortBy, c.SortOrder)
	}
	w.Flush()
}
