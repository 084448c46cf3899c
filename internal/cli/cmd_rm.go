package cli

import (
	"context"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

func cmdRm(out, errOut io.Writer, args []string) int {
	flagSet := flag.NewFlagSet("rm", flag.ContinueOnError)
	flagSet.SetOutput(errOut)
	file := flagSet.String("file", "", "Board file path")
	flagSet.Usage = func() {
		fmt.Fprintln(errOut, "Usage: taskdeckctl rm <task>")
		flagSet.PrintDefaults()
	}
	if err := flagSet.Parse(args); err != nil {
		return 1
	}
	if flagSet.NArg() != 1 {
		flagSet.Usage()
		return 1
	}

	st, err := openStore(boardFile(*file))
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	ctx := context.Background()
	task, err := resolveTask(ctx, st, flagSet.Arg(0))
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	if err := st.DeleteTask(ctx, task.ID); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	fmt.Fprintf(out, "deleted %s  %s\n", shortID(task.ID), task.Title)
	return 0
}
