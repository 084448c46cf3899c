package cli

import (
	"context"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

func cmdMv(out, errOut io.Writer, args []string) int {
	flagSet := flag.NewFlagSet("mv", flag.ContinueOnError)
	flagSet.SetOutput(errOut)
	file := flagSet.String("file", "", "Board file path")
	flagSet.Usage = func() {
		fmt.Fprintln(errOut, "Usage: taskdeckctl mv <task> <column>")
		flagSet.PrintDefaults()
	}
	if err := flagSet.Parse(args); err != nil {
		return 1
	}
	if flagSet.NArg() != 2 {
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

	moved, err := st.MoveTask(ctx, task.ID, flagSet.Arg(1))
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	fmt.Fprintf(out, "moved %s  %s -> %s\n", shortID(moved.ID), task.Column, moved.Column)
	return 0
}
