// Package cli implements the taskdeckctl command line. Commands operate on
// the board file directly through the store, so they work without a
// running server; watch is the exception and connects to a server's push
// channel.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/taskdeck/taskdeck/internal/board/store"
	"github.com/taskdeck/taskdeck/internal/common/config"
	"github.com/taskdeck/taskdeck/internal/common/logger"
	"github.com/taskdeck/taskdeck/internal/events/bus"
)

// Run dispatches a subcommand and returns the process exit code.
func Run(args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(out)
		return 1
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "put":
		return cmdPut(out, errOut, rest)
	case "ls":
		return cmdLs(out, errOut, rest)
	case "mv":
		return cmdMv(out, errOut, rest)
	case "rm":
		return cmdRm(out, errOut, rest)
	case "columns":
		return cmdColumns(out, errOut, rest)
	case "watch":
		return cmdWatch(out, errOut, rest)
	case "help", "--help", "-h":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "error: unknown command %q\n\n", cmd)
		printUsage(errOut)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: taskdeckctl <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  put <title>       Create a task, or update the task with that title")
	fmt.Fprintln(w, "  ls                List tasks")
	fmt.Fprintln(w, "  mv <task> <col>   Move a task to another column")
	fmt.Fprintln(w, "  rm <task>         Delete a task")
	fmt.Fprintln(w, "  columns           Show or replace the column set")
	fmt.Fprintln(w, "  watch             Follow live board events from a server")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The board file defaults to ~/.taskdeck/board.json; override with")
	fmt.Fprintln(w, "TASKDECK_BOARD_FILE or the per-command --file flag.")
}

// boardFile resolves the board file path: flag value, then environment,
// then the default location.
func boardFile(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("TASKDECK_BOARD_FILE"); env != "" {
		return env
	}
	return config.DefaultBoardFile()
}

// openStore opens the board file with a quiet logger and a private memory
// bus. Events are still published per mutation; there is just nobody
// subscribed in a one-shot CLI process.
func openStore(path string) (*store.Store, error) {
	log, err := logger.NewLogger(logger.LoggingConfig{Level: "error", Format: "console"})
	if err != nil {
		return nil, err
	}
	return store.New(path, bus.NewMemoryEventBus(log), log)
}
