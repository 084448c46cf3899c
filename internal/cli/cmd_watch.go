package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/taskdeck/taskdeck/internal/common/logger"
	v1 "github.com/taskdeck/taskdeck/pkg/api/v1"
	"github.com/taskdeck/taskdeck/pkg/boardsync"
	ws "github.com/taskdeck/taskdeck/pkg/websocket"
)

// cmdWatch follows a server's push channel and prints every event. It
// reconnects with backoff when the server goes away, resyncing from the
// snapshot the server sends on connect.
func cmdWatch(out, errOut io.Writer, args []string) int {
	flagSet := flag.NewFlagSet("watch", flag.ContinueOnError)
	flagSet.SetOutput(errOut)
	url := flagSet.String("url", "ws://127.0.0.1:8080/ws", "Server push channel URL")
	apiURL := flagSet.String("api", "http://127.0.0.1:8080", "Server REST API root, used to refetch state after a reconnect")
	flagSet.Usage = func() {
		fmt.Fprintln(errOut, "Usage: taskdeckctl watch [--url ws://host:port/ws] [--api http://host:port]")
		flagSet.PrintDefaults()
	}
	if err := flagSet.Parse(args); err != nil {
		return 1
	}

	log, err := logger.NewLogger(logger.LoggingConfig{Level: "warn", Format: "console"})
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	syncer := boardsync.NewSyncer(&boardsync.WSDialer{URL: *url}, log)
	syncer.Refetch = boardsync.HTTPRefetch(*apiURL)
	syncer.OnEvent = func(msg *ws.Message) {
		printEvent(out, msg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		cancel()
	}()

	fmt.Fprintf(out, "watching %s\n", *url)
	if err := syncer.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	return 0
}

func printEvent(out io.Writer, msg *ws.Message) {
	switch msg.Action {
	case ws.ActionBoardSync:
		var p v1.BoardSyncPayload
		if msg.ParsePayload(&p) == nil {
			fmt.Fprintf(out, "%s  board_sync  %d columns, %d tasks\n",
				msg.Timestamp.Format("15:04:05"), len(p.Board.Columns), len(p.Board.Tasks))
		}
	case ws.ActionTaskCreated, ws.ActionTaskUpdated:
		var p v1.TaskCreatedPayload
		if msg.ParsePayload(&p) == nil {
			fmt.Fprintf(out, "%s  %s  %s  %s\n",
				msg.Timestamp.Format("15:04:05"), msg.Action, shortID(p.Task.ID), p.Task.Title)
		}
	case ws.ActionTaskMoved:
		var p v1.TaskMovedPayload
		if msg.ParsePayload(&p) == nil {
			fmt.Fprintf(out, "%s  task_moved  %s  %s -> %s\n",
				msg.Timestamp.Format("15:04:05"), shortID(p.Task.ID), p.FromColumn, p.Task.Column)
		}
	case ws.ActionTaskDeleted:
		var p v1.TaskDeletedPayload
		if msg.ParsePayload(&p) == nil {
			fmt.Fprintf(out, "%s  task_deleted  %s\n",
				msg.Timestamp.Format("15:04:05"), shortID(p.TaskID))
		}
	case ws.ActionColumnsUpdated:
		var p v1.ColumnsUpdatedPayload
		if msg.ParsePayload(&p) == nil {
			names := make([]string, 0, len(p.Columns))
			for _, c := range p.Columns {
				names = append(names, c.Name)
			}
			fmt.Fprintf(out, "%s  columns_updated  %v\n",
				msg.Timestamp.Format("15:04:05"), names)
		}
	}
}
