package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

const helpText = `Available commands:
  (l)ist [status]   list issues, optionally only one status
  show <id>         show an issue
  report            file a new issue (with screenshots)
  edit <id>         change status, severity, assignee or notes
  delete <id>       delete an issue
  sync              refresh from the server now
  export <csv|md|html>
                    write a report to the export directory
  status            counters, last sync and connectivity
  exit | quit       leave the dashboard`

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Report(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Sync(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
	Status(ctx context.Context, args []string) error
}

// runREPL reads a line from reader, parses the first token as the command,
// and dispatches to a with the remaining tokens. Command errors are printed
// and the loop carries on. The loop exits on EOF, on "exit"/"quit", or when
// ctx is done.
//
// The same reader is shared with the commands' own prompts.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("qa %s> ", statusFn()))

		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn(helpText)
		case "l", "list":
			err = a.List(ctx, args)
		case "show":
			err = a.Show(ctx, args)
		case "report":
			err = a.Report(ctx, args)
		case "edit":
			err = a.Edit(ctx, args)
		case "delete", "rm":
			err = a.Delete(ctx, args)
		case "sync":
			err = a.Sync(ctx, args)
		case "export":
			err = a.Export(ctx, args)
		case "status":
			err = a.Status(ctx, args)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn(errorColor("Error: " + err.Error()))
		}
	}
}
