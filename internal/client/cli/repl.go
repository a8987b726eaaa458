package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. App implements
// it; tests use a stub.
type execIface interface {
	List(ctx context.Context, args []string) error
	New(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Set(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Import(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
	Info(ctx context.Context, args []string) error
	Save(ctx context.Context, args []string) error
	Reload(ctx context.Context, args []string) error
}

const helpText = `Available commands:
  list [n]                  list entries, newest first
  new [title]               create an entry
  show <id>                 print an entry
  set <id> <field> <value>  change a field
  edit <id>                 replace the body of an entry
  delete <id>               delete an entry
  search <term>             search titles and bodies
  import <file>             import a JSON export
  export [format] [dir]     export as json, csv or md
  info                      store statistics
  save                      write pending edits now
  reload                    reread entries from disk
  exit | quit               leave`

// runREPL reads commands line by line from r and dispatches them to a. It
// returns on EOF, "exit" or "quit", or when ctx is done. Handler errors are
// printed and the loop continues.
func runREPL(ctx context.Context, a execIface, r *bufio.Reader, w io.Writer, prompt func() string) {
	for ctx.Err() == nil {
		fmt.Fprint(w, prompt())
		line, err := ReadLine(r)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		var handler func(context.Context, []string) error
		switch cmd {
		case "help", "h", "?":
			fmt.Fprintln(w, helpText)
			continue
		case "exit", "quit", "q":
			fmt.Fprintln(w, "Bye!")
			return
		case "l", "list", "ls":
			handler = a.List
		case "new", "add":
			handler = a.New
		case "show", "get":
			handler = a.Show
		case "set":
			handler = a.Set
		case "edit":
			handler = a.Edit
		case "delete", "rm":
			handler = a.Delete
		case "search", "find":
			handler = a.Search
		case "import":
			handler = a.Import
		case "export":
			handler = a.Export
		case "info", "stats":
			handler = a.Info
		case "save", "flush":
			handler = a.Save
		case "reload":
			handler = a.Reload
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
			continue
		}

		if err := handler(ctx, args); err != nil {
			fmt.Fprintln(w, "error:", err)
		}
	}
}
