package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Test seams for REPL output.
var (
	printFn   = fmt.Print
	printlnFn = fmt.Println
)

// execIface is the command surface the REPL dispatches to. *App satisfies it.
type execIface interface {
	isUnlocked() bool
	Add(ctx context.Context) error
	List(ctx context.Context, includeArchived bool) error
	Search(ctx context.Context, query string) error
	View(ctx context.Context, id int64) error
	Reveal(ctx context.Context, id int64) error
	Copy(ctx context.Context, id int64) error
	Edit(ctx context.Context, id int64) error
	ChangePassword(ctx context.Context, id int64) error
	SetArchived(ctx context.Context, id int64, archived bool) error
	SetFavorite(ctx context.Context, id int64, favorite bool) error
	Delete(ctx context.Context, id int64) error
	Export(ctx context.Context, dest string) error
	Status(ctx context.Context) error
}

const helpText = `Commands:
  add                 add an entry
  list [-a]           list entries (-a includes archived)
  search <query>      search title, url, username and tags
  view <id>           show an entry without its password
  reveal <id>         show the password of an entry
  copy <id>           copy the password of an entry to the clipboard
  edit <id>           edit the plaintext fields of an entry
  passwd <id>         change the password of an entry
  archive <id>        hide an entry from list and search
  unarchive <id>      restore an archived entry
  fav <id>            mark an entry as favorite
  unfav <id>          clear the favorite mark
  delete <id>         delete an entry permanently
  export [dest]       write an encrypted snapshot (path or s3://bucket/key)
  status              show vault information
  exit | quit         leave`

// idCommands take exactly one entry id.
var idCommands = map[string]func(ctx context.Context, a execIface, id int64) error{
	"view":      func(ctx context.Context, a execIface, id int64) error { return a.View(ctx, id) },
	"reveal":    func(ctx context.Context, a execIface, id int64) error { return a.Reveal(ctx, id) },
	"copy":      func(ctx context.Context, a execIface, id int64) error { return a.Copy(ctx, id) },
	"edit":      func(ctx context.Context, a execIface, id int64) error { return a.Edit(ctx, id) },
	"passwd":    func(ctx context.Context, a execIface, id int64) error { return a.ChangePassword(ctx, id) },
	"archive":   func(ctx context.Context, a execIface, id int64) error { return a.SetArchived(ctx, id, true) },
	"unarchive": func(ctx context.Context, a execIface, id int64) error { return a.SetArchived(ctx, id, false) },
	"fav":       func(ctx context.Context, a execIface, id int64) error { return a.SetFavorite(ctx, id, true) },
	"unfav":     func(ctx context.Context, a execIface, id int64) error { return a.SetFavorite(ctx, id, false) },
	"delete":    func(ctx context.Context, a execIface, id int64) error { return a.Delete(ctx, id) },
}

// runREPL reads commands from reader until EOF, "exit" or "quit", or until
// ctx is cancelled. Handler errors are reported by the handlers themselves,
// so the loop only deals with I/O and argument parsing.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printFn("pwvault> ")
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			printlnFn()
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if !a.isUnlocked() && cmd != "help" && cmd != "exit" && cmd != "quit" {
			printlnFn("Vault is locked.")
			continue
		}

		switch cmd {
		case "help":
			printlnFn(helpText)

		case "add":
			_ = a.Add(ctx)

		case "l", "list":
			_ = a.List(ctx, len(args) > 0 && args[0] == "-a")

		case "search":
			if len(args) == 0 {
				printlnFn("Usage: search <query>")
				continue
			}
			_ = a.Search(ctx, strings.Join(args, " "))

		case "export":
			_ = a.Export(ctx, strings.Join(args, " "))

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			handler, ok := idCommands[cmd]
			if !ok {
				printlnFn("Unknown command:", cmd)
				continue
			}
			if len(args) != 1 {
				printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
				continue
			}
			id, err := parseID(args[0])
			if err != nil {
				printlnFn(err.Error())
				continue
			}
			_ = handler(ctx, a, id)
		}
	}
}
