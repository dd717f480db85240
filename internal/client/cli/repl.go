package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/mediahub/internal/client/client"
	"github.com/dmitrijs2005/mediahub/internal/client/services"
	"github.com/dmitrijs2005/mediahub/internal/client/session"
	"github.com/dmitrijs2005/mediahub/internal/client/storage"
	"github.com/dmitrijs2005/mediahub/internal/client/validation"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	SignIn(ctx context.Context) error
	SignUp(ctx context.Context) error
	SignOut(ctx context.Context) error
	List(ctx context.Context, search string) error
	Page(ctx context.Context, n int) error
	Refresh(ctx context.Context) error
	Show(ctx context.Context, id string) error
	Upload(ctx context.Context, path, title string) error
	Update(ctx context.Context, id, path string) error
	Delete(ctx context.Context, id string) error
	Download(ctx context.Context, id, dest string) error
	Backup(ctx context.Context) error
	Stats(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the mediahub CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on 'a'. The loop exits on EOF, when ctx is done or
// when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Signed out:
//	  - help                      show available commands
//	  - signin                    authenticate
//	  - signup                    create an account
//	  - exit | quit               leave the program
//
//	Signed in:
//	  - list [query]              first page of media, filtered by file name
//	  - page <n>                  another page of the last listing
//	  - refresh                   refetch the list from the server
//	  - show <id>                 one item
//	  - upload <path> [title]     upload an image or video
//	  - update <id> <path>        replace the file of an item
//	  - delete <id>               delete an item
//	  - download <id> <dest>      save an item's file locally
//	  - backup                    mirror the library to object storage
//	  - stats                     query cache counters
//	  - signout                   end the session
//
// Errors returned by command handlers are printed by report and never end
// the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("mediahub %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: list [query], page <n>, refresh, show <id>, upload <path> [title], update <id> <path>, delete <id>, download <id> <dest>, backup, stats, signout, exit")
			} else {
				printlnFn("Available commands: signin, signup, exit")
			}

		case "signin", "login":
			report(a.SignIn(ctx))

		case "signup", "register":
			report(a.SignUp(ctx))

		case "signout", "logout":
			report(a.SignOut(ctx))

		case "l", "list":
			report(a.List(ctx, strings.Join(args, " ")))

		case "page":
			n, err := strconv.Atoi(first(args))
			if err != nil || n < 1 {
				printlnFn("Usage: page <n>")
				continue
			}
			report(a.Page(ctx, n))

		case "refresh":
			report(a.Refresh(ctx))

		case "show":
			if len(args) != 1 {
				printlnFn("Usage: show <id>")
				continue
			}
			report(a.Show(ctx, args[0]))

		case "upload":
			if len(args) == 0 {
				printlnFn("Usage: upload <path> [title]")
				continue
			}
			report(a.Upload(ctx, args[0], strings.Join(args[1:], " ")))

		case "update":
			if len(args) != 2 {
				printlnFn("Usage: update <id> <path>")
				continue
			}
			report(a.Update(ctx, args[0], args[1]))

		case "delete":
			if len(args) != 1 {
				printlnFn("Usage: delete <id>")
				continue
			}
			report(a.Delete(ctx, args[0]))

		case "download":
			if len(args) != 2 {
				printlnFn("Usage: download <id> <dest>")
				continue
			}
			report(a.Download(ctx, args[0], args[1]))

		case "backup":
			report(a.Backup(ctx))

		case "stats":
			report(a.Stats(ctx))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func first(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// report prints a failed command. Validation failures are listed one per
// line.
func report(err error) {
	if err == nil {
		return
	}

	var verrs validation.Errors
	var reqErr *services.RequestError

	switch {
	case errors.As(err, &verrs):
		printlnFn("Please fix the following:")
		for _, fe := range verrs {
			printlnFn("  -", fe.Message)
		}
	case errors.Is(err, session.ErrNotAuthenticated):
		printlnFn("Please sign in first")
	case errors.Is(err, client.ErrUnauthorized):
		printlnFn("Session expired, please sign in again")
	case errors.Is(err, client.ErrUnavailable):
		printlnFn("Server unavailable, try again later")
	case errors.Is(err, storage.ErrDisabled):
		printlnFn("Backup is not configured")
	case errors.As(err, &reqErr) && reqErr.Message != "":
		printlnFn("Error:", reqErr.Message)
	default:
		printlnFn("Error:", err)
	}
}
