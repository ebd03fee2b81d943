package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Feed(ctx context.Context) error
	More(ctx context.Context) error
	Post(ctx context.Context) error
	Comment(ctx context.Context, id string) error
	Remix(ctx context.Context, id string) error
	Like(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// runREPL starts a simple read–eval–print loop for the FeedSync CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - login          — authenticate
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - feed           — reload the feed from the top
//	  - more           — load the next feed page
//	  - post           — compose a post (with optional attachments)
//	  - comment <id>   — comment on an entity
//	  - remix <id>     — remix a post
//	  - like <id>      — like an entity
//	  - delete <id>    — delete one of your entities
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("feed> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		needID := func(usage string) (string, bool) {
			if len(args) == 0 {
				printlnFn("Usage: " + usage)
				return "", false
			}
			return args[0], true
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (f)eed, more, post, comment <id>, remix <id>, like <id>, delete <id>, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "f", "feed":
			_ = a.Feed(ctx)

		case "more":
			_ = a.More(ctx)

		case "post":
			_ = a.Post(ctx)

		case "comment":
			if id, ok := needID("comment <id>"); ok {
				_ = a.Comment(ctx, id)
			}

		case "remix":
			if id, ok := needID("remix <id>"); ok {
				_ = a.Remix(ctx, id)
			}

		case "like":
			if id, ok := needID("like <id>"); ok {
				_ = a.Like(ctx, id)
			}

		case "delete":
			if id, ok := needID("delete <id>"); ok {
				_ = a.Delete(ctx, id)
			}

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
