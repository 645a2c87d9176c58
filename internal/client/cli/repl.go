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
	isConnected() bool
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Whoami(ctx context.Context) error
	Upload(ctx context.Context, args []string) error
	Uploads(ctx context.Context) error
	Status(ctx context.Context, args []string) error
	Verify(ctx context.Context, args []string) error
	Market(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Buy(ctx context.Context, args []string) error
	Payment(ctx context.Context, args []string) error
	Cancel(ctx context.Context, args []string) error
	Streams(ctx context.Context) error
	History(ctx context.Context) error
	Dashboard(ctx context.Context) error
	Analytics(ctx context.Context) error
}

const (
	helpDisconnected = "Available commands: connect, whoami, market [category], show <id>, payment <id>, exit"
	helpConnected    = "Available commands: whoami, upload <path>, uploads, status <cid>, verify <cid>, market [category], show <id>, " +
		"buy <id>, payment <id>, cancel <id>, streams, history, dashboard, analytics, disconnect, exit"
)

// runREPL starts a simple read–eval–print loop for the datamarket CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command and the rest as its arguments, and dispatches to methods on 'a'.
// Unknown commands are reported back to the user. The loop exits on scanner
// EOF or when the user types "exit" or "quit".
//
// Command handlers print their own errors; the loop ignores them so that a
// failed command never ends the session.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("dm %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isConnected() {
				printlnFn(helpConnected)
			} else {
				printlnFn(helpDisconnected)
			}

		case "connect":
			_ = a.Connect(ctx)

		case "disconnect":
			_ = a.Disconnect(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "upload":
			_ = a.Upload(ctx, args)

		case "uploads":
			_ = a.Uploads(ctx)

		case "status":
			_ = a.Status(ctx, args)

		case "verify":
			_ = a.Verify(ctx, args)

		case "market", "ls":
			_ = a.Market(ctx, args)

		case "show":
			_ = a.Show(ctx, args)

		case "buy":
			_ = a.Buy(ctx, args)

		case "payment":
			_ = a.Payment(ctx, args)

		case "cancel":
			_ = a.Cancel(ctx, args)

		case "streams":
			_ = a.Streams(ctx)

		case "history":
			_ = a.History(ctx)

		case "dashboard":
			_ = a.Dashboard(ctx)

		case "analytics":
			_ = a.Analytics(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
