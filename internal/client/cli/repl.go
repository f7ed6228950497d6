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
	canUseList() bool
	Signup(ctx context.Context) error
	Signin(ctx context.Context) error
	Signout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Verify(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	Forgot(ctx context.Context, restart bool) error
	List(ctx context.Context) error
	Add(ctx context.Context, title string) error
	Remove(ctx context.Context, arg string) error
	Edit(ctx context.Context, arg, title string) error
	Save(ctx context.Context, title string) error
	Cancel(ctx context.Context) error
	Toggle(ctx context.Context, arg string) error
}

// runREPL starts a simple read-eval-print loop for the gophtodo CLI.
//
// It reads a line from in, parses the first token as the command, and
// dispatches to methods on 'a'. The rest of the line is passed on as the
// argument. The loop exits on EOF or when the user types "exit" or "quit".
//
// Commands
//
//	Always:
//	  - help                 show available commands
//	  - signup | signin      create an account / authenticate
//	  - forgot [restart]     recover a forgotten password
//	  - exit | quit          leave the program
//
//	Signed in:
//	  - whoami               show the current identity
//	  - verify               verify the email address
//	  - passwd               change the password
//	  - signout              end the session
//
//	When the list is available:
//	  - (l)ist               list todos
//	  - add <title>          add a todo
//	  - rm <n>               remove todo n
//	  - edit <n> [title]     edit todo n; with a title it is saved at once
//	  - save [title]         save the todo being edited
//	  - cancel               leave edit mode
//	  - done <n>             toggle completion of todo n
//
// Errors returned by command handlers are ignored here; handlers report
// their own failures.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("todo %s> ", statusFn()))
		line, err := readLine(in)
		if err != nil {
			return
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		if cmd == "" {
			continue
		}

		switch cmd {
		case "help":
			printlnFn(helpText(a))

		case "signup":
			_ = a.Signup(ctx)

		case "signin", "login":
			_ = a.Signin(ctx)

		case "signout", "logout":
			_ = a.Signout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "verify":
			_ = a.Verify(ctx)

		case "passwd":
			_ = a.ChangePassword(ctx)

		case "forgot":
			_ = a.Forgot(ctx, arg == "restart")

		case "l", "list":
			_ = a.List(ctx)

		case "add":
			_ = a.Add(ctx, arg)

		case "rm":
			_ = a.Remove(ctx, arg)

		case "edit":
			n, title, _ := strings.Cut(arg, " ")
			_ = a.Edit(ctx, n, strings.TrimSpace(title))

		case "save":
			_ = a.Save(ctx, arg)

		case "cancel":
			_ = a.Cancel(ctx)

		case "done":
			_ = a.Toggle(ctx, arg)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func helpText(a execIface) string {
	cmds := []string{"help"}
	if a.isLoggedIn() {
		cmds = append(cmds, "whoami", "verify", "passwd", "signout")
	} else {
		cmds = append(cmds, "signup", "signin", "forgot")
	}
	if a.canUseList() {
		cmds = append(cmds, "(l)ist", "add", "rm", "edit", "save", "cancel", "done")
	}
	cmds = append(cmds, "exit")
	return "Available commands: " + strings.Join(cmds, ", ")
}
