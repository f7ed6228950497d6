// Package cli provides the interactive gophtodo command-line client.
//
// It wires the session manager, the todo list and an optional connectivity
// watcher into a read-eval-print loop. Typical flow: sign in, list and edit
// todos, sign out.
//
// Key features:
//   - Signup / Signin / Signout, email verification and password change
//   - Password recovery with a one-time code
//   - List / Add / Remove / Edit / Complete todos
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
