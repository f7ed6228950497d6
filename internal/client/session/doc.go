// Package session owns the client's authentication state.
//
// A Manager is the single owner of the session: the current Identity, the
// authenticated flag and the loading flag. Consumers read it only through
// immutable Snapshot values, either by calling Snapshot or by subscribing to
// changes.
//
// Every action that touches the remote auth service goes through one
// single-flight gate, so at most one of them is in flight; later callers wait
// their turn or give up when their context ends. Actions never return errors:
// they return a models.Result whose Reason is ready for display. Server
// messages are passed through verbatim, transport problems are logged and
// replaced with a generic reason.
//
// After any action that changes who the user is (signin, verification,
// password change or reset) the Manager asks the validate endpoint for the
// canonical identity; the identity echoed by the action itself is ignored.
package session
