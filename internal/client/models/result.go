package models

// Result is the outcome of a session action. Actions never return errors to
// the front-end: failures are described by Reason, ready to be shown.
type Result struct {
	OK       bool
	Verified bool
	Reason   string
}

// Succeeded is the plain success result.
func Succeeded() Result {
	return Result{OK: true}
}

// Failed returns an unsuccessful result carrying a user-facing reason.
func Failed(reason string) Result {
	return Result{Reason: reason}
}
