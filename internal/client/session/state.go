package session

import "github.com/dmitrijs2005/gophtodo/internal/client/models"

// State is the coarse phase of the session.
type State int

const (
	// Unknown is the state before the first validation finished.
	Unknown State = iota
	// Authenticating means an action is in flight.
	Authenticating
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Unknown:
		return "unknown"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "invalid"
	}
}

// Snapshot is an immutable view of the session. Authenticated is true iff
// Identity is non-nil.
type Snapshot struct {
	Identity      *models.Identity
	Authenticated bool
	Loading       bool
	State         State
}

func (s Snapshot) clone() Snapshot {
	s.Identity = s.Identity.Clone()
	return s
}

// resolved returns the settled snapshot for the given identity.
func resolved(id *models.Identity) Snapshot {
	if id == nil {
		return Snapshot{State: Anonymous}
	}
	return Snapshot{Identity: id.Clone(), Authenticated: true, State: Authenticated}
}

// Listener receives every new snapshot. It runs on the goroutine that caused
// the change and must not block.
type Listener func(Snapshot)
