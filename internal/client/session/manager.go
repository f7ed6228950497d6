package session

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/client/client"
	"github.com/dmitrijs2005/gophtodo/internal/client/credential"
	"github.com/dmitrijs2005/gophtodo/internal/client/metrics"
	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/dmitrijs2005/gophtodo/internal/logging"
	"golang.org/x/sync/semaphore"
)

const defaultTimeout = 15 * time.Second

type Manager struct {
	api     client.AuthAPI
	creds   credential.Store
	logger  logging.Logger
	metrics *metrics.Metrics
	timeout time.Duration

	// gate serialises session actions.
	gate *semaphore.Weighted

	mu        sync.RWMutex
	snap      Snapshot
	listeners map[int]Listener
	nextID    int
}

type Option func(*Manager)

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mt
	}
}

// WithTimeout bounds every remote call made by an action.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// New returns a Manager in the initial state: loading, not authenticated,
// no identity. Call Start to resolve it.
func New(api client.AuthAPI, creds credential.Store, opts ...Option) *Manager {
	m := &Manager{
		api:       api,
		creds:     creds,
		logger:    logging.Discard(),
		timeout:   defaultTimeout,
		gate:      semaphore.NewWeighted(1),
		snap:      Snapshot{Loading: true, State: Unknown},
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start runs the initial validation.
func (m *Manager) Start(ctx context.Context) Snapshot {
	m.Validate(ctx)
	return m.Snapshot()
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap.clone()
}

// Subscribe registers fn for future snapshots and returns a function that
// removes it.
func (m *Manager) Subscribe(fn Listener) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
		})
	}
}

func (m *Manager) publish(s Snapshot) {
	m.mu.Lock()
	m.snap = s
	ls := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		ls = append(ls, l)
	}
	m.mu.Unlock()

	for _, l := range ls {
		l(s.clone())
	}
}

// transition collects what an action decided about the identity. An action
// that never calls resolve leaves the session as it found it.
type transition struct {
	done     bool
	identity *models.Identity
}

func (t *transition) resolve(id *models.Identity) {
	t.done = true
	t.identity = id.Clone()
}

// run executes fn behind the single-flight gate. loading is raised for the
// duration and always lowered again. A panic in fn is logged, leaves the
// session as it was and fails with the generic reason for action.
func (m *Manager) run(ctx context.Context, action string, fn func(ctx context.Context, tx *transition) models.Result) (res models.Result) {
	if err := m.gate.Acquire(ctx, 1); err != nil {
		m.logger.Warn(ctx, "session action abandoned while waiting", "action", action, "error", err)
		m.metrics.SessionAction(action, metrics.OutcomeError)
		return models.Failed(genericReason(action))
	}
	defer m.gate.Release(1)

	prev := m.Snapshot()
	busy := prev.clone()
	busy.Loading = true
	busy.State = Authenticating
	m.publish(busy)

	tx := &transition{}
	defer func() {
		next := prev
		if r := recover(); r != nil {
			m.logger.Error(ctx, "session action panicked", "action", action, "panic", r)
			m.metrics.SessionAction(action, metrics.OutcomeError)
			res = models.Failed(genericReason(action))
		} else if tx.done {
			next = resolved(tx.identity)
		}
		next.Loading = false
		m.publish(next)
	}()

	res = fn(ctx, tx)

	outcome := metrics.OutcomeOK
	if !res.OK {
		outcome = metrics.OutcomeFailed
	}
	m.metrics.SessionAction(action, outcome)
	return res
}

// call bounds one remote request with the configured timeout.
func (m *Manager) call(ctx context.Context, fn func(ctx context.Context) (*models.AuthResponse, error)) (*models.AuthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	resp, err := fn(ctx)
	if err == nil && resp == nil {
		err = client.ErrMalformedResponse
	}
	return resp, err
}

// fetchIdentity asks the validate endpoint who we are. A nil identity with a
// nil error is a definitive "not authenticated".
func (m *Manager) fetchIdentity(ctx context.Context) (*models.Identity, error) {
	resp, err := m.call(ctx, m.api.Validate)
	if err != nil {
		return nil, err
	}
	if !resp.Success || resp.User == nil {
		return nil, nil
	}
	return resp.User.Clone(), nil
}

// revalidate performs the canonical identity refresh that follows a
// successful mutating action. The session is resolved to the answer unless
// the request itself failed.
func (m *Manager) revalidate(ctx context.Context, tx *transition, action string) *models.Identity {
	id, err := m.fetchIdentity(ctx)
	if err != nil {
		m.logger.Error(ctx, "re-validation failed", "action", action, "error", err)
		return nil
	}
	tx.resolve(id)
	return id
}

// storeToken persists a credential handed out by the server. Failures are
// logged: the cookie set by the same response may still carry the session.
func (m *Manager) storeToken(ctx context.Context, action, token string) {
	if token == "" || m.creds == nil {
		return
	}
	if err := m.creds.Save(ctx, token); err != nil {
		m.logger.Error(ctx, "saving credential failed", "action", action, "error", err)
	}
}

// serverFailure turns a {success:false} response into a result, falling back
// to "<Action> failed." when the server gave no message.
func serverFailure(resp *models.AuthResponse, action string) models.Result {
	if resp.Message != "" {
		return models.Failed(resp.Message)
	}
	return models.Failed(fallbackReason(action))
}

// transportFailure logs err and returns the generic reason for action.
func (m *Manager) transportFailure(ctx context.Context, action string, err error) models.Result {
	m.logger.Error(ctx, "session action failed", "action", action, "error", err)
	return models.Failed(genericReason(action))
}
