package session

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/client/client"
	"github.com/dmitrijs2005/gophtodo/internal/logging"
)

// Mode is the connectivity state observed by the Watcher.
type Mode string

const (
	ModeUnknown Mode = ""
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const pingTimeout = 3 * time.Second

// Watcher pings the server on an interval and, while online, re-validates an
// authenticated session so that a session dropped by the server ends up
// Anonymous.
type Watcher struct {
	m        *Manager
	pinger   client.Pinger
	interval time.Duration
	logger   logging.Logger

	mu       sync.RWMutex
	mode     Mode
	onChange func(Mode)
}

type WatcherOption func(*Watcher)

func WithWatcherLogger(l logging.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// OnModeChange registers fn to be called whenever the mode flips.
func OnModeChange(fn func(Mode)) WatcherOption {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

func NewWatcher(m *Manager, p client.Pinger, interval time.Duration, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		m:        m,
		pinger:   p,
		interval: interval,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Watcher) Mode() Mode {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.mode
}

func (w *Watcher) setMode(ctx context.Context, mode Mode) {
	w.mu.Lock()
	changed := w.mode != mode
	w.mode = mode
	fn := w.onChange
	w.mu.Unlock()

	if changed {
		w.logger.Info(ctx, "connectivity changed", "mode", string(mode))
		if fn != nil {
			fn(mode)
		}
	}
}

// Run blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	if w.interval <= 0 {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) tick(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := w.pinger.Ping(pctx)
	cancel()

	if err != nil {
		w.logger.Debug(ctx, "ping failed", "error", err)
		w.setMode(ctx, ModeOffline)
		return
	}
	w.setMode(ctx, ModeOnline)

	if w.m.Snapshot().Authenticated {
		if id := w.m.Validate(ctx); id == nil {
			w.logger.Warn(ctx, "session no longer valid")
		}
	}
}
