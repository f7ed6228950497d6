package credential

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophtodo/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/cryptox"
	"github.com/dmitrijs2005/gophtodo/internal/logging"
)

// DurableStore persists the credential under a fixed key of a key/value
// repository, optionally sealed with a passphrase. The last loaded value is
// cached so the transport does not hit the repository on every request.
//
// Values that cannot be opened (corrupt, wrong passphrase) and expired JWTs
// are treated as absent and removed. A removal the repository refused is
// retried on the next Load.
type DurableStore struct {
	repo       metadata.Repository
	key        string
	passphrase []byte
	logger     logging.Logger
	now        func() time.Time

	mu           sync.Mutex
	cached       *string
	clearPending bool
}

type DurableOption func(*DurableStore)

// WithPassphrase seals the value at rest. An empty passphrase keeps it plain.
func WithPassphrase(p string) DurableOption {
	return func(s *DurableStore) {
		if p != "" {
			s.passphrase = []byte(p)
		}
	}
}

func WithKey(key string) DurableOption {
	return func(s *DurableStore) {
		if key != "" {
			s.key = key
		}
	}
}

func WithLogger(l logging.Logger) DurableOption {
	return func(s *DurableStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) DurableOption {
	return func(s *DurableStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewDurableStore(repo metadata.Repository, opts ...DurableOption) *DurableStore {
	s := &DurableStore{
		repo:   repo,
		key:    common.CredentialKey,
		logger: logging.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DurableStore) Load(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clearPending {
		return "", s.dropLocked(ctx, nil)
	}

	if s.cached != nil {
		if *s.cached != "" {
			if err := checkExpiry(*s.cached, s.now()); err != nil {
				return "", s.dropLocked(ctx, err)
			}
		}
		return *s.cached, nil
	}

	raw, err := s.repo.Get(ctx, s.key)
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}
	if raw == nil {
		empty := ""
		s.cached = &empty
		return "", nil
	}

	token, err := s.decode(raw)
	if err != nil {
		s.logger.Warn(ctx, "stored credential unreadable, discarding", "error", err)
		return "", s.dropLocked(ctx, nil)
	}
	if err := checkExpiry(token, s.now()); err != nil {
		return "", s.dropLocked(ctx, err)
	}

	s.cached = &token
	return token, nil
}

func (s *DurableStore) Save(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.encode(token)
	if err != nil {
		return fmt.Errorf("seal credential: %w", err)
	}
	if err := s.repo.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	s.cached = &token
	s.clearPending = false
	return nil
}

func (s *DurableStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropLocked(ctx, nil)
}

// Credential implements client.CredentialSource. Repository failures are
// logged and yield no credential.
func (s *DurableStore) Credential(ctx context.Context) string {
	t, err := s.Load(ctx)
	if err != nil {
		s.logger.Error(ctx, "reading credential failed", "error", err)
		return ""
	}
	return t
}

// dropLocked empties the cache and deletes the stored value. cause, when set,
// is logged as the reason for dropping.
func (s *DurableStore) dropLocked(ctx context.Context, cause error) error {
	if cause != nil {
		s.logger.Info(ctx, "dropping credential", "reason", cause)
	}
	empty := ""
	s.cached = &empty
	if err := s.repo.Delete(ctx, s.key); err != nil {
		s.clearPending = true
		return fmt.Errorf("clear credential: %w", err)
	}
	s.clearPending = false
	return nil
}

func (s *DurableStore) encode(token string) ([]byte, error) {
	if s.passphrase == nil {
		return []byte(token), nil
	}
	return cryptox.Seal([]byte(token), s.passphrase)
}

func (s *DurableStore) decode(raw []byte) (string, error) {
	if s.passphrase == nil {
		if !utf8.Valid(raw) {
			return "", common.ErrCorruptData
		}
		return string(raw), nil
	}
	plain, err := cryptox.Open(raw, s.passphrase)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrCorruptData, err)
	}
	return string(plain), nil
}
