// Package credential keeps the bearer credential issued by the auth service.
//
// Two stores are provided: MemoryStore lives as long as the process, and
// DurableStore writes the credential to a key/value repository so that it
// survives restarts. Both satisfy client.CredentialSource.
package credential

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/client/client"
	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Store holds at most one credential.
type Store interface {
	client.CredentialSource

	// Load returns the stored credential or "" when there is none.
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// MemoryStore is the session-only store.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*DurableStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemoryStore) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func (m *MemoryStore) Credential(ctx context.Context) string {
	t, _ := m.Load(ctx)
	return t
}

// checkExpiry returns common.ErrTokenExpired when a JWT-shaped credential
// carries an exp claim that is not after now. The signature is not checked:
// only the server can do that. Opaque tokens and tokens without exp never
// expire.
func checkExpiry(token string, now time.Time) error {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	if now.Before(exp.Time) {
		return nil
	}
	return fmt.Errorf("%w at %s", common.ErrTokenExpired, exp.Time.Format(time.RFC3339))
}
