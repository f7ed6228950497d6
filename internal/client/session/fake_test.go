package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophtodo/internal/client/client"
	"github.com/dmitrijs2005/gophtodo/internal/client/models"
)

type respondFunc func(ctx context.Context) (*models.AuthResponse, error)

func reply(r *models.AuthResponse, err error) respondFunc {
	return func(context.Context) (*models.AuthResponse, error) { return r, err }
}

// fakeAuth answers every call with success unless a responder is installed.
// validate defaults to "not authenticated".
type fakeAuth struct {
	mu      sync.Mutex
	calls   []string
	respond map[string]respondFunc

	signup client.SignupRequest
	reset  client.ResetPasswordRequest
	email  string
	code   string
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{respond: make(map[string]respondFunc)}
}

func (f *fakeAuth) on(name string, fn respondFunc) *fakeAuth {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.respond[name] = fn
	return f
}

func (f *fakeAuth) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeAuth) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAuth) do(ctx context.Context, name string) (*models.AuthResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	fn := f.respond[name]
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	if name == "validate" {
		return &models.AuthResponse{Success: false, Message: "Not authenticated"}, nil
	}
	return &models.AuthResponse{Success: true}, nil
}

func (f *fakeAuth) Validate(ctx context.Context) (*models.AuthResponse, error) {
	return f.do(ctx, "validate")
}

func (f *fakeAuth) Signup(ctx context.Context, req client.SignupRequest) (*models.AuthResponse, error) {
	f.mu.Lock()
	f.signup = req
	f.mu.Unlock()
	return f.do(ctx, "signup")
}

func (f *fakeAuth) Signin(ctx context.Context, email, _ string) (*models.AuthResponse, error) {
	f.mu.Lock()
	f.email = email
	f.mu.Unlock()
	return f.do(ctx, "signin")
}

func (f *fakeAuth) Signout(ctx context.Context) (*models.AuthResponse, error) {
	return f.do(ctx, "signout")
}

func (f *fakeAuth) SendVerificationCode(ctx context.Context, email string) (*models.AuthResponse, error) {
	f.mu.Lock()
	f.email = email
	f.mu.Unlock()
	return f.do(ctx, "send_verification")
}

func (f *fakeAuth) VerifyVerificationCode(ctx context.Context, email, code string) (*models.AuthResponse, error) {
	f.mu.Lock()
	f.email, f.code = email, code
	f.mu.Unlock()
	return f.do(ctx, "verify_verification")
}

func (f *fakeAuth) ChangePassword(ctx context.Context, _, _ string) (*models.AuthResponse, error) {
	return f.do(ctx, "change_password")
}

func (f *fakeAuth) SendForgotPasswordCode(ctx context.Context, email string) (*models.AuthResponse, error) {
	f.mu.Lock()
	f.email = email
	f.mu.Unlock()
	return f.do(ctx, "send_forgot")
}

func (f *fakeAuth) CheckForgotPasswordCode(ctx context.Context, email, code string) (*models.AuthResponse, error) {
	f.mu.Lock()
	f.email, f.code = email, code
	f.mu.Unlock()
	return f.do(ctx, "check_forgot")
}

func (f *fakeAuth) ResetPasswordWithCode(ctx context.Context, req client.ResetPasswordRequest) (*models.AuthResponse, error) {
	f.mu.Lock()
	f.reset = req
	f.mu.Unlock()
	return f.do(ctx, "reset")
}

var ann = &models.Identity{ID: "u1", Name: "Ann", Email: "ann@example.com", Verified: true}

func authenticated(id *models.Identity) respondFunc {
	return reply(&models.AuthResponse{Success: true, User: id}, nil)
}
