package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/dmitrijs2005/gophtodo/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophtodo/internal/client/session"
	"github.com/dmitrijs2005/gophtodo/internal/client/todo"
)

var ann = &models.Identity{ID: "u1", Name: "Ann", Email: "ann@example.com", Verified: true}

// fakeSession succeeds unless a result is installed for the action. Signin
// and Signout flip the snapshot the way the real manager would.
type fakeSession struct {
	snap    session.Snapshot
	results map[string]models.Result
	calls   []string

	email    string
	password string
	code     string
	signup   session.SignupInput
	reset    session.ResetPasswordInput
	identity *models.Identity
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		snap:     session.Snapshot{State: session.Anonymous},
		results:  make(map[string]models.Result),
		identity: ann,
	}
}

func signedIn(f *fakeSession, id *models.Identity) *fakeSession {
	f.snap = session.Snapshot{Identity: id, Authenticated: true, State: session.Authenticated}
	return f
}

func (f *fakeSession) result(name string) models.Result {
	f.calls = append(f.calls, name)
	if r, ok := f.results[name]; ok {
		return r
	}
	return models.Succeeded()
}

func (f *fakeSession) Snapshot() session.Snapshot { return f.snap }

func (f *fakeSession) Signup(_ context.Context, in session.SignupInput) models.Result {
	f.signup = in
	return f.result("signup")
}

func (f *fakeSession) Signin(_ context.Context, email, password string) models.Result {
	f.email, f.password = email, password
	r := f.result("signin")
	if r.OK {
		signedIn(f, f.identity)
		r.Verified = f.identity.Verified
	}
	return r
}

func (f *fakeSession) Signout(context.Context) models.Result {
	r := f.result("signout")
	if r.OK {
		f.snap = session.Snapshot{State: session.Anonymous}
	}
	return r
}

func (f *fakeSession) ChangePassword(_ context.Context, oldPassword, newPassword string) models.Result {
	f.password = oldPassword + "->" + newPassword
	return f.result("change_password")
}

func (f *fakeSession) SendVerificationCode(_ context.Context, email string) models.Result {
	f.email = email
	return f.result("send_verification")
}

func (f *fakeSession) VerifyVerificationCode(_ context.Context, email, code string) models.Result {
	f.email, f.code = email, code
	return f.result("verify_verification")
}

func (f *fakeSession) SendForgotPasswordCode(_ context.Context, email string) models.Result {
	f.email = email
	return f.result("send_forgot")
}

func (f *fakeSession) CheckForgotPasswordCode(_ context.Context, email, code string) models.Result {
	f.email, f.code = email, code
	return f.result("check_forgot")
}

func (f *fakeSession) ResetPasswordWithCode(_ context.Context, in session.ResetPasswordInput) models.Result {
	f.reset = in
	return f.result("reset")
}

// stubInputs replaces the prompt helpers with queues of answers.
func stubInputs(t *testing.T, texts []string, passwords []string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			return "", io.EOF
		}
		s := texts[0]
		texts = texts[1:]
		return s, nil
	}
	getPassword = func(_ *bufio.Reader, _ string, _ io.Writer) ([]byte, error) {
		if len(passwords) == 0 {
			return nil, io.EOF
		}
		s := passwords[0]
		passwords = passwords[1:]
		return []byte(s), nil
	}
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

// newTestApp builds an App over a fake session and a real todo manager kept
// in memory.
func newTestApp(t *testing.T, s *fakeSession, remoteList bool) (*App, *todo.Manager, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	list := todo.NewManager(todo.NewLocalStore(metadata.NewMemoryRepository()))
	a := NewApp(Deps{
		Session:    s,
		Todos:      list,
		RemoteList: remoteList,
		In:         strings.NewReader(""),
		Out:        &out,
	})
	return a, list, &out
}
