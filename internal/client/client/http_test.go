package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/client/metrics"
	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCreds string

func (s staticCreds) Credential(context.Context) string { return string(s) }

// fakeServer is a tiny in-memory stand-in for the remote auth and todo
// services. It records the last request so tests can inspect headers and
// bodies.
type fakeServer struct {
	mu       sync.Mutex
	lastReq  *http.Request
	lastBody map[string]any
	todos    []models.Item
	nextID   int
}

func (f *fakeServer) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastReq = r
	f.lastBody = nil
	if b, _ := io.ReadAll(r.Body); len(b) > 0 {
		_ = json.Unmarshal(b, &f.lastBody)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeServer) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	r.HandleFunc("/auth/validate", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if r.Header.Get("Authorization") != "Bearer good" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Not authenticated"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"user":    map[string]any{"_id": "u1", "name": "Ann", "email": "ann@example.com", "verified": true},
		})
	}).Methods(http.MethodGet)

	r.HandleFunc("/auth/signin", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if f.lastBody["password"] != "secret" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid credentials"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": "good"})
	}).Methods(http.MethodPost)

	r.HandleFunc("/auth/signout", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}).Methods(http.MethodPost)

	for _, p := range []string{
		"/auth/send-verification-code", "/auth/verify-verification-code", "/auth/change-password",
		"/auth/send-forgot-password-code", "/auth/check-forgot-password-code", "/auth/verify-forgot-password-code",
	} {
		r.HandleFunc(p, func(w http.ResponseWriter, r *http.Request) {
			f.record(r)
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		}).Methods(http.MethodPatch)
	}

	r.HandleFunc("/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>oops</html>"))
	}).Methods(http.MethodPost)

	r.HandleFunc("/todo", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": f.todos})
	}).Methods(http.MethodGet)

	r.HandleFunc("/todo", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.nextID++
		it := models.Item{ID: "t" + string(rune('0'+f.nextID)), Title: f.lastBody["title"].(string)}
		f.todos = append([]models.Item{it}, f.todos...)
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": it})
	}).Methods(http.MethodPost)

	r.HandleFunc("/todo/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		id := mux.Vars(r)["id"]
		for i, it := range f.todos {
			if it.ID != id {
				continue
			}
			switch r.Method {
			case http.MethodGet:
				writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": it})
			case http.MethodPut:
				if t, ok := f.lastBody["title"].(string); ok {
					f.todos[i].Title = t
				}
				if c, ok := f.lastBody["completed"].(bool); ok {
					f.todos[i].Completed = c
				}
				writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": f.todos[i]})
			case http.MethodDelete:
				f.todos = append(f.todos[:i], f.todos[i+1:]...)
				writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": it})
			}
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Todo not found"})
	}).Methods(http.MethodGet, http.MethodPut, http.MethodDelete)

	return r
}

func newTestClient(t *testing.T, creds CredentialSource, opts ...Option) (*HTTPClient, *fakeServer) {
	t.Helper()
	fs := &fakeServer{}
	srv := httptest.NewServer(fs.router())
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, creds, opts...)
	require.NoError(t, err)
	return c, fs
}

func TestNew_NormalisesBaseURL(t *testing.T) {
	c, err := New("", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4000", c.BaseURL())

	c, err = New(" api.example.com/ ", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://api.example.com", c.BaseURL())
	assert.NotNil(t, c.httpClient.Jar)
}

func TestValidate_SendsBearerAndRequestID(t *testing.T) {
	c, fs := newTestClient(t, staticCreds("good"))

	resp, err := c.Validate(context.Background())
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.NotNil(t, resp.User)
	assert.Equal(t, "u1", resp.User.ID)
	assert.True(t, resp.User.Verified)

	assert.Equal(t, "Bearer good", fs.lastReq.Header.Get("Authorization"))
	assert.NotEmpty(t, fs.lastReq.Header.Get("X-Request-ID"))
}

func TestValidate_UnauthenticatedIsAResponse(t *testing.T) {
	c, fs := newTestClient(t, nil)

	resp, err := c.Validate(context.Background())
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Nil(t, resp.User)
	assert.Empty(t, fs.lastReq.Header.Get("Authorization"))
}

func TestSignin_ServerFailurePassedThrough(t *testing.T) {
	c, fs := newTestClient(t, nil)

	resp, err := c.Signin(context.Background(), "ann@example.com", "wrong")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid credentials", resp.Message)
	assert.Equal(t, "ann@example.com", fs.lastBody["email"])
}

func TestSignin_StoresCookie(t *testing.T) {
	c, fs := newTestClient(t, nil)

	resp, err := c.Signin(context.Background(), "ann@example.com", "secret")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "good", resp.Token)

	_, err = c.Signout(context.Background())
	require.NoError(t, err)
	ck, err := fs.lastReq.Cookie("session")
	require.NoError(t, err)
	assert.Equal(t, "abc", ck.Value)
}

func TestAuthCalls_PathsAndBodies(t *testing.T) {
	c, fs := newTestClient(t, nil)
	ctx := context.Background()

	_, err := c.SendVerificationCode(ctx, "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, "/auth/send-verification-code", fs.lastReq.URL.Path)
	assert.Equal(t, "a@b.c", fs.lastBody["email"])

	_, err = c.VerifyVerificationCode(ctx, "a@b.c", "123456")
	require.NoError(t, err)
	assert.Equal(t, "123456", fs.lastBody["providedCode"])

	_, err = c.ChangePassword(ctx, "old", "new")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"oldPassword": "old", "newPassword": "new"}, fs.lastBody)

	_, err = c.SendForgotPasswordCode(ctx, "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, "/auth/send-forgot-password-code", fs.lastReq.URL.Path)

	_, err = c.CheckForgotPasswordCode(ctx, "a@b.c", "999")
	require.NoError(t, err)
	assert.Equal(t, "/auth/check-forgot-password-code", fs.lastReq.URL.Path)

	_, err = c.ResetPasswordWithCode(ctx, ResetPasswordRequest{Email: "a@b.c", Code: "999", NewPassword: "x", ConfirmPassword: "x"})
	require.NoError(t, err)
	assert.Equal(t, "/auth/verify-forgot-password-code", fs.lastReq.URL.Path)
	assert.Equal(t, http.MethodPatch, fs.lastReq.Method)
	assert.Equal(t, "x", fs.lastBody["confirmPassword"])
}

func TestSignup_UnstructuredServerError(t *testing.T) {
	c, _ := newTestClient(t, nil)

	_, err := c.Signup(context.Background(), SignupRequest{Name: "A", Email: "a@b.c", Password: "p", ConfirmPassword: "p"})
	var apiErr APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "<html>oops</html>", apiErr.Message)
}

func TestTodoCRUD(t *testing.T) {
	c, _ := newTestClient(t, staticCreds("good"))
	ctx := context.Background()

	items, err := c.ListTodos(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)

	created, err := c.CreateTodo(ctx, "Buy milk")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", created.Title)
	require.NotEmpty(t, created.ID)

	got, err := c.GetTodo(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	title := "Buy oat milk"
	done := true
	updated, err := c.UpdateTodo(ctx, created.ID, models.TodoPatch{Title: &title, Completed: &done})
	require.NoError(t, err)
	assert.Equal(t, models.Item{ID: created.ID, Title: "Buy oat milk", Completed: true}, updated)

	require.NoError(t, c.DeleteTodo(ctx, created.ID))

	items, err = c.ListTodos(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestTodo_NotFoundIsAPIError(t *testing.T) {
	c, _ := newTestClient(t, nil)

	err := c.DeleteTodo(context.Background(), "missing")
	var apiErr APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Todo not found", apiErr.Message)
}

func TestStatusError(t *testing.T) {
	assert.ErrorIs(t, statusError(401, nil), ErrUnauthorized)
	assert.ErrorIs(t, statusError(403, nil), ErrUnauthorized)
	assert.ErrorIs(t, statusError(502, nil), ErrUnavailable)
	assert.ErrorIs(t, statusError(503, nil), ErrUnavailable)
	assert.ErrorIs(t, statusError(504, nil), ErrUnavailable)

	err := statusError(422, []byte(`{"error":"bad input"}`))
	assert.Equal(t, APIError{Status: 422, Message: "bad input"}, err)
	assert.Equal(t, "api request failed (422): bad input", err.Error())
	assert.Equal(t, "api request failed with status 500", APIError{Status: 500}.Error())
}

func TestUnreachableServerIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c, err := New(addr, nil)
	require.NoError(t, err)

	_, err = c.Validate(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestTimeoutIsUnavailable(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c, err := New(srv.URL, nil, WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = c.Validate(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCanceledContextIsNotUnavailable(t *testing.T) {
	c, _ := newTestClient(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Validate(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestMalformedAuthBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	_, err = c.Validate(context.Background())
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestPing(t *testing.T) {
	c, _ := newTestClient(t, nil)
	assert.NoError(t, c.Ping(context.Background()))
}

func TestMetricsRecorded(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	c, _ := newTestClient(t, nil, WithMetrics(m))

	_, err := c.Validate(context.Background())
	require.NoError(t, err)
	require.NoError(t, c.Ping(context.Background()))

	n, err := testutil.GatherAndCount(reg, "gophtodo_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
