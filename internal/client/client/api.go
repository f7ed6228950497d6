package client

import (
	"context"

	"github.com/dmitrijs2005/gophtodo/internal/client/models"
)

// AuthAPI is the remote auth service as seen by the session manager.
type AuthAPI interface {
	Validate(ctx context.Context) (*models.AuthResponse, error)
	Signup(ctx context.Context, req SignupRequest) (*models.AuthResponse, error)
	Signin(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Signout(ctx context.Context) (*models.AuthResponse, error)
	SendVerificationCode(ctx context.Context, email string) (*models.AuthResponse, error)
	VerifyVerificationCode(ctx context.Context, email, code string) (*models.AuthResponse, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword string) (*models.AuthResponse, error)
	SendForgotPasswordCode(ctx context.Context, email string) (*models.AuthResponse, error)
	CheckForgotPasswordCode(ctx context.Context, email, code string) (*models.AuthResponse, error)
	ResetPasswordWithCode(ctx context.Context, req ResetPasswordRequest) (*models.AuthResponse, error)
}

// TodoAPI is the remote list service.
type TodoAPI interface {
	ListTodos(ctx context.Context) ([]models.Item, error)
	GetTodo(ctx context.Context, id string) (models.Item, error)
	CreateTodo(ctx context.Context, title string) (models.Item, error)
	UpdateTodo(ctx context.Context, id string, patch models.TodoPatch) (models.Item, error)
	DeleteTodo(ctx context.Context, id string) error
}

// Pinger reports whether the server answers at all.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CredentialSource yields the bearer credential to attach to a request, or ""
// when there is none.
type CredentialSource interface {
	Credential(ctx context.Context) string
}

type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email"`
	Code            string `json:"providedCode"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type codeRequest struct {
	Email string `json:"email"`
	Code  string `json:"providedCode"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type createTodoRequest struct {
	Title string `json:"title"`
}
