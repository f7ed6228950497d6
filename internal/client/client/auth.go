package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/gophtodo/internal/client/models"
)

func (c *HTTPClient) Validate(ctx context.Context) (*models.AuthResponse, error) {
	return c.authCall(ctx, http.MethodGet, "/auth/validate", nil)
}

func (c *HTTPClient) Signup(ctx context.Context, req SignupRequest) (*models.AuthResponse, error) {
	return c.authCall(ctx, http.MethodPost, "/auth/signup", req)
}

func (c *HTTPClient) Signin(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	return c.authCall(ctx, http.MethodPost, "/auth/signin", signinRequest{Email: email, Password: password})
}

func (c *HTTPClient) Signout(ctx context.Context) (*models.AuthResponse, error) {
	return c.authCall(ctx, http.MethodPost, "/auth/signout", nil)
}

func (c *HTTPClient) SendVerificationCode(ctx context.Context, email string) (*models.AuthResponse, error) {
	return c.authCall(ctx, http.MethodPatch, "/auth/send-verification-code", emailRequest{Email: email})
}

func (c *HTTPClient) VerifyVerificationCode(ctx context.Context, email, code string) (*models.AuthResponse, error) {
	return c.authCall(ctx, http.MethodPatch, "/auth/verify-verification-code", codeRequest{Email: email, Code: code})
}

func (c *HTTPClient) ChangePassword(ctx context.Context, oldPassword, newPassword string) (*models.AuthResponse, error) {
	return c.authCall(ctx, http.MethodPatch, "/auth/change-password",
		changePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword})
}

func (c *HTTPClient) SendForgotPasswordCode(ctx context.Context, email string) (*models.AuthResponse, error) {
	return c.authCall(ctx, http.MethodPatch, "/auth/send-forgot-password-code", emailRequest{Email: email})
}

func (c *HTTPClient) CheckForgotPasswordCode(ctx context.Context, email, code string) (*models.AuthResponse, error) {
	return c.authCall(ctx, http.MethodPatch, "/auth/check-forgot-password-code", codeRequest{Email: email, Code: code})
}

func (c *HTTPClient) ResetPasswordWithCode(ctx context.Context, req ResetPasswordRequest) (*models.AuthResponse, error) {
	return c.authCall(ctx, http.MethodPatch, "/auth/verify-forgot-password-code", req)
}

// authCall decodes the {success, message, user, token} body. A structured
// {success:false} answer is returned as a response even on 4xx, since that is
// how the auth service reports business failures.
func (c *HTTPClient) authCall(ctx context.Context, method, path string, body any) (*models.AuthResponse, error) {
	status, data, err := c.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	var probe struct {
		Success *bool `json:"success"`
	}
	if jsonErr := json.Unmarshal(data, &probe); jsonErr != nil || probe.Success == nil {
		if status >= http.StatusBadRequest {
			return nil, statusError(status, data)
		}
		return nil, fmt.Errorf("%w: %s %s", ErrMalformedResponse, method, path)
	}

	if status >= http.StatusBadRequest && *probe.Success {
		return nil, statusError(status, data)
	}

	var resp models.AuthResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return &resp, nil
}
