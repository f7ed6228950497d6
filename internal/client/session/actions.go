package session

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophtodo/internal/client/client"
	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/go-playground/validator/v10"
)

// Validate re-derives the identity from the server. A definitive "not
// authenticated" and a failed request both leave the session Anonymous; the
// return value is the new identity or nil.
func (m *Manager) Validate(ctx context.Context) *models.Identity {
	var id *models.Identity
	m.run(ctx, actionValidate, func(ctx context.Context, tx *transition) models.Result {
		var err error
		id, err = m.fetchIdentity(ctx)
		if err != nil {
			m.logger.Warn(ctx, "validate failed, treating session as anonymous", "error", err)
			tx.resolve(nil)
			return models.Failed(genericReason(actionValidate))
		}
		tx.resolve(id)
		if id == nil {
			return models.Failed(ReasonNotAuthenticated)
		}
		return models.Result{OK: true, Verified: id.Verified}
	})
	return id.Clone()
}

// SignupInput is forwarded as is; the server decides whether the passwords
// match and are strong enough.
type SignupInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Signup registers an account. It does not sign the caller in.
func (m *Manager) Signup(ctx context.Context, in SignupInput) models.Result {
	return m.run(ctx, actionSignup, func(ctx context.Context, tx *transition) models.Result {
		resp, err := m.call(ctx, func(ctx context.Context) (*models.AuthResponse, error) {
			return m.api.Signup(ctx, client.SignupRequest{
				Name:            in.Name,
				Email:           in.Email,
				Password:        in.Password,
				ConfirmPassword: in.ConfirmPassword,
			})
		})
		if err != nil {
			return m.transportFailure(ctx, actionSignup, err)
		}
		if !resp.Success {
			return serverFailure(resp, actionSignup)
		}
		return models.Succeeded()
	})
}

// Signin logs in, keeps the returned credential and then trusts only the
// identity reported by validate.
func (m *Manager) Signin(ctx context.Context, email, password string) models.Result {
	return m.run(ctx, actionSignin, func(ctx context.Context, tx *transition) models.Result {
		resp, err := m.call(ctx, func(ctx context.Context) (*models.AuthResponse, error) {
			return m.api.Signin(ctx, email, password)
		})
		if err != nil {
			return m.transportFailure(ctx, actionSignin, err)
		}
		if !resp.Success {
			return serverFailure(resp, actionSignin)
		}

		m.storeToken(ctx, actionSignin, resp.Token)

		id := m.revalidate(ctx, tx, actionSignin)
		if id == nil {
			return models.Failed(ReasonValidateFailed)
		}
		m.logger.Info(ctx, "signed in", "user_id", id.ID, "verified", id.Verified)
		return models.Result{OK: true, Verified: id.Verified}
	})
}

// Signout ends the session once the server confirms it. If the server
// refuses, nothing changes locally.
func (m *Manager) Signout(ctx context.Context) models.Result {
	return m.run(ctx, actionSignout, func(ctx context.Context, tx *transition) models.Result {
		resp, err := m.call(ctx, m.api.Signout)
		if err != nil {
			return m.transportFailure(ctx, actionSignout, err)
		}
		if !resp.Success {
			return serverFailure(resp, actionSignout)
		}

		tx.resolve(nil)
		if m.creds != nil {
			if err := m.creds.Clear(ctx); err != nil {
				m.logger.Error(ctx, "clearing credential failed, retried on next load", "error", err)
			}
		}
		m.logger.Info(ctx, "signed out")
		return models.Succeeded()
	})
}

// SendVerificationCode asks the server to mail a verification code. The user
// echoed in the response is ignored.
func (m *Manager) SendVerificationCode(ctx context.Context, email string) models.Result {
	if email == "" {
		return models.Failed(ReasonEmailRequired)
	}
	return m.run(ctx, actionSendVerification, func(ctx context.Context, tx *transition) models.Result {
		resp, err := m.call(ctx, func(ctx context.Context) (*models.AuthResponse, error) {
			return m.api.SendVerificationCode(ctx, email)
		})
		if err != nil {
			return m.transportFailure(ctx, actionSendVerification, err)
		}
		if !resp.Success {
			return serverFailure(resp, actionSendVerification)
		}
		return models.Succeeded()
	})
}

// VerifyVerificationCode consumes a verification code and refreshes the
// identity so Verified reflects the server.
func (m *Manager) VerifyVerificationCode(ctx context.Context, email, code string) models.Result {
	if email == "" {
		return models.Failed(ReasonEmailRequired)
	}
	if code == "" {
		return models.Failed(ReasonCodeRequired)
	}
	return m.run(ctx, actionVerifyVerification, func(ctx context.Context, tx *transition) models.Result {
		resp, err := m.call(ctx, func(ctx context.Context) (*models.AuthResponse, error) {
			return m.api.VerifyVerificationCode(ctx, email, code)
		})
		if err != nil {
			return m.transportFailure(ctx, actionVerifyVerification, err)
		}
		if !resp.Success {
			return serverFailure(resp, actionVerifyVerification)
		}

		m.storeToken(ctx, actionVerifyVerification, resp.Token)

		id := m.revalidate(ctx, tx, actionVerifyVerification)
		if id == nil {
			return models.Failed(ReasonValidateFailed)
		}
		return models.Result{OK: true, Verified: id.Verified}
	})
}

// ChangePassword needs an authenticated session; the check happens before
// any request is sent.
func (m *Manager) ChangePassword(ctx context.Context, oldPassword, newPassword string) models.Result {
	if !m.Snapshot().Authenticated {
		return models.Failed(ReasonSignInRequired)
	}
	if oldPassword == "" || newPassword == "" {
		return models.Failed(ReasonFieldsRequired)
	}
	return m.run(ctx, actionChangePassword, func(ctx context.Context, tx *transition) models.Result {
		resp, err := m.call(ctx, func(ctx context.Context) (*models.AuthResponse, error) {
			return m.api.ChangePassword(ctx, oldPassword, newPassword)
		})
		if err != nil {
			return m.transportFailure(ctx, actionChangePassword, err)
		}
		if !resp.Success {
			return serverFailure(resp, actionChangePassword)
		}

		m.storeToken(ctx, actionChangePassword, resp.Token)

		res := models.Succeeded()
		if id := m.revalidate(ctx, tx, actionChangePassword); id != nil {
			res.Verified = id.Verified
		}
		return res
	})
}

// SendForgotPasswordCode starts the recovery flow. It works without a session.
func (m *Manager) SendForgotPasswordCode(ctx context.Context, email string) models.Result {
	if email == "" {
		return models.Failed(ReasonEmailRequired)
	}
	return m.run(ctx, actionSendForgotCode, func(ctx context.Context, tx *transition) models.Result {
		resp, err := m.call(ctx, func(ctx context.Context) (*models.AuthResponse, error) {
			return m.api.SendForgotPasswordCode(ctx, email)
		})
		if err != nil {
			return m.transportFailure(ctx, actionSendForgotCode, err)
		}
		if !resp.Success {
			return serverFailure(resp, actionSendForgotCode)
		}
		return models.Succeeded()
	})
}

// CheckForgotPasswordCode verifies a recovery code without consuming the
// password reset.
func (m *Manager) CheckForgotPasswordCode(ctx context.Context, email, code string) models.Result {
	if email == "" {
		return models.Failed(ReasonEmailRequired)
	}
	if code == "" {
		return models.Failed(ReasonCodeRequired)
	}
	return m.run(ctx, actionCheckForgotCode, func(ctx context.Context, tx *transition) models.Result {
		resp, err := m.call(ctx, func(ctx context.Context) (*models.AuthResponse, error) {
			return m.api.CheckForgotPasswordCode(ctx, email, code)
		})
		if err != nil {
			return m.transportFailure(ctx, actionCheckForgotCode, err)
		}
		if !resp.Success {
			return serverFailure(resp, actionCheckForgotCode)
		}
		return models.Succeeded()
	})
}

// ResetPasswordInput is checked locally before anything is sent.
type ResetPasswordInput struct {
	Email           string `validate:"required"`
	Code            string `validate:"required"`
	NewPassword     string `validate:"required"`
	ConfirmPassword string `validate:"required,eqfield=NewPassword"`
}

var validate = validator.New()

func checkResetInput(in ResetPasswordInput) (string, bool) {
	err := validate.Struct(in)
	if err == nil {
		return "", true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "eqfield" {
				return ReasonPasswordMismatch, false
			}
		}
	}
	return ReasonFieldsRequired, false
}

// ResetPasswordWithCode sets a new password using a recovery code. A
// confirmation mismatch fails before any request.
func (m *Manager) ResetPasswordWithCode(ctx context.Context, in ResetPasswordInput) models.Result {
	if reason, ok := checkResetInput(in); !ok {
		return models.Failed(reason)
	}
	return m.run(ctx, actionResetPassword, func(ctx context.Context, tx *transition) models.Result {
		resp, err := m.call(ctx, func(ctx context.Context) (*models.AuthResponse, error) {
			return m.api.ResetPasswordWithCode(ctx, client.ResetPasswordRequest{
				Email:           in.Email,
				Code:            in.Code,
				NewPassword:     in.NewPassword,
				ConfirmPassword: in.ConfirmPassword,
			})
		})
		if err != nil {
			return m.transportFailure(ctx, actionResetPassword, err)
		}
		if !resp.Success {
			return serverFailure(resp, actionResetPassword)
		}

		m.storeToken(ctx, actionResetPassword, resp.Token)

		res := models.Succeeded()
		if id := m.revalidate(ctx, tx, actionResetPassword); id != nil {
			res.Verified = id.Verified
		}
		return res
	})
}
