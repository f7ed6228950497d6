package session

import (
	"context"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophtodo/internal/client/models"
)

// RecoveryStep is the position within the forgot-password flow.
type RecoveryStep int

const (
	StepRequestCode RecoveryStep = iota + 1
	StepSubmitCode
	StepSetPassword
)

// ReasonOutOfOrder is returned when a recovery step is attempted at the
// wrong point of the flow.
const ReasonOutOfOrder = "This step is not available right now."

// RecoveryState is what the flow remembers between steps. The new password
// is never kept.
type RecoveryState struct {
	Step  RecoveryStep
	Email string
	Code  string
}

// Recoverer is the part of Manager used by RecoveryFlow.
type Recoverer interface {
	SendForgotPasswordCode(ctx context.Context, email string) models.Result
	CheckForgotPasswordCode(ctx context.Context, email, code string) models.Result
	ResetPasswordWithCode(ctx context.Context, in ResetPasswordInput) models.Result
}

// Verifier is the part of Manager used by VerificationFlow.
type Verifier interface {
	Snapshot() Snapshot
	SendVerificationCode(ctx context.Context, email string) models.Result
	VerifyVerificationCode(ctx context.Context, email, code string) models.Result
}

var (
	_ Recoverer = (*Manager)(nil)
	_ Verifier  = (*Manager)(nil)
)

// RecoveryFlow drives the three-step password recovery. It lives only in
// memory.
type RecoveryFlow struct {
	m Recoverer

	mu    sync.Mutex
	state RecoveryState
}

func NewRecoveryFlow(m Recoverer) *RecoveryFlow {
	return &RecoveryFlow{m: m, state: RecoveryState{Step: StepRequestCode}}
}

func (f *RecoveryFlow) State() RecoveryState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// RequestCode sends a recovery code to email and moves to the code step.
func (f *RecoveryFlow) RequestCode(ctx context.Context, email string) models.Result {
	email = strings.TrimSpace(email)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state.Step != StepRequestCode {
		return models.Failed(ReasonOutOfOrder)
	}
	if email == "" {
		return models.Failed(ReasonEmailRequired)
	}

	res := f.m.SendForgotPasswordCode(ctx, email)
	if res.OK {
		f.state = RecoveryState{Step: StepSubmitCode, Email: email}
	}
	return res
}

// SubmitCode checks the code against the server before asking for a new
// password.
func (f *RecoveryFlow) SubmitCode(ctx context.Context, code string) models.Result {
	code = strings.TrimSpace(code)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state.Step != StepSubmitCode {
		return models.Failed(ReasonOutOfOrder)
	}
	if code == "" {
		return models.Failed(ReasonCodeRequired)
	}

	res := f.m.CheckForgotPasswordCode(ctx, f.state.Email, code)
	if res.OK {
		f.state.Step = StepSetPassword
		f.state.Code = code
	}
	return res
}

// SetNewPassword completes the flow. On success the flow starts over.
func (f *RecoveryFlow) SetNewPassword(ctx context.Context, newPassword, confirmPassword string) models.Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state.Step != StepSetPassword {
		return models.Failed(ReasonOutOfOrder)
	}

	res := f.m.ResetPasswordWithCode(ctx, ResetPasswordInput{
		Email:           f.state.Email,
		Code:            f.state.Code,
		NewPassword:     newPassword,
		ConfirmPassword: confirmPassword,
	})
	if res.OK {
		f.state = RecoveryState{Step: StepRequestCode}
	}
	return res
}

// Back returns to the previous step, keeping the email.
func (f *RecoveryFlow) Back() {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state.Step {
	case StepSetPassword:
		f.state.Step = StepSubmitCode
		f.state.Code = ""
	case StepSubmitCode:
		f.state.Step = StepRequestCode
	}
}

func (f *RecoveryFlow) Restart() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = RecoveryState{Step: StepRequestCode}
}

// VerificationFlow verifies the email address of the signed-in user.
type VerificationFlow struct {
	m Verifier
}

func NewVerificationFlow(m Verifier) *VerificationFlow {
	return &VerificationFlow{m: m}
}

func (f *VerificationFlow) email() (string, bool) {
	s := f.m.Snapshot()
	if s.Identity == nil || s.Identity.Email == "" {
		return "", false
	}
	return s.Identity.Email, true
}

// Send mails a code to the current identity's address.
func (f *VerificationFlow) Send(ctx context.Context) models.Result {
	email, ok := f.email()
	if !ok {
		return models.Failed(ReasonSignInRequired)
	}
	return f.m.SendVerificationCode(ctx, email)
}

// Verify consumes code. The identity is refreshed on success so Verified is
// current.
func (f *VerificationFlow) Verify(ctx context.Context, code string) models.Result {
	email, ok := f.email()
	if !ok {
		return models.Failed(ReasonSignInRequired)
	}
	return f.m.VerifyVerificationCode(ctx, email, strings.TrimSpace(code))
}
