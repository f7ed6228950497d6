package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/dmitrijs2005/gophtodo/internal/client/session"
	"github.com/dmitrijs2005/gophtodo/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// ErrFailed marks a command whose action was refused; the reason has
// already been shown to the user.
var ErrFailed = errors.New("command failed")

// ErrNotSignedIn is returned by commands that need a session.
var ErrNotSignedIn = errors.New("not signed in")

func (a *App) report(res models.Result, success string) error {
	if !res.OK {
		a.println(res.Reason)
		return fmt.Errorf("%w: %s", ErrFailed, res.Reason)
	}
	if success != "" {
		a.println(success)
	}
	return nil
}

func (a *App) requireLogin() error {
	if !a.isLoggedIn() {
		a.println("You must be signed in. Type 'signin' first.")
		return ErrNotSignedIn
	}
	return nil
}

func (a *App) ask(prompt string) (string, error) {
	return getSimpleText(a.reader, prompt, a.out)
}

// askPassword reads a password. The raw bytes are wiped once copied.
func (a *App) askPassword(prompt string) (string, error) {
	pw, err := getPassword(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// Signup prompts for the registration fields. It does not sign in.
func (a *App) Signup(ctx context.Context) error {
	name, err := a.ask("Enter name")
	if err != nil {
		return err
	}
	email, err := a.ask("Enter email")
	if err != nil {
		return err
	}
	password, err := a.askPassword("Enter password")
	if err != nil {
		return err
	}
	confirm, err := a.askPassword("Confirm password")
	if err != nil {
		return err
	}

	res := a.session.Signup(ctx, session.SignupInput{
		Name:            name,
		Email:           email,
		Password:        password,
		ConfirmPassword: confirm,
	})
	return a.report(res, "SignUp successful. Please signin.")
}

// Signin authenticates and, for the server-backed list, loads the todos.
func (a *App) Signin(ctx context.Context) error {
	email, err := a.ask("Enter email")
	if err != nil {
		return err
	}
	password, err := a.askPassword("Enter password")
	if err != nil {
		return err
	}

	res := a.session.Signin(ctx, email, password)
	if err := a.report(res, "SignIn successful"); err != nil {
		return err
	}
	if !res.Verified {
		a.println("Your email is not verified yet. Type 'verify' to verify it.")
	}

	if a.remoteList {
		if err := a.todos.Load(ctx); err != nil {
			a.println("Could not load todos:", err)
		}
	}
	return nil
}

// Signout ends the session. A refused signout keeps everything as it was.
func (a *App) Signout(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if err := a.report(a.session.Signout(ctx), "SignOut successful."); err != nil {
		return err
	}
	if a.remoteList {
		a.todos.Reset()
	}
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	id := a.session.Snapshot().Identity
	if id == nil {
		a.println("Not signed in.")
		return nil
	}
	status := "not verified"
	if id.Verified {
		status = "verified"
	}
	a.println(fmt.Sprintf("%s <%s> (%s)", id.Name, id.Email, status))
	return nil
}

// Verify sends a code to the current address and asks for it.
func (a *App) Verify(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if id := a.session.Snapshot().Identity; id != nil && id.Verified {
		a.println("Your email is already verified.")
		return nil
	}

	if err := a.report(a.verify.Send(ctx), "Verification code sent successfully."); err != nil {
		return err
	}
	code, err := a.ask("Enter verification code")
	if err != nil {
		return err
	}
	return a.report(a.verify.Verify(ctx, code), "Verification successful.")
}

func (a *App) ChangePassword(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	oldPassword, err := a.askPassword("Enter current password")
	if err != nil {
		return err
	}
	newPassword, err := a.askPassword("Enter new password")
	if err != nil {
		return err
	}
	return a.report(a.session.ChangePassword(ctx, oldPassword, newPassword), "Password changed successfully.")
}

// Forgot walks through the recovery steps, resuming where a previous attempt
// stopped unless restart is set.
func (a *App) Forgot(ctx context.Context, restart bool) error {
	if restart {
		a.recovery.Restart()
	}

	for {
		switch a.recovery.State().Step {
		case session.StepRequestCode:
			email, err := a.ask("Enter email")
			if err != nil {
				return err
			}
			if err := a.report(a.recovery.RequestCode(ctx, email), "Forgot password code sent successfully."); err != nil {
				return err
			}

		case session.StepSubmitCode:
			code, err := a.ask("Enter the code sent to " + a.recovery.State().Email)
			if err != nil {
				return err
			}
			if err := a.report(a.recovery.SubmitCode(ctx, code), ""); err != nil {
				return err
			}

		case session.StepSetPassword:
			newPassword, err := a.askPassword("Enter new password")
			if err != nil {
				return err
			}
			confirm, err := a.askPassword("Confirm new password")
			if err != nil {
				return err
			}
			return a.report(a.recovery.SetNewPassword(ctx, newPassword, confirm), "Password changed successfully.")

		default:
			return nil
		}
	}
}
