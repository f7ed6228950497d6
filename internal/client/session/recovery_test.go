package session

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoveryFlow_HappyPath(t *testing.T) {
	ctx := context.Background()
	api := newFakeAuth().on("validate", authenticated(ann))
	m, _ := newTestManager(t, api)
	f := NewRecoveryFlow(m)

	require.True(t, f.RequestCode(ctx, " ann@example.com ").OK)
	assert.Equal(t, RecoveryState{Step: StepSubmitCode, Email: "ann@example.com"}, f.State())

	require.True(t, f.SubmitCode(ctx, "123456").OK)
	assert.Equal(t, "ann@example.com", api.email)
	assert.Equal(t, RecoveryState{Step: StepSetPassword, Email: "ann@example.com", Code: "123456"}, f.State())

	require.True(t, f.SetNewPassword(ctx, "n3w", "n3w").OK)
	assert.Equal(t, "123456", api.reset.Code)
	assert.Equal(t, RecoveryState{Step: StepRequestCode}, f.State())
}

func TestRecoveryFlow_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("empty email", func(t *testing.T) {
		api := newFakeAuth()
		f := NewRecoveryFlow(New(api, nil))

		assert.Equal(t, models.Failed(ReasonEmailRequired), f.RequestCode(ctx, "  "))
		assert.Zero(t, api.total())
	})

	t.Run("out of order", func(t *testing.T) {
		api := newFakeAuth()
		f := NewRecoveryFlow(New(api, nil))

		assert.Equal(t, models.Failed(ReasonOutOfOrder), f.SubmitCode(ctx, "1"))
		assert.Equal(t, models.Failed(ReasonOutOfOrder), f.SetNewPassword(ctx, "a", "a"))
		assert.Zero(t, api.total())
	})

	t.Run("wrong code stays on step", func(t *testing.T) {
		api := newFakeAuth().on("check_forgot", reply(&models.AuthResponse{Message: "Invalid code"}, nil))
		f := NewRecoveryFlow(New(api, nil))
		require.True(t, f.RequestCode(ctx, "ann@example.com").OK)

		assert.Equal(t, models.Failed("Invalid code"), f.SubmitCode(ctx, "0"))
		assert.Equal(t, StepSubmitCode, f.State().Step)
	})

	t.Run("mismatch stays on step", func(t *testing.T) {
		api := newFakeAuth()
		f := NewRecoveryFlow(New(api, nil))
		require.True(t, f.RequestCode(ctx, "ann@example.com").OK)
		require.True(t, f.SubmitCode(ctx, "1").OK)

		assert.Equal(t, models.Failed(ReasonPasswordMismatch), f.SetNewPassword(ctx, "a", "b"))
		assert.Equal(t, StepSetPassword, f.State().Step)
		assert.Equal(t, 0, api.count("reset"))
	})
}

func TestRecoveryFlow_BackAndRestart(t *testing.T) {
	ctx := context.Background()
	f := NewRecoveryFlow(New(newFakeAuth(), nil))

	require.True(t, f.RequestCode(ctx, "ann@example.com").OK)
	require.True(t, f.SubmitCode(ctx, "1").OK)

	f.Back()
	assert.Equal(t, RecoveryState{Step: StepSubmitCode, Email: "ann@example.com"}, f.State())
	f.Back()
	assert.Equal(t, StepRequestCode, f.State().Step)
	f.Back()
	assert.Equal(t, StepRequestCode, f.State().Step)

	require.True(t, f.RequestCode(ctx, "bob@example.com").OK)
	f.Restart()
	assert.Equal(t, RecoveryState{Step: StepRequestCode}, f.State())
}

func TestVerificationFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("requires identity", func(t *testing.T) {
		api := newFakeAuth()
		m, _ := newTestManager(t, api)
		m.Start(ctx)
		f := NewVerificationFlow(m)

		assert.Equal(t, models.Failed(ReasonSignInRequired), f.Send(ctx))
		assert.Equal(t, models.Failed(ReasonSignInRequired), f.Verify(ctx, "1"))
		assert.Equal(t, 1, api.total())
	})

	t.Run("uses identity email", func(t *testing.T) {
		unverified := &models.Identity{ID: "u1", Email: "ann@example.com"}
		api := newFakeAuth().on("validate", authenticated(unverified))
		m, _ := newTestManager(t, api)
		m.Start(ctx)
		f := NewVerificationFlow(m)

		require.True(t, f.Send(ctx).OK)
		assert.Equal(t, "ann@example.com", api.email)

		api.on("validate", authenticated(ann))
		res := f.Verify(ctx, " 654321 ")
		assert.True(t, res.OK)
		assert.True(t, res.Verified)
		assert.Equal(t, "654321", api.code)
		assert.True(t, m.Snapshot().Identity.Verified)
	})
}
