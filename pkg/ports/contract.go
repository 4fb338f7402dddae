package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/onboarding/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID, "signup")
		state.Step = 2
		state.Fields["email"] = "ada@example.com"
		state.FieldErrors["otp"] = "Invalid OTP"
		state.Touched["otp"] = true

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, 2, loaded.Step)
		assert.Equal(t, "signup", loaded.Wizard)
		assert.Equal(t, "ada@example.com", loaded.Fields["email"])
		assert.Equal(t, "Invalid OTP", loaded.FieldErrors["otp"])
		assert.True(t, loaded.Touched["otp"])
	})

	t.Run("Saved state is isolated from later mutation", func(t *testing.T) {
		state := domain.NewState(sessionID, "signup")
		require.NoError(t, store.Save(ctx, sessionID, state))
		state.Fields["email"] = "changed"

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Empty(t, loaded.Fields["email"])
	})

	t.Run("Submission marker survives", func(t *testing.T) {
		state := domain.NewState(sessionID, "signup")
		state.Submitting = true
		state.SubmittedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		require.NoError(t, store.Save(ctx, sessionID, state))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.True(t, loaded.Submitting)
		assert.True(t, state.SubmittedAt.Equal(loaded.SubmittedAt))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewState(sessionID, "signup"))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1, "signup"))
		_ = store.Save(ctx, id2, domain.NewState(id2, "forgot_password"))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
