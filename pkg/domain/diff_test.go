package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	t.Run("Initial Load (Old is Nil)", func(t *testing.T) {
		s := NewState("sess-1", "signup")
		s.FieldErrors["email"] = "Invalid email"

		diff := Diff(nil, s)
		require.NotNil(t, diff)
		assert.Equal(t, "sess-1", diff.SessionID)
		require.NotNil(t, diff.Step)
		assert.Equal(t, 1, *diff.Step)
		require.NotNil(t, diff.Submitting)
		assert.False(t, *diff.Submitting)
		require.Contains(t, diff.FieldErrors, "email")
		assert.Equal(t, "Invalid email", *diff.FieldErrors["email"])
	})

	t.Run("No Changes", func(t *testing.T) {
		s := NewState("sess-1", "signup")
		assert.Nil(t, Diff(s, s.Snapshot()))
	})

	t.Run("Step Change", func(t *testing.T) {
		old := NewState("sess-1", "signup")
		next := old.Snapshot()
		next.Step = 2

		diff := Diff(old, next)
		require.NotNil(t, diff)
		require.NotNil(t, diff.Step)
		assert.Equal(t, 2, *diff.Step)
		assert.Nil(t, diff.Submitting)
		assert.Nil(t, diff.FieldErrors)
	})

	t.Run("Error Added, Changed and Cleared", func(t *testing.T) {
		old := NewState("sess-1", "signup")
		old.FieldErrors["email"] = "Invalid email"
		old.FieldErrors["firstName"] = "First name is required"

		next := old.Snapshot()
		next.FieldErrors["email"] = "Email already exists"
		delete(next.FieldErrors, "firstName")
		next.FieldErrors["otp"] = "OTP is required"

		diff := Diff(old, next)
		require.NotNil(t, diff)
		assert.Equal(t, "Email already exists", *diff.FieldErrors["email"])
		assert.Equal(t, "OTP is required", *diff.FieldErrors["otp"])
		v, ok := diff.FieldErrors["firstName"]
		assert.True(t, ok)
		assert.Nil(t, v)
	})

	t.Run("Touched Appended", func(t *testing.T) {
		old := NewState("sess-1", "signup")
		old.Touched["firstName"] = true
		next := old.Snapshot()
		next.Touched["lastName"] = true

		diff := Diff(old, next)
		require.NotNil(t, diff)
		assert.Equal(t, []string{"lastName"}, diff.Touched)
	})
}

func TestDiffJSONSerialization(t *testing.T) {
	t.Run("Field Values Never Leak", func(t *testing.T) {
		old := NewState("sess-1", "signup")
		next := old.Snapshot()
		next.Fields["password"] = "Abc123!@"
		next.Step = 5

		bytes, err := json.Marshal(Diff(old, next))
		require.NoError(t, err)
		assert.NotContains(t, string(bytes), "Abc123!@")
	})

	t.Run("Cleared Errors as Null", func(t *testing.T) {
		old := NewState("sess-1", "signup")
		old.FieldErrors["email"] = "Invalid email"
		next := old.Snapshot()
		delete(next.FieldErrors, "email")

		bytes, err := json.Marshal(Diff(old, next))
		require.NoError(t, err)
		if !strings.Contains(string(bytes), `"email":null`) {
			t.Errorf("JSON should contain 'email':null for a cleared error, got: %s", string(bytes))
		}
	})
}
