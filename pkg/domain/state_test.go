package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_SnapshotIsolation(t *testing.T) {
	s := NewState("s1", "signup")
	s.Fields["email"] = "a@b.com"
	s.FieldErrors["email"] = "Email already exists"
	s.Touched["email"] = true

	snap := s.Snapshot()
	snap.Fields["email"] = "changed@b.com"
	delete(snap.FieldErrors, "email")
	snap.Touched["otp"] = true

	assert.Equal(t, "a@b.com", s.Fields["email"])
	assert.Equal(t, "Email already exists", s.FieldErrors["email"])
	assert.False(t, s.Touched["otp"])
}

func TestValues_Bool(t *testing.T) {
	v := Values{"isShowPassword": "true", "other": "yes"}
	assert.True(t, v.Bool("isShowPassword"))
	assert.False(t, v.Bool("other"))
	assert.False(t, v.Bool("missing"))
}

func TestMergeHooks(t *testing.T) {
	var calls []string
	a := LifecycleHooks{OnStepEnter: func(context.Context, *StepEvent) { calls = append(calls, "a") }}
	b := LifecycleHooks{
		OnStepEnter: func(context.Context, *StepEvent) { calls = append(calls, "b") },
		OnComplete:  func(context.Context, *StepEvent) { calls = append(calls, "done") },
	}

	merged := MergeHooks(a, LifecycleHooks{}, b)
	merged.OnStepEnter(context.Background(), &StepEvent{})
	merged.OnComplete(context.Background(), &StepEvent{})

	assert.Equal(t, []string{"a", "b", "done"}, calls)
	assert.Nil(t, merged.OnHandlerCall)
}
