package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/onboarding/pkg/adapters/memory"
	"github.com/aretw0/onboarding/pkg/wizards"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore(), memory.NewGateway())
	ctx := context.Background()
	count := 2000

	for i := 0; i < count; i++ {
		state, err := mgr.Start(ctx, wizards.KindSignup)
		if err != nil {
			t.Fatalf("start %d: %v", i, err)
		}
		_, _ = mgr.SetField(ctx, state.SessionID, wizards.FieldFirstName, fmt.Sprint(i))
		_ = mgr.Delete(ctx, state.SessionID)
	}

	if lockCount := len(mgr.locks); lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
}
