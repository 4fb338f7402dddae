package session_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/onboarding/pkg/adapters/memory"
	"github.com/aretw0/onboarding/pkg/domain"
	"github.com/aretw0/onboarding/pkg/ports"
	"github.com/aretw0/onboarding/pkg/session"
	"github.com/aretw0/onboarding/pkg/wizards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowGateway blocks every handler until release is closed.
type slowGateway struct {
	release chan struct{}
	checks  atomic.Int32
}

func (g *slowGateway) CheckIfEmailExists(ctx context.Context, email string) (bool, error) {
	g.checks.Add(1)
	<-g.release
	return false, nil
}

func (g *slowGateway) SendOTP(context.Context, string) (bool, error) { return true, nil }

func (g *slowGateway) VerifyOTP(context.Context, string, string) (bool, error) { return true, nil }

func (g *slowGateway) FinalizeSignup(context.Context, ports.SignupRequest) error { return nil }

func (g *slowGateway) FinalizeReset(context.Context, ports.ResetRequest) error { return nil }

func startAtEmail(t *testing.T, m *session.Manager) string {
	t.Helper()
	ctx := context.Background()
	state, err := m.Start(ctx, wizards.KindSignup)
	require.NoError(t, err)
	id := state.SessionID

	_, err = m.SetField(ctx, id, wizards.FieldFirstName, "Ada")
	require.NoError(t, err)
	state, progress, err := m.Advance(ctx, id)
	require.NoError(t, err)
	require.Equal(t, domain.ProgressAdvanced, progress)
	require.Equal(t, 2, state.Step)

	_, err = m.SetField(ctx, id, wizards.FieldEmail, "a@b.com")
	require.NoError(t, err)
	return id
}

func waitSubmitting(t *testing.T, m *session.Manager, id string) {
	t.Helper()
	require.Eventually(t, func() bool {
		s, err := m.Load(context.Background(), id)
		return err == nil && s.Submitting
	}, time.Second, 5*time.Millisecond)
}

func TestManager_StartUnknownWizard(t *testing.T) {
	m := session.NewManager(memory.NewStore(), memory.NewGateway())
	_, err := m.Start(context.Background(), "checkout")
	assert.ErrorIs(t, err, domain.ErrUnknownWizard)
}

func TestManager_NoDoubleSubmission(t *testing.T) {
	gw := &slowGateway{release: make(chan struct{})}
	m := session.NewManager(memory.NewStore(), gw)
	ctx := context.Background()
	id := startAtEmail(t, m)

	var wg sync.WaitGroup
	wg.Add(1)
	var first domain.Progress
	go func() {
		defer wg.Done()
		_, first, _ = m.Advance(ctx, id)
	}()
	waitSubmitting(t, m, id)

	t.Run("Concurrent advance is ignored", func(t *testing.T) {
		state, progress, err := m.Advance(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.ProgressIgnored, progress)
		assert.Equal(t, 2, state.Step)
	})

	t.Run("Edits and back are refused while submitting", func(t *testing.T) {
		_, err := m.SetField(ctx, id, wizards.FieldEmail, "other@b.com")
		assert.ErrorIs(t, err, domain.ErrSubmitting)
		state, err := m.Back(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 2, state.Step)
	})

	close(gw.release)
	wg.Wait()

	assert.Equal(t, domain.ProgressAdvanced, first)
	assert.Equal(t, int32(1), gw.checks.Load())

	state, err := m.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, state.Step)
	assert.False(t, state.Submitting)
}

func TestManager_ResetDuringSubmissionDiscardsOutcome(t *testing.T) {
	gw := &slowGateway{release: make(chan struct{})}
	m := session.NewManager(memory.NewStore(), gw)
	ctx := context.Background()
	id := startAtEmail(t, m)

	done := make(chan domain.Progress)
	go func() {
		_, progress, _ := m.Advance(ctx, id)
		done <- progress
	}()
	waitSubmitting(t, m, id)

	state, err := m.Reset(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Step)

	close(gw.release)
	assert.Equal(t, domain.ProgressIgnored, <-done)

	state, err = m.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Step)
}

func TestManager_StaleSubmissionIsCleared(t *testing.T) {
	now := time.Now()
	store := memory.NewStore()
	m := session.NewManager(store, memory.NewGateway(),
		session.WithStaleSubmission(time.Minute),
		session.WithClock(func() time.Time { return now }),
	)
	ctx := context.Background()

	state, err := m.Start(ctx, wizards.KindSignup)
	require.NoError(t, err)
	state.Submitting = true
	state.SubmittedAt = now
	require.NoError(t, store.Save(ctx, state.SessionID, state))

	loaded, err := m.Load(ctx, state.SessionID)
	require.NoError(t, err)
	assert.True(t, loaded.Submitting, "fresh submission is kept")

	now = now.Add(2 * time.Minute)
	loaded, err = m.Load(ctx, state.SessionID)
	require.NoError(t, err)
	assert.False(t, loaded.Submitting)
}

// testClock is a settable time source safe for concurrent use.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestManager_SlowHandlerIsNeverClearedAsStale(t *testing.T) {
	clock := &testClock{now: time.Now()}
	gw := &slowGateway{release: make(chan struct{})}
	m := session.NewManager(memory.NewStore(), gw,
		session.WithStaleSubmission(time.Minute),
		session.WithClock(clock.Now),
	)
	ctx := context.Background()
	id := startAtEmail(t, m)

	done := make(chan domain.Progress)
	go func() {
		_, progress, _ := m.Advance(ctx, id)
		done <- progress
	}()
	waitSubmitting(t, m, id)

	clock.Advance(3 * time.Minute)

	state, err := m.Load(ctx, id)
	require.NoError(t, err)
	assert.True(t, state.Submitting, "submission owned by this manager is kept")

	state, progress, err := m.Advance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.ProgressIgnored, progress)
	assert.Equal(t, 2, state.Step)
	assert.Equal(t, int32(1), gw.checks.Load())

	close(gw.release)
	assert.Equal(t, domain.ProgressAdvanced, <-done)
	assert.Equal(t, int32(1), gw.checks.Load())

	state, err = m.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, state.Step)
	assert.False(t, state.Submitting)
}

func TestManager_FullSignup(t *testing.T) {
	ctx := context.Background()
	var code string
	gw := memory.NewGateway(memory.WithCodeSender(ports.CodeSenderFunc(func(_ context.Context, _, c string) error {
		code = c
		return nil
	})))

	var changes atomic.Int32
	m := session.NewManager(memory.NewStore(), gw, session.WithChangeListener(func(context.Context, *domain.State, *domain.State) {
		changes.Add(1)
	}))

	state, err := m.Start(ctx, wizards.KindSignup)
	require.NoError(t, err)
	id := state.SessionID

	steps := []domain.Values{
		{wizards.FieldFirstName: "Ada"},
		{wizards.FieldEmail: "ada@example.com"},
		nil, // otp filled from the inbox
		{wizards.FieldUserID: "ada"},
		{wizards.FieldPassword: "Abc123!@", wizards.FieldConfirmPassword: "Abc123!@"},
	}
	for i, values := range steps {
		if i == 2 {
			values = domain.Values{wizards.FieldOTP: code}
		}
		for k, v := range values {
			_, err := m.SetField(ctx, id, k, v)
			require.NoError(t, err)
		}
		_, progress, err := m.Advance(ctx, id)
		require.NoError(t, err)
		require.NotEqual(t, domain.ProgressRejected, progress, "step %d", i+1)
	}

	view, err := m.View(ctx, id)
	require.NoError(t, err)
	assert.True(t, view.Completed)
	assert.Positive(t, changes.Load())

	exists, _ := gw.CheckIfEmailExists(ctx, "ada@example.com")
	assert.True(t, exists)
}

func TestManager_Delete(t *testing.T) {
	ctx := context.Background()
	m := session.NewManager(memory.NewStore(), memory.NewGateway())

	state, err := m.Start(ctx, wizards.KindForgotPassword)
	require.NoError(t, err)

	ids, err := m.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, state.SessionID)

	require.NoError(t, m.Delete(ctx, state.SessionID))
	_, err = m.Load(ctx, state.SessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	assert.NoError(t, m.Delete(ctx, "missing"), "deleting twice is harmless")
}

// countingLocker records lock usage.
type countingLocker struct {
	locks, unlocks atomic.Int32
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.locks.Add(1)
	return func(context.Context) error {
		l.unlocks.Add(1)
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &countingLocker{}
	m := session.NewManager(memory.NewStore(), memory.NewGateway(), session.WithLocker(locker))
	ctx := context.Background()

	state, err := m.Start(ctx, wizards.KindSignup)
	require.NoError(t, err)
	_, err = m.Touch(ctx, state.SessionID, wizards.FieldFirstName)
	require.NoError(t, err)

	assert.Equal(t, int32(2), locker.locks.Load())
	assert.Equal(t, locker.locks.Load(), locker.unlocks.Load())
}
