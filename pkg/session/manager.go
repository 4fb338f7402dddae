package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/onboarding/internal/logging"
	"github.com/aretw0/onboarding/internal/runtime"
	"github.com/aretw0/onboarding/pkg/domain"
	"github.com/aretw0/onboarding/pkg/ports"
	"github.com/aretw0/onboarding/pkg/wizards"
	"github.com/google/uuid"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// ChangeFunc is notified after a session state was saved.
// old is nil for a new session; next is the reset state on deletion.
type ChangeFunc func(ctx context.Context, old, next *domain.State)

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.StateStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger

	registry   *wizards.Registry
	wizardOpts wizards.Options
	hooks      domain.LifecycleHooks
	engines    map[string]*runtime.Engine

	staleAfter time.Duration
	now        func() time.Time
	onChange   []ChangeFunc

	inflightMu sync.Mutex
	inflight   map[string]time.Time // session ID -> StartedAt of handlers run here
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager and its engines.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithStaleSubmission sets how long a submission may stay in flight before the
// next load clears it. Zero disables the check.
func WithStaleSubmission(d time.Duration) Option {
	return func(m *Manager) {
		m.staleAfter = d
	}
}

// WithLifecycleHooks registers observability hooks on every engine.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// WithRegistry replaces the built-in wizard registry.
func WithRegistry(r *wizards.Registry) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// WithWizardOptions passes deployment switches to the wizard builders.
func WithWizardOptions(opts wizards.Options) Option {
	return func(m *Manager) {
		m.wizardOpts = opts
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithChangeListener registers a callback run after every saved mutation.
func WithChangeListener(fn ChangeFunc) Option {
	return func(m *Manager) {
		if fn != nil {
			m.onChange = append(m.onChange, fn)
		}
	}
}

// NewManager creates a Session Manager serving every registered wizard kind
// against gw, persisting to store.
func NewManager(store ports.StateStore, gw ports.Gateway, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		locks:      make(map[string]*lockEntry),
		lockTTL:    30 * time.Second,
		logger:     logging.NewNop(),
		registry:   wizards.Default(),
		engines:    make(map[string]*runtime.Engine),
		inflight:   make(map[string]time.Time),
		staleAfter: 2 * time.Minute,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	for _, kind := range m.registry.Kinds() {
		steps, err := m.registry.Build(kind, gw, m.wizardOpts)
		if err != nil {
			continue
		}
		m.engines[kind] = runtime.NewEngine(kind, steps,
			runtime.WithLifecycleHooks(m.hooks),
			runtime.WithLogger(m.logger),
			runtime.WithClock(m.now),
		)
	}
	return m
}

// Kinds lists the wizard kinds this manager can start.
func (m *Manager) Kinds() []string {
	return m.registry.Kinds()
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (m *Manager) engine(kind string) (*runtime.Engine, error) {
	e, ok := m.engines[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownWizard, kind)
	}
	return e, nil
}

// Start creates a new session of the given wizard kind.
func (m *Manager) Start(ctx context.Context, kind string) (*domain.State, error) {
	engine, err := m.engine(kind)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	var state *domain.State
	err = m.WithLock(ctx, id, func(ctx context.Context) error {
		state = engine.Start(ctx, id)
		if err := m.store.Save(ctx, id, state); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.InfoContext(ctx, "session started", "session_id", id, "wizard", kind)
	m.notify(ctx, nil, state)
	return state, nil
}

// Load retrieves an existing session, clearing a stale submission if needed.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	var state *domain.State
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, _, err = m.load(ctx, sessionID)
		return err
	})
	return state, err
}

// load must be called with the session lock held.
func (m *Manager) load(ctx context.Context, sessionID string) (*domain.State, *runtime.Engine, error) {
	state, err := m.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to load session: %w", err)
	}
	engine, err := m.engine(state.Wizard)
	if err != nil {
		return nil, nil, err
	}

	if m.staleAfter > 0 && state.Submitting && m.now().Sub(state.SubmittedAt) > m.staleAfter &&
		!m.running(sessionID, state.SubmittedAt) {
		m.logger.WarnContext(ctx, "clearing stale submission",
			"session_id", sessionID,
			"step", state.Step,
			"since", state.SubmittedAt,
		)
		old := state
		state = state.Snapshot()
		state.Submitting = false
		state.SubmittedAt = time.Time{}
		if err := m.store.Save(ctx, sessionID, state); err != nil {
			return nil, nil, fmt.Errorf("failed to save session: %w", err)
		}
		m.notify(ctx, old, state)
	}
	return state, engine, nil
}

// View renders the active step of a session.
func (m *Manager) View(ctx context.Context, sessionID string) (domain.View, error) {
	state, err := m.Load(ctx, sessionID)
	if err != nil {
		return domain.View{}, err
	}
	return m.Render(state)
}

// Render renders a state already in hand.
func (m *Manager) Render(state *domain.State) (domain.View, error) {
	engine, err := m.engine(state.Wizard)
	if err != nil {
		return domain.View{}, err
	}
	return engine.View(state), nil
}

// mutate loads, transforms and saves a session under its lock.
func (m *Manager) mutate(ctx context.Context, sessionID string, fn func(*runtime.Engine, *domain.State) (*domain.State, error)) (*domain.State, error) {
	var old, next *domain.State
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		state, engine, err := m.load(ctx, sessionID)
		if err != nil {
			return err
		}
		old = state
		next, err = fn(engine, state)
		if err != nil {
			return err
		}
		if next == state {
			return nil
		}
		if err := m.store.Save(ctx, sessionID, next); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if next != old {
		m.notify(ctx, old, next)
	}
	return next, nil
}

// SetField records a value change.
func (m *Manager) SetField(ctx context.Context, sessionID, name, value string) (*domain.State, error) {
	return m.mutate(ctx, sessionID, func(e *runtime.Engine, s *domain.State) (*domain.State, error) {
		return e.SetField(s, name, value)
	})
}

// Touch records a blur event.
func (m *Manager) Touch(ctx context.Context, sessionID, name string) (*domain.State, error) {
	return m.mutate(ctx, sessionID, func(e *runtime.Engine, s *domain.State) (*domain.State, error) {
		return e.Touch(s, name)
	})
}

// Back moves a session to its previous step.
func (m *Manager) Back(ctx context.Context, sessionID string) (*domain.State, error) {
	return m.mutate(ctx, sessionID, func(e *runtime.Engine, s *domain.State) (*domain.State, error) {
		return e.Back(ctx, s), nil
	})
}

// Reset returns a session to its first step, abandoning any in-flight submission.
func (m *Manager) Reset(ctx context.Context, sessionID string) (*domain.State, error) {
	return m.mutate(ctx, sessionID, func(e *runtime.Engine, s *domain.State) (*domain.State, error) {
		return e.Reset(s), nil
	})
}

// Advance validates the current step and, when it has a handler, runs it
// without holding the session lock.
func (m *Manager) Advance(ctx context.Context, sessionID string) (*domain.State, domain.Progress, error) {
	var (
		engine   *runtime.Engine
		sub      *domain.Submission
		progress domain.Progress
	)
	state, err := m.mutate(ctx, sessionID, func(e *runtime.Engine, s *domain.State) (*domain.State, error) {
		engine = e
		var next *domain.State
		next, progress, sub = e.Submit(ctx, s)
		if sub != nil {
			m.track(sub)
		}
		return next, nil
	})
	if sub != nil {
		defer m.finish(sub)
	}
	if err != nil || sub == nil {
		return state, progress, err
	}

	outcome := engine.RunHandler(ctx, sub)

	state, err = m.mutate(ctx, sessionID, func(e *runtime.Engine, s *domain.State) (*domain.State, error) {
		var next *domain.State
		next, progress = e.Apply(ctx, s, sub, outcome)
		return next, nil
	})
	if errors.Is(err, domain.ErrSessionNotFound) {
		m.logger.InfoContext(ctx, "session deleted while handler was running", "session_id", sessionID)
	}
	return state, progress, err
}

// track records a submission whose handler runs in this process. It is
// called under the session lock, before the submitting state is saved.
func (m *Manager) track(sub *domain.Submission) {
	m.inflightMu.Lock()
	defer m.inflightMu.Unlock()
	m.inflight[sub.SessionID] = sub.StartedAt
}

// finish forgets sub unless a newer submission of the session replaced it.
func (m *Manager) finish(sub *domain.Submission) {
	m.inflightMu.Lock()
	defer m.inflightMu.Unlock()
	if started, ok := m.inflight[sub.SessionID]; ok && started.Equal(sub.StartedAt) {
		delete(m.inflight, sub.SessionID)
	}
}

// running reports whether the submission started at startedAt is still
// being handled by this manager. Only submissions without a local owner
// may be cleared as stale.
func (m *Manager) running(sessionID string, startedAt time.Time) bool {
	m.inflightMu.Lock()
	defer m.inflightMu.Unlock()
	started, ok := m.inflight[sessionID]
	return ok && started.Equal(startedAt)
}

// Delete tears a session down: it is reset, then removed from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	var old, reset *domain.State
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		state, err := m.store.Load(ctx, sessionID)
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to load session: %w", err)
		}
		if state != nil {
			if engine, err := m.engine(state.Wizard); err == nil {
				old, reset = state, engine.Reset(state)
			}
		}
		return m.store.Delete(ctx, sessionID)
	})
	if err != nil {
		return err
	}
	if reset != nil {
		m.notify(ctx, old, reset)
	}
	return nil
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

func (m *Manager) notify(ctx context.Context, old, next *domain.State) {
	for _, fn := range m.onChange {
		fn(ctx, old, next)
	}
}
