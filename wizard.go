package onboarding

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/onboarding/internal/logging"
	"github.com/aretw0/onboarding/internal/runtime"
	"github.com/aretw0/onboarding/pkg/domain"
	"github.com/aretw0/onboarding/pkg/ports"
	"github.com/aretw0/onboarding/pkg/wizards"
	"github.com/google/uuid"
)

// Wizard is a stateful wizard instance. It is safe for concurrent use: the state
// is guarded by a mutex that is never held while a step handler runs.
type Wizard struct {
	engine *runtime.Engine

	mu    sync.Mutex
	state *domain.State
}

// Option defines a functional option for configuring a Wizard.
type Option func(*config)

type config struct {
	sessionID  string
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	wizardOpts wizards.Options
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithSessionID sets the identifier reported in hooks and logs (default: random UUID).
func WithSessionID(id string) Option {
	return func(c *config) {
		c.sessionID = id
	}
}

// WithResetCodeDispatch makes the ForgotPassword email step send the reset code.
func WithResetCodeDispatch(enabled bool) Option {
	return func(c *config) {
		c.wizardOpts.ResetCodeDispatch = enabled
	}
}

// New creates a wizard of a registered kind bound to gw.
func New(kind string, gw ports.Gateway, opts ...Option) (*Wizard, error) {
	cfg := config{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	steps, err := wizards.Steps(kind, gw, cfg.wizardOpts)
	if err != nil {
		return nil, err
	}
	return newWizard(kind, steps, cfg), nil
}

// NewSignup creates the five step Signup wizard.
func NewSignup(gw ports.Gateway, opts ...Option) *Wizard {
	w, _ := New(wizards.KindSignup, gw, opts...)
	return w
}

// NewForgotPassword creates the three step ForgotPassword wizard.
func NewForgotPassword(gw ports.Gateway, opts ...Option) *Wizard {
	w, _ := New(wizards.KindForgotPassword, gw, opts...)
	return w
}

// NewWizard creates a wizard from custom steps.
func NewWizard(name string, steps []domain.Step, opts ...Option) *Wizard {
	cfg := config{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return newWizard(name, steps, cfg)
}

func newWizard(name string, steps []domain.Step, cfg config) *Wizard {
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}
	if cfg.sessionID == "" {
		cfg.sessionID = uuid.NewString()
	}
	engine := runtime.NewEngine(name, steps,
		runtime.WithLifecycleHooks(cfg.hooks),
		runtime.WithLogger(cfg.logger),
	)
	return &Wizard{
		engine: engine,
		state:  engine.Start(context.Background(), cfg.sessionID),
	}
}

// Name returns the wizard kind.
func (w *Wizard) Name() string {
	return w.engine.Name()
}

// Steps returns the step specifications.
func (w *Wizard) Steps() []domain.Step {
	return w.engine.Steps()
}

// TotalSteps returns the number of steps; CurrentStep() == TotalSteps()+1 once completed.
func (w *Wizard) TotalSteps() int {
	return w.engine.TotalSteps()
}

// CurrentStep returns the 1-based step position.
func (w *Wizard) CurrentStep() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Step
}

// IsSubmitting reports whether a step handler is in flight.
func (w *Wizard) IsSubmitting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Submitting
}

// Completed reports whether the terminal state was reached.
func (w *Wizard) Completed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.engine.Completed(w.state)
}

// FieldErrors returns a copy of the active field errors.
func (w *Wizard) FieldErrors() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return runtime.FieldErrors(w.state)
}

// Value returns the current value of a field.
func (w *Wizard) Value(name string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Fields[name]
}

// State returns a snapshot of the whole state.
func (w *Wizard) State() *domain.State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Snapshot()
}

// View renders the active step.
func (w *Wizard) View() domain.View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.engine.View(w.state)
}

// SetField records a value change. It fails with domain.ErrSubmitting while a
// handler is in flight and with domain.ErrUnknownField for foreign fields.
func (w *Wizard) SetField(name, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	next, err := w.engine.SetField(w.state, name, value)
	if err != nil {
		return err
	}
	w.state = next
	return nil
}

// Touch records a blur event on a field, validating it.
func (w *Wizard) Touch(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	next, err := w.engine.Touch(w.state, name)
	if err != nil {
		return err
	}
	w.state = next
	return nil
}

// ValidateStep validates the step at index, updating the errors of its fields.
func (w *Wizard) ValidateStep(index int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	next, ok := w.engine.ValidateStep(w.state, index)
	w.state = next
	return ok
}

// Advance validates the current step, runs its handler and moves forward on success.
// The returned Progress tells what happened; ProgressIgnored means another
// Advance is still running.
func (w *Wizard) Advance(ctx context.Context) domain.Progress {
	w.mu.Lock()
	next, progress, sub := w.engine.Submit(ctx, w.state)
	w.state = next
	w.mu.Unlock()

	if sub == nil {
		return progress
	}

	outcome := w.engine.RunHandler(ctx, sub)

	w.mu.Lock()
	defer w.mu.Unlock()
	next, progress = w.engine.Apply(ctx, w.state, sub, outcome)
	w.state = next
	return progress
}

// Back moves to the previous step. It is a no-op on the first step, after
// completion and while submitting.
func (w *Wizard) Back(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = w.engine.Back(ctx, w.state)
}

// Reset returns to the first step and clears errors. An in-flight handler
// outcome is discarded when it arrives.
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = w.engine.Reset(w.state)
}
