package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/onboarding/internal/logging"
	"github.com/aretw0/onboarding/pkg/domain"
)

// Engine is the core wizard state machine.
// It is stateless: every operation takes a state and returns the next one, so a
// single Engine serves any number of sessions of the same wizard.
type Engine struct {
	name   string
	steps  []domain.Step
	fields map[string]fieldRef
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
}

// fieldRef locates a field inside the step list.
type fieldRef struct {
	step int // 1-based
	rule domain.Rule
	has  bool
}

// EngineOption defines a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source (used for submission timestamps).
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an engine for the wizard named name with the given ordered steps.
func NewEngine(name string, steps []domain.Step, opts ...EngineOption) *Engine {
	e := &Engine{
		name:   name,
		steps:  steps,
		fields: make(map[string]fieldRef),
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("wizard", name)

	for i, step := range steps {
		for _, f := range step.Fields {
			rule, has := step.Rules[f.Name]
			e.fields[f.Name] = fieldRef{step: i + 1, rule: rule, has: has}
		}
		for _, name := range step.Required {
			if _, ok := e.fields[name]; !ok {
				rule, has := step.Rules[name]
				e.fields[name] = fieldRef{step: i + 1, rule: rule, has: has}
			}
		}
	}
	return e
}

// Name returns the wizard kind this engine drives.
func (e *Engine) Name() string {
	return e.name
}

// Steps returns the step specifications in order.
func (e *Engine) Steps() []domain.Step {
	return e.steps
}

// TotalSteps returns N. Position N+1 denotes completion.
func (e *Engine) TotalSteps() int {
	return len(e.steps)
}

// Start creates the initial state for a session and triggers lifecycle hooks.
func (e *Engine) Start(ctx context.Context, sessionID string) *domain.State {
	state := domain.NewState(sessionID, e.name)
	e.emitStepEnter(ctx, state)
	return state
}

// Completed reports whether the state is in the terminal position.
func (e *Engine) Completed(state *domain.State) bool {
	return state.Step > len(e.steps)
}

// step returns the specification at the 1-based index.
func (e *Engine) step(index int) (domain.Step, bool) {
	if index < 1 || index > len(e.steps) {
		return domain.Step{}, false
	}
	return e.steps[index-1], true
}
