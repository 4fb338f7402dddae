package wizards

import (
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/onboarding/pkg/domain"
	"github.com/aretw0/onboarding/pkg/ports"
)

// Options carries per-deployment switches understood by the builders.
type Options struct {
	// ResetCodeDispatch enables sending the reset code from the ForgotPassword email step.
	ResetCodeDispatch bool
}

// Builder produces the steps of a wizard bound to a gateway.
type Builder func(gw ports.Gateway, opts Options) []domain.Step

// Registry maps wizard kinds to their builders.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]Builder),
	}
}

// Register adds a builder to the registry.
// If a builder with the same kind exists, it is overwritten.
func (r *Registry) Register(kind string, b Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[kind] = b
}

// Build looks up a wizard by kind and builds its steps.
func (r *Registry) Build(kind string, gw ports.Gateway, opts Options) ([]domain.Step, error) {
	r.mu.RLock()
	b, ok := r.builders[kind]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownWizard, kind)
	}
	return b(gw, opts), nil
}

// Kinds returns the registered kinds in lexical order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.builders))
	for k := range r.builders {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

var defaultRegistry = func() *Registry {
	r := NewRegistry()
	r.Register(KindSignup, func(gw ports.Gateway, _ Options) []domain.Step {
		return Signup(gw)
	})
	r.Register(KindForgotPassword, func(gw ports.Gateway, opts Options) []domain.Step {
		return ForgotPassword(gw, WithResetCodeDispatch(opts.ResetCodeDispatch))
	})
	return r
}()

// Default returns the registry holding the built-in wizards.
func Default() *Registry {
	return defaultRegistry
}

// Steps builds a built-in wizard by kind.
func Steps(kind string, gw ports.Gateway, opts Options) ([]domain.Step, error) {
	return defaultRegistry.Build(kind, gw, opts)
}

// Kinds lists the built-in wizard kinds.
func Kinds() []string {
	return defaultRegistry.Kinds()
}
