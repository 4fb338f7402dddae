package runtime

import (
	"fmt"

	"github.com/aretw0/onboarding/pkg/domain"
	"github.com/aretw0/onboarding/pkg/validation"
)

// ValidateStep runs every rule of every required field of the step at index.
// Only the error slots of those fields are written or cleared; errors belonging to
// other steps are left untouched. It returns true iff no field of the step has an error.
func (e *Engine) ValidateStep(state *domain.State, index int) (*domain.State, bool) {
	step, ok := e.step(index)
	if !ok {
		return state, false
	}

	next := state.Snapshot()
	failures := validation.Fields(step.Rules, next.Fields, step.Required...)

	valid := true
	for _, name := range step.Required {
		if msg, failed := failures[name]; failed {
			next.FieldErrors[name] = msg
			valid = false
			continue
		}
		delete(next.FieldErrors, name)
	}
	return next, valid
}

// SetField records a value-change event from the form layer.
// A touched field is re-validated immediately, mirroring validate-on-change.
func (e *Engine) SetField(state *domain.State, name, value string) (*domain.State, error) {
	ref, ok := e.fields[name]
	if !ok {
		return state, fmt.Errorf("%w: %s", domain.ErrUnknownField, name)
	}
	if state.Submitting {
		return state, domain.ErrSubmitting
	}

	next := state.Snapshot()
	next.Fields[name] = value
	if next.Touched[name] {
		e.revalidate(next, name, ref)
	}
	return next, nil
}

// Touch records a blur event: the field is marked touched and validated.
func (e *Engine) Touch(state *domain.State, name string) (*domain.State, error) {
	ref, ok := e.fields[name]
	if !ok {
		return state, fmt.Errorf("%w: %s", domain.ErrUnknownField, name)
	}
	if state.Submitting {
		return state, domain.ErrSubmitting
	}

	next := state.Snapshot()
	next.Touched[name] = true
	e.revalidate(next, name, ref)
	return next, nil
}

func (e *Engine) revalidate(state *domain.State, name string, ref fieldRef) {
	if !ref.has {
		return
	}
	if msg := validation.Check(name, ref.rule, state.Fields); msg != "" {
		state.FieldErrors[name] = msg
		return
	}
	delete(state.FieldErrors, name)
}
