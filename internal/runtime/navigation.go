package runtime

import (
	"context"
	"maps"
	"time"

	"github.com/aretw0/onboarding/pkg/domain"
)

// Advance validates the current step, runs its handler (if any) and applies the
// outcome. It is the single-owner composition of Submit, RunHandler and Apply.
func (e *Engine) Advance(ctx context.Context, state *domain.State) (*domain.State, domain.Progress) {
	next, progress, sub := e.Submit(ctx, state)
	if sub == nil {
		return next, progress
	}
	outcome := e.RunHandler(ctx, sub)
	return e.Apply(ctx, next, sub, outcome)
}

// Submit is the first phase of advancing.
//
// Terminal and in-flight states are left unchanged. An invalid step gets its
// field errors written. A valid step without handler moves forward at once. A
// valid step with a handler is marked as submitting and a Submission is returned;
// the caller must run it with RunHandler and feed the outcome to Apply.
func (e *Engine) Submit(ctx context.Context, state *domain.State) (*domain.State, domain.Progress, *domain.Submission) {
	if e.Completed(state) {
		return state, domain.ProgressTerminal, nil
	}
	if state.Submitting {
		e.logger.DebugContext(ctx, "advance ignored: submission in flight", "session_id", state.SessionID, "step", state.Step)
		return state, domain.ProgressIgnored, nil
	}

	next, valid := e.ValidateStep(state, state.Step)
	if !valid {
		e.logger.DebugContext(ctx, "step validation failed", "session_id", state.SessionID, "step", state.Step)
		return next, domain.ProgressInvalid, nil
	}

	step, _ := e.step(next.Step)
	if step.Handler == nil {
		moved, progress := e.moveForward(ctx, next)
		return moved, progress, nil
	}

	next.Submitting = true
	next.SubmittedAt = e.now()
	sub := &domain.Submission{
		SessionID: next.SessionID,
		Step:      next.Step,
		StartedAt: next.SubmittedAt,
		Values:    next.Fields.Clone(),
	}
	return next, domain.ProgressPending, sub
}

// Apply is the last phase of advancing: it writes the handler outcome into state.
// Outcomes for a submission that is no longer current (the state was reset or
// another submission started meanwhile) are discarded.
func (e *Engine) Apply(ctx context.Context, state *domain.State, sub *domain.Submission, outcome domain.Outcome) (*domain.State, domain.Progress) {
	if sub == nil || !state.Submitting || state.Step != sub.Step || !state.SubmittedAt.Equal(sub.StartedAt) {
		e.logger.WarnContext(ctx, "discarding stale handler outcome", "session_id", state.SessionID, "step", state.Step)
		return state, domain.ProgressIgnored
	}

	next := state.Snapshot()
	next.Submitting = false
	next.SubmittedAt = time.Time{}

	if outcome.Rejected {
		next.FieldErrors[outcome.Field] = outcome.Message
		e.logger.InfoContext(ctx, "step rejected", "session_id", next.SessionID, "step", next.Step, "field", outcome.Field)
		return next, domain.ProgressRejected
	}
	return e.moveForward(ctx, next)
}

// Back moves to the previous step without validation or side effects.
// It is a no-op on the first step, in the terminal state and while submitting.
func (e *Engine) Back(ctx context.Context, state *domain.State) *domain.State {
	if state.Submitting || state.Step <= 1 || e.Completed(state) {
		return state
	}
	next := state.Snapshot()
	e.emitStepLeave(ctx, next)
	next.Step--
	e.emitStepEnter(ctx, next)
	return next
}

// Reset returns the wizard to the first step and clears errors, touched fields
// and any in-flight submission. Field values belong to the form layer and are kept.
func (e *Engine) Reset(state *domain.State) *domain.State {
	next := state.Snapshot()
	next.Step = 1
	next.Submitting = false
	next.SubmittedAt = time.Time{}
	clear(next.FieldErrors)
	clear(next.Touched)
	return next
}

func (e *Engine) moveForward(ctx context.Context, state *domain.State) (*domain.State, domain.Progress) {
	e.emitStepLeave(ctx, state)
	state.Step++
	if e.Completed(state) {
		e.logger.InfoContext(ctx, "wizard completed", "session_id", state.SessionID)
		e.emitComplete(ctx, state)
		return state, domain.ProgressCompleted
	}
	e.emitStepEnter(ctx, state)
	return state, domain.ProgressAdvanced
}

// FieldErrors returns a copy of the error map.
func FieldErrors(state *domain.State) map[string]string {
	return maps.Clone(state.FieldErrors)
}
