package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/onboarding/pkg/domain"
)

// RunHandler executes the handler of the submitted step and maps every failure
// into a field-scoped rejection, so the wizard always stays usable.
//
// Handlers are not cancellable: the caller's cancellation is detached from the
// context passed to the handler, which runs to completion. Timeouts are the
// gateway's concern.
func (e *Engine) RunHandler(ctx context.Context, sub *domain.Submission) domain.Outcome {
	step, ok := e.step(sub.Step)
	if !ok || step.Handler == nil {
		return domain.Advance()
	}

	ctx = context.WithoutCancel(ctx)
	e.emitHandlerCall(ctx, sub, step)
	started := e.now()

	outcome, err := invoke(ctx, step.Handler, sub.Values.Clone())
	if err != nil {
		outcome = e.failureOutcome(ctx, step, sub, err)
	} else if outcome.Rejected && outcome.Field == "" {
		outcome.Field = errorField(step)
	}

	e.emitHandlerReturn(ctx, sub, step, outcome, e.now().Sub(started), err)
	return outcome
}

// invoke calls h, converting a panic into an error.
func invoke(ctx context.Context, h domain.Handler, values domain.Values) (outcome domain.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, values)
}

// failureOutcome maps a handler error onto a field error slot.
// Gateway VerificationErrors keep their message and field hint; anything else is
// reported with a generic message on the step's default error field.
func (e *Engine) failureOutcome(ctx context.Context, step domain.Step, sub *domain.Submission, err error) domain.Outcome {
	var verr *domain.VerificationError
	if errors.As(err, &verr) {
		field := verr.Field
		if field == "" {
			field = errorField(step)
		}
		msg := verr.Message
		if msg == "" {
			msg = domain.GenericFailureMessage
		}
		return domain.Reject(field, msg)
	}

	e.logger.ErrorContext(ctx, "step handler failed",
		"session_id", sub.SessionID,
		"step", sub.Step,
		"err", err,
	)
	return domain.Reject(errorField(step), domain.GenericFailureMessage)
}

// errorField is where rejections without a field hint land: the step's
// ErrorField, else its first required field, else its first field.
func errorField(step domain.Step) string {
	switch {
	case step.ErrorField != "":
		return step.ErrorField
	case len(step.Required) > 0:
		return step.Required[0]
	case len(step.Fields) > 0:
		return step.Fields[0].Name
	}
	return ""
}
