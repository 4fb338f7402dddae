package runtime

import (
	"context"
	"time"

	"github.com/aretw0/onboarding/pkg/domain"
)

func (e *Engine) stepEvent(state *domain.State, typ domain.EventType) *domain.StepEvent {
	ev := &domain.StepEvent{
		EventBase: domain.EventBase{
			Timestamp: e.now(),
			Type:      typ,
			SessionID: state.SessionID,
			Wizard:    e.name,
		},
		Step: state.Step,
	}
	if step, ok := e.step(state.Step); ok {
		ev.StepName = step.Name
	}
	return ev
}

func (e *Engine) emitStepEnter(ctx context.Context, state *domain.State) {
	if e.hooks.OnStepEnter != nil {
		e.hooks.OnStepEnter(ctx, e.stepEvent(state, domain.EventStepEnter))
	}
}

func (e *Engine) emitStepLeave(ctx context.Context, state *domain.State) {
	if e.hooks.OnStepLeave != nil {
		e.hooks.OnStepLeave(ctx, e.stepEvent(state, domain.EventStepLeave))
	}
}

func (e *Engine) emitComplete(ctx context.Context, state *domain.State) {
	if e.hooks.OnComplete != nil {
		e.hooks.OnComplete(ctx, e.stepEvent(state, domain.EventComplete))
	}
}

func (e *Engine) emitHandlerCall(ctx context.Context, sub *domain.Submission, step domain.Step) {
	if e.hooks.OnHandlerCall == nil {
		return
	}
	e.hooks.OnHandlerCall(ctx, &domain.HandlerEvent{
		EventBase: domain.EventBase{
			Timestamp: e.now(),
			Type:      domain.EventHandlerCall,
			SessionID: sub.SessionID,
			Wizard:    e.name,
		},
		Step:     sub.Step,
		StepName: step.Name,
	})
}

func (e *Engine) emitHandlerReturn(ctx context.Context, sub *domain.Submission, step domain.Step, outcome domain.Outcome, d time.Duration, err error) {
	if e.hooks.OnHandlerReturn == nil {
		return
	}
	e.hooks.OnHandlerReturn(ctx, &domain.HandlerEvent{
		EventBase: domain.EventBase{
			Timestamp: e.now(),
			Type:      domain.EventHandlerReturn,
			SessionID: sub.SessionID,
			Wizard:    e.name,
		},
		Step:     sub.Step,
		StepName: step.Name,
		Outcome:  outcome,
		Duration: d,
		Err:      err,
	})
}
