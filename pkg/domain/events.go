package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter     EventType = "step_enter"
	EventStepLeave     EventType = "step_leave"
	EventHandlerCall   EventType = "handler_call"
	EventHandlerReturn EventType = "handler_return"
	EventComplete      EventType = "complete"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	Wizard    string    `json:"wizard"`
}

// StepEvent represents entry into or exit from a step (and flow completion).
type StepEvent struct {
	EventBase
	Step     int    `json:"step"`
	StepName string `json:"step_name"`
}

// HandlerEvent represents a step handler execution.
type HandlerEvent struct {
	EventBase
	Step     int           `json:"step"`
	StepName string        `json:"step_name"`
	Outcome  Outcome       `json:"outcome"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStepEnter     func(context.Context, *StepEvent)
	OnStepLeave     func(context.Context, *StepEvent)
	OnHandlerCall   func(context.Context, *HandlerEvent)
	OnHandlerReturn func(context.Context, *HandlerEvent)
	OnComplete      func(context.Context, *StepEvent)
}

// MergeHooks fans each callback out to every non-nil callback in hooks, in order.
func MergeHooks(hooks ...LifecycleHooks) LifecycleHooks {
	var merged LifecycleHooks
	for _, h := range hooks {
		merged.OnStepEnter = chainStep(merged.OnStepEnter, h.OnStepEnter)
		merged.OnStepLeave = chainStep(merged.OnStepLeave, h.OnStepLeave)
		merged.OnComplete = chainStep(merged.OnComplete, h.OnComplete)
		merged.OnHandlerCall = chainHandler(merged.OnHandlerCall, h.OnHandlerCall)
		merged.OnHandlerReturn = chainHandler(merged.OnHandlerReturn, h.OnHandlerReturn)
	}
	return merged
}

func chainStep(a, b func(context.Context, *StepEvent)) func(context.Context, *StepEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *StepEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainHandler(a, b func(context.Context, *HandlerEvent)) func(context.Context, *HandlerEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *HandlerEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
