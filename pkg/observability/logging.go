package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/onboarding/pkg/domain"
)

// LogHooks returns lifecycle hooks that write one record per event.
// Field values never reach the log.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step_enter", stepAttrs(e)...)
		},
		OnStepLeave: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step_leave", stepAttrs(e)...)
		},
		OnHandlerCall: func(ctx context.Context, e *domain.HandlerEvent) {
			logger.DebugContext(ctx, "handler_call",
				"session_id", e.SessionID, "wizard", e.Wizard, "step", e.StepName)
		},
		OnHandlerReturn: func(ctx context.Context, e *domain.HandlerEvent) {
			attrs := []any{
				"session_id", e.SessionID,
				"wizard", e.Wizard,
				"step", e.StepName,
				"outcome", OutcomeOf(e),
				"duration", e.Duration,
			}
			if e.Err != nil {
				logger.WarnContext(ctx, "handler_return", append(attrs, "err", e.Err)...)
				return
			}
			logger.InfoContext(ctx, "handler_return", attrs...)
		},
		OnComplete: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "wizard_complete", stepAttrs(e)...)
		},
	}
}

func stepAttrs(e *domain.StepEvent) []any {
	return []any{
		"session_id", e.SessionID,
		"wizard", e.Wizard,
		"step", e.Step,
		"step_name", e.StepName,
	}
}
