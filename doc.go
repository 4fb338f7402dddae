/*
Package onboarding implements multi-step account onboarding wizards: a five step
Signup flow and a three step ForgotPassword flow.

Each wizard is an ordered list of steps. A step owns a fixed set of fields with
declarative validation rules and may carry a handler that verifies the step
against an identity backend (the Gateway) before the wizard moves on. Navigation
is linear: Advance validates the current step, runs its handler and moves
forward; Back moves to the previous step without validation; Reset returns to
the first step.

# Concept

The step machine itself is stateless (see internal/runtime). This package wraps
it into a Wizard that owns exactly one state behind a mutex, which is what a
single UI surface (a terminal, a test, an embedded form) needs. Servers that host
many sessions use pkg/session instead.

A Wizard never runs two handlers at once. While a handler is in flight
IsSubmitting reports true, Advance calls are ignored, field edits are refused and
Back is a no-op. Handlers are not cancelled once started.

# Usage

	gw := memory.NewGateway(memory.WithCodeSender(mySender))
	w := onboarding.NewSignup(gw)

	_ = w.SetField(wizards.FieldFirstName, "Ada")
	switch w.Advance(ctx) {
	case domain.ProgressInvalid, domain.ProgressRejected:
		fmt.Println(w.FieldErrors())
	case domain.ProgressCompleted:
		fmt.Println("done")
	}

# Observability

Lifecycle hooks (step enter/leave, handler call/return, completion) can be
registered with WithLifecycleHooks; pkg/observability turns them into
Prometheus metrics and structured logs.
*/
package onboarding
