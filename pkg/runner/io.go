package runner

import (
	"context"

	"github.com/aretw0/onboarding/pkg/domain"
)

// IOHandler defines how the runner talks to the user.
type IOHandler interface {
	// ShowStep presents the active step.
	ShowStep(ctx context.Context, view domain.View) error

	// ShowErrors presents the messages of a failed submission, keyed by field label.
	ShowErrors(ctx context.Context, errs []FieldMessage) error

	// Prompt reads one value. Secret prompts must not echo the input.
	Prompt(ctx context.Context, label, current string, secret bool) (string, error)

	// SystemOutput presents a meta-message (progress, completion, hints).
	SystemOutput(ctx context.Context, msg string) error
}

// FieldMessage is an error attached to a field.
type FieldMessage struct {
	Field   string
	Label   string
	Message string
}

// ContentRenderer transforms markdown before it is written, e.g. to ANSI.
type ContentRenderer func(string) (string, error)
