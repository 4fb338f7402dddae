package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/onboarding"
	"github.com/aretw0/onboarding/internal/logging"
	"github.com/aretw0/onboarding/pkg/domain"
	"github.com/aretw0/onboarding/pkg/validation"
)

// Commands recognised at any prompt.
const (
	CmdBack  = ":back"
	CmdReset = ":reset"
	CmdQuit  = ":quit"
)

// ErrQuit is returned by Run when the user leaves with :quit.
var ErrQuit = errors.New("wizard abandoned")

// Runner drives a Wizard through an IOHandler until it completes.
type Runner struct {
	// Handler is the IO strategy. If nil, a TextHandler over Stdin/Stdout is used.
	Handler IOHandler

	// Renderer is used by the default handler for step headers.
	Renderer ContentRenderer

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// CompletionMessage is printed once the wizard reaches its terminal state.
	CompletionMessage string
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger:            logging.NewNop(),
		CompletionMessage: "Done.",
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout, WithTextHandlerRenderer(r.Renderer))
	}
	return r
}

type command int

const (
	cmdNone command = iota
	cmdBack
	cmdReset
	cmdQuit
)

func parseCommand(input string) command {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case CmdBack:
		return cmdBack
	case CmdReset:
		return cmdReset
	case CmdQuit:
		return cmdQuit
	}
	return cmdNone
}

// Run executes the wizard loop until completion, :quit, or an input error.
func (r *Runner) Run(ctx context.Context, w *onboarding.Wizard) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		view := w.View()
		if view.Completed {
			r.Logger.DebugContext(ctx, "wizard completed", "wizard", view.Wizard)
			return r.Handler.SystemOutput(ctx, r.CompletionMessage)
		}

		if err := r.Handler.ShowStep(ctx, view); err != nil {
			return err
		}

		cmd, err := r.collect(ctx, w, view)
		if err != nil {
			return err
		}
		switch cmd {
		case cmdQuit:
			return ErrQuit
		case cmdBack:
			w.Back(ctx)
			continue
		case cmdReset:
			w.Reset()
			continue
		}

		progress := w.Advance(ctx)
		r.Logger.DebugContext(ctx, "step submitted", "wizard", view.Wizard, "step", view.Step, "progress", progress)

		switch progress {
		case domain.ProgressInvalid, domain.ProgressRejected:
			if err := r.Handler.ShowErrors(ctx, stepErrors(view, w.FieldErrors())); err != nil {
				return err
			}
		case domain.ProgressIgnored:
			if err := r.Handler.SystemOutput(ctx, "Still submitting, please wait."); err != nil {
				return err
			}
		}
	}
}

// collect prompts for every field of the step and stores the answers.
// An empty answer keeps the current value.
func (r *Runner) collect(ctx context.Context, w *onboarding.Wizard, view domain.View) (command, error) {
	showSecrets := false
	for _, f := range view.Fields {
		if f.Kind == domain.KindCheckbox && w.Value(f.Name) == "true" {
			showSecrets = true
		}
	}

	for _, f := range promptOrder(view.Fields) {
		label := f.Label
		if f.Kind == domain.KindCheckbox {
			label += " (y/n)"
		}
		secret := f.Kind == domain.KindPassword && !showSecrets

		for {
			input, err := r.Handler.Prompt(ctx, label, w.Value(f.Name), secret)
			if err != nil {
				return cmdNone, err
			}
			if cmd := parseCommand(input); cmd != cmdNone {
				return cmd, nil
			}

			value, err := validation.SanitizeField(f.Kind, input)
			if err != nil {
				if err := r.Handler.ShowErrors(ctx, []FieldMessage{{Field: f.Name, Label: f.Label, Message: err.Error()}}); err != nil {
					return cmdNone, err
				}
				continue
			}
			if value == "" {
				break
			}
			if f.Kind == domain.KindCheckbox {
				value = checkboxValue(value)
				showSecrets = value == "true"
			}
			if err := w.SetField(f.Name, value); err != nil {
				return cmdNone, fmt.Errorf("failed to set %s: %w", f.Name, err)
			}
			break
		}
	}
	return cmdNone, nil
}

// promptOrder asks checkboxes first so that "show password" applies to the
// password prompts of the same step.
func promptOrder(fields []domain.FieldView) []domain.FieldView {
	out := make([]domain.FieldView, 0, len(fields))
	for _, f := range fields {
		if f.Kind == domain.KindCheckbox {
			out = append(out, f)
		}
	}
	for _, f := range fields {
		if f.Kind != domain.KindCheckbox {
			out = append(out, f)
		}
	}
	return out
}

func checkboxValue(input string) string {
	switch strings.ToLower(input) {
	case "y", "yes", "true", "1", "on":
		return "true"
	}
	return "false"
}

// stepErrors orders the messages like the fields of the step.
func stepErrors(view domain.View, errs map[string]string) []FieldMessage {
	var out []FieldMessage
	for _, f := range view.Fields {
		if msg, ok := errs[f.Name]; ok {
			out = append(out, FieldMessage{Field: f.Name, Label: f.Label, Message: msg})
		}
	}
	return out
}
