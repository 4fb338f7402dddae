package runtime

import (
	"github.com/aretw0/onboarding/pkg/domain"
)

// ShowPasswordField is the UI-only checkbox that reveals password inputs.
const ShowPasswordField = "isShowPassword"

// ActiveFields maps a step position to the fields rendered at that position.
// The terminal position renders nothing.
func ActiveFields(steps []domain.Step, position int) []domain.Field {
	if position < 1 || position > len(steps) {
		return nil
	}
	return steps[position-1].Fields
}

// View renders the active step for the field rendering surface.
// Errors are only exposed for touched fields; password fields are rendered as
// plain text while the show-password toggle is on.
func (e *Engine) View(state *domain.State) domain.View {
	view := domain.View{
		SessionID:  state.SessionID,
		Wizard:     e.name,
		Step:       state.Step,
		TotalSteps: len(e.steps),
		Submitting: state.Submitting,
		Completed:  e.Completed(state),
		Fields:     []domain.FieldView{},
	}
	view.CanGoBack = !view.Completed && state.Step > 1

	step, ok := e.step(state.Step)
	if !ok {
		return view
	}
	view.Title = step.Title
	view.SubmitLabel = step.SubmitLabel

	reveal := state.Fields.Bool(ShowPasswordField)
	for _, f := range ActiveFields(e.steps, state.Step) {
		fv := domain.FieldView{
			Name:     f.Name,
			Label:    f.Label,
			Kind:     f.Kind,
			Value:    state.Fields[f.Name],
			Optional: f.Optional,
			Touched:  state.Touched[f.Name],
		}
		if fv.Kind == domain.KindPassword && reveal {
			fv.Kind = domain.KindText
		}
		if fv.Touched {
			fv.Error = state.FieldErrors[f.Name]
		}
		view.Fields = append(view.Fields, fv)
	}
	return view
}
