package domain

import (
	"maps"
	"time"
)

// Values holds raw field input keyed by field name.
// Checkbox fields are stored as "true" or "false".
type Values map[string]string

// Bool reports whether a checkbox-style field is set.
func (v Values) Bool(name string) bool {
	return v[name] == "true"
}

// Clone returns an independent copy of the values.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	maps.Copy(out, v)
	return out
}

// State represents the current snapshot of a wizard session.
type State struct {
	// SessionID identifies the session when the state is managed by a store.
	SessionID string `json:"session_id,omitempty"`

	// Wizard is the kind of wizard this state belongs to (e.g. "signup").
	Wizard string `json:"wizard,omitempty"`

	// Step is the 1-based position. TotalSteps+1 means the flow is completed.
	Step int `json:"step"`

	// Fields holds the values entered so far, across all steps.
	Fields Values `json:"fields"`

	// FieldErrors holds at most one active message per field.
	FieldErrors map[string]string `json:"field_errors"`

	// Touched tracks fields the user has interacted with. It only gates error display.
	Touched map[string]bool `json:"touched"`

	// Submitting is true while a step handler is in flight.
	Submitting bool `json:"submitting"`

	// SubmittedAt is when the in-flight handler was started.
	SubmittedAt time.Time `json:"submitted_at,omitzero"`
}

// NewState creates a clean state positioned at the first step.
func NewState(sessionID, wizard string) *State {
	return &State{
		SessionID:   sessionID,
		Wizard:      wizard,
		Step:        1,
		Fields:      make(Values),
		FieldErrors: make(map[string]string),
		Touched:     make(map[string]bool),
	}
}

// Snapshot returns a deep copy of the state, safe to mutate independently.
func (s *State) Snapshot() *State {
	if s == nil {
		return nil
	}
	next := *s
	next.Fields = s.Fields.Clone()
	next.FieldErrors = make(map[string]string, len(s.FieldErrors))
	maps.Copy(next.FieldErrors, s.FieldErrors)
	next.Touched = make(map[string]bool, len(s.Touched))
	maps.Copy(next.Touched, s.Touched)
	return &next
}

// Submission identifies an in-flight handler call.
// It is produced when a step is submitted and consumed when its outcome is applied.
type Submission struct {
	SessionID string
	Step      int
	StartedAt time.Time
	Values    Values
}
