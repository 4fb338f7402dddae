package domain

import "context"

// FieldKind tells the rendering surface which widget to use.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindEmail    FieldKind = "email"
	KindPassword FieldKind = "password"
	KindCheckbox FieldKind = "checkbox"
)

// Field describes an input rendered on a step.
type Field struct {
	Name     string    `json:"name" yaml:"name"`
	Label    string    `json:"label" yaml:"label"`
	Kind     FieldKind `json:"kind" yaml:"kind"`
	Optional bool      `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// Matcher is satisfied by *regexp.Regexp and by composed matchers.
type Matcher interface {
	MatchString(s string) bool
}

// CrossCheck validates a value against the full set of field values.
type CrossCheck func(value string, all Values) bool

// Rule is the declarative validation for a single field.
// Checks run in order: required, pattern, cross-field. The first failure wins.
type Rule struct {
	Required        bool
	RequiredMessage string

	Pattern        Matcher
	PatternMessage string

	Cross        CrossCheck
	CrossMessage string
}

// Handler is an asynchronous action bound to a step, gating advancement on an
// external verification outcome. It receives a copy of the current values.
type Handler func(ctx context.Context, values Values) (Outcome, error)

// Step is the immutable specification of one wizard screen.
type Step struct {
	Name  string
	Title string

	// Fields are rendered on this step, in order.
	Fields []Field

	// Required lists the fields that must pass validation before leaving forward.
	Required []string

	// Rules maps field names to their validation. Fields without a rule are always valid.
	Rules map[string]Rule

	// Handler is optional. When nil, a valid step advances immediately.
	Handler Handler

	// ErrorField receives handler failures that carry no field hint.
	ErrorField string

	// SubmitLabel is the caption of the forward action (e.g. "Next", "Sign Up").
	SubmitLabel string
}

// HasField reports whether the step renders the named field.
func (s Step) HasField(name string) bool {
	for _, f := range s.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Outcome is the tagged result of a step handler.
type Outcome struct {
	Rejected bool   `json:"rejected"`
	Field    string `json:"field,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Advance returns the outcome that moves the wizard forward.
func Advance() Outcome {
	return Outcome{}
}

// Reject returns the outcome that holds position and writes a field error.
func Reject(field, message string) Outcome {
	return Outcome{Rejected: true, Field: field, Message: message}
}

// Progress reports what an advance attempt did.
type Progress string

const (
	ProgressAdvanced  Progress = "advanced"  // Moved to the next step
	ProgressCompleted Progress = "completed" // Left the last step; terminal state reached
	ProgressInvalid   Progress = "invalid"   // Local validation failed
	ProgressRejected  Progress = "rejected"  // Handler rejected the step
	ProgressPending   Progress = "pending"   // Handler must run before the outcome is known
	ProgressIgnored   Progress = "ignored"   // A submission is already in flight
	ProgressTerminal  Progress = "terminal"  // Flow already completed
)
