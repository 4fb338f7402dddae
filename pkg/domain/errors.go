package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrSubmitting is returned for field edits while a step handler is in flight.
var ErrSubmitting = errors.New("submission in progress")

// ErrUnknownWizard is returned when a wizard kind is not registered.
var ErrUnknownWizard = errors.New("unknown wizard")

// ErrUnknownField is returned when a field is not part of the wizard.
var ErrUnknownField = errors.New("unknown field")

// GenericFailureMessage is shown when a handler fails in an unexpected way.
const GenericFailureMessage = "Something went wrong. Please try again."

// VerificationError is a failure reported by the identity gateway.
// Field is an optional hint naming the field the message belongs to.
type VerificationError struct {
	Field   string
	Message string
	Err     error
}

// NewVerificationError creates a VerificationError without an underlying cause.
func NewVerificationError(field, message string) *VerificationError {
	return &VerificationError{Field: field, Message: message}
}

func (e *VerificationError) Error() string {
	return e.Message
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}
