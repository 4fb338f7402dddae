package ports

import "context"

// Gateway is the backend contract consumed by the wizard step handlers.
//
// Boolean answers are business outcomes (the email exists, the code matched);
// errors are transport or infrastructure failures. A *domain.VerificationError
// may be returned to surface a user-facing message on a specific field.
type Gateway interface {
	// CheckIfEmailExists reports whether an account already uses email.
	CheckIfEmailExists(ctx context.Context, email string) (bool, error)

	// SendOTP dispatches a one-time code to email. False means the code was not sent.
	SendOTP(ctx context.Context, email string) (bool, error)

	// VerifyOTP checks a previously sent code for email.
	VerifyOTP(ctx context.Context, email, otp string) (bool, error)

	// FinalizeSignup creates the account.
	FinalizeSignup(ctx context.Context, req SignupRequest) error

	// FinalizeReset stores the new password for an existing account.
	FinalizeReset(ctx context.Context, req ResetRequest) error
}

// SignupRequest is the payload of a completed signup.
type SignupRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"`
	UserID    string `json:"userId"`
	Password  string `json:"-"`
}

// ResetRequest is the payload of a completed password reset.
type ResetRequest struct {
	Email    string `json:"email"`
	OTP      string `json:"-"`
	Password string `json:"-"`
}
