package wizards

import "github.com/aretw0/onboarding/internal/runtime"

// Wizard kinds.
const (
	KindSignup         = "signup"
	KindForgotPassword = "forgot_password"
)

// Field names shared by both wizards.
const (
	FieldFirstName       = "firstName"
	FieldLastName        = "lastName"
	FieldEmail           = "email"
	FieldOTP             = "otp"
	FieldUserID          = "userId"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldShowPassword    = runtime.ShowPasswordField
)

// User-facing messages.
const (
	MsgFirstNameRequired = "First name is required"
	MsgEmailRequired     = "Email is required"
	MsgEmailInvalid      = "Invalid email"
	MsgOTPRequired       = "OTP is required"
	MsgUserIDRequired    = "User ID is required"
	MsgPasswordRequired  = "Password is required"
	MsgPasswordWeak      = "Password must be 8+ characters with a letter, number, and special character."
	MsgConfirmRequired   = "Confirm your password"
	MsgPasswordMismatch  = "Passwords do not match"
	MsgEmailExists       = "Email already exists"
	MsgOTPNotSent        = "Could not send OTP. Please try again."
	MsgOTPInvalid        = "Invalid OTP"
)

// Submit labels.
const (
	LabelNext          = "Next"
	LabelSignUp        = "Sign Up"
	LabelResetPassword = "Reset Password"
)
