package wizards

import (
	"context"

	"github.com/aretw0/onboarding/pkg/domain"
	"github.com/aretw0/onboarding/pkg/ports"
)

// ForgotOption customizes the ForgotPassword steps.
type ForgotOption func(*forgotConfig)

type forgotConfig struct {
	dispatchCode bool
}

// WithResetCodeDispatch makes the email step send the reset code through the
// gateway before advancing. By default the email step has no handler and the
// code is expected to be delivered out of band.
func WithResetCodeDispatch(enabled bool) ForgotOption {
	return func(c *forgotConfig) {
		c.dispatchCode = enabled
	}
}

// ForgotPassword returns the three steps of the password reset wizard.
func ForgotPassword(gw ports.Gateway, opts ...ForgotOption) []domain.Step {
	var cfg forgotConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	emailStep := domain.Step{
		Name:        "email",
		Title:       "Forgot your password?",
		Fields:      []domain.Field{emailField},
		Required:    []string{FieldEmail},
		Rules:       map[string]domain.Rule{FieldEmail: emailRule},
		ErrorField:  FieldEmail,
		SubmitLabel: LabelNext,
	}
	if cfg.dispatchCode {
		emailStep.Handler = func(ctx context.Context, v domain.Values) (domain.Outcome, error) {
			return sendOTP(ctx, gw, v[FieldEmail])
		}
	}

	return []domain.Step{
		emailStep,
		{
			Name:        "otp",
			Title:       "Check your inbox",
			Fields:      []domain.Field{otpField},
			Required:    []string{FieldOTP},
			Rules:       map[string]domain.Rule{FieldOTP: otpRule},
			Handler:     verifyOTP(gw),
			ErrorField:  FieldOTP,
			SubmitLabel: LabelNext,
		},
		{
			Name:        "password",
			Title:       "Choose a new password",
			Fields:      passwordFields(),
			Required:    []string{FieldPassword, FieldConfirmPassword},
			Rules:       passwordRules(),
			Handler:     finalizeReset(gw),
			ErrorField:  FieldPassword,
			SubmitLabel: LabelResetPassword,
		},
	}
}

func finalizeReset(gw ports.Gateway) domain.Handler {
	return func(ctx context.Context, v domain.Values) (domain.Outcome, error) {
		err := gw.FinalizeReset(ctx, ports.ResetRequest{
			Email:    v[FieldEmail],
			OTP:      v[FieldOTP],
			Password: v[FieldPassword],
		})
		if err != nil {
			return domain.Outcome{}, err
		}
		return domain.Advance(), nil
	}
}
