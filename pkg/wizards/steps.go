package wizards

import (
	"context"

	"github.com/aretw0/onboarding/pkg/domain"
	"github.com/aretw0/onboarding/pkg/ports"
	"github.com/aretw0/onboarding/pkg/validation"
)

// Building blocks shared by both wizards.

var (
	emailField = domain.Field{Name: FieldEmail, Label: "Email", Kind: domain.KindEmail}
	otpField   = domain.Field{Name: FieldOTP, Label: "Verify OTP", Kind: domain.KindText}

	emailRule = domain.Rule{
		Required:        true,
		RequiredMessage: MsgEmailRequired,
		Pattern:         validation.Email,
		PatternMessage:  MsgEmailInvalid,
	}
	otpRule = domain.Rule{Required: true, RequiredMessage: MsgOTPRequired}
)

func passwordFields() []domain.Field {
	return []domain.Field{
		{Name: FieldPassword, Label: "Password", Kind: domain.KindPassword},
		{Name: FieldConfirmPassword, Label: "Confirm password", Kind: domain.KindPassword},
		{Name: FieldShowPassword, Label: "Show password", Kind: domain.KindCheckbox, Optional: true},
	}
}

func passwordRules() map[string]domain.Rule {
	return map[string]domain.Rule{
		FieldPassword: {
			Required:        true,
			RequiredMessage: MsgPasswordRequired,
			Pattern:         validation.StrongPassword,
			PatternMessage:  MsgPasswordWeak,
		},
		FieldConfirmPassword: {
			Required:        true,
			RequiredMessage: MsgConfirmRequired,
			Cross:           validation.MatchesField(FieldPassword),
			CrossMessage:    MsgPasswordMismatch,
		},
	}
}

// sendOTP dispatches a code and rejects the email step when it was not sent.
func sendOTP(ctx context.Context, gw ports.Gateway, email string) (domain.Outcome, error) {
	sent, err := gw.SendOTP(ctx, email)
	if err != nil {
		return domain.Outcome{}, err
	}
	if !sent {
		return domain.Reject(FieldEmail, MsgOTPNotSent), nil
	}
	return domain.Advance(), nil
}

// verifyOTP is the handler of the OTP step in both wizards.
func verifyOTP(gw ports.Gateway) domain.Handler {
	return func(ctx context.Context, v domain.Values) (domain.Outcome, error) {
		ok, err := gw.VerifyOTP(ctx, v[FieldEmail], v[FieldOTP])
		if err != nil {
			return domain.Outcome{}, err
		}
		if !ok {
			return domain.Reject(FieldOTP, MsgOTPInvalid), nil
		}
		return domain.Advance(), nil
	}
}
