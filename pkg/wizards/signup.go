package wizards

import (
	"context"

	"github.com/aretw0/onboarding/pkg/domain"
	"github.com/aretw0/onboarding/pkg/ports"
)

// Signup returns the five steps of the account creation wizard.
func Signup(gw ports.Gateway) []domain.Step {
	return []domain.Step{
		{
			Name:  "name",
			Title: "What's your name?",
			Fields: []domain.Field{
				{Name: FieldFirstName, Label: "First name", Kind: domain.KindText},
				{Name: FieldLastName, Label: "Last name (optional)", Kind: domain.KindText, Optional: true},
			},
			Required: []string{FieldFirstName},
			Rules: map[string]domain.Rule{
				FieldFirstName: {Required: true, RequiredMessage: MsgFirstNameRequired},
			},
			SubmitLabel: LabelNext,
		},
		{
			Name:        "email",
			Title:       "Enter your email",
			Fields:      []domain.Field{emailField},
			Required:    []string{FieldEmail},
			Rules:       map[string]domain.Rule{FieldEmail: emailRule},
			Handler:     checkEmailAndSendOTP(gw),
			ErrorField:  FieldEmail,
			SubmitLabel: LabelNext,
		},
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
			Name:     "user_id",
			Title:    "Choose a user ID",
			Fields:   []domain.Field{{Name: FieldUserID, Label: "User ID", Kind: domain.KindText}},
			Required: []string{FieldUserID},
			Rules: map[string]domain.Rule{
				FieldUserID: {Required: true, RequiredMessage: MsgUserIDRequired},
			},
			SubmitLabel: LabelNext,
		},
		{
			Name:        "password",
			Title:       "Create a password",
			Fields:      passwordFields(),
			Required:    []string{FieldPassword, FieldConfirmPassword},
			Rules:       passwordRules(),
			Handler:     finalizeSignup(gw),
			ErrorField:  FieldPassword,
			SubmitLabel: LabelSignUp,
		},
	}
}

func checkEmailAndSendOTP(gw ports.Gateway) domain.Handler {
	return func(ctx context.Context, v domain.Values) (domain.Outcome, error) {
		email := v[FieldEmail]
		exists, err := gw.CheckIfEmailExists(ctx, email)
		if err != nil {
			return domain.Outcome{}, err
		}
		if exists {
			return domain.Reject(FieldEmail, MsgEmailExists), nil
		}
		return sendOTP(ctx, gw, email)
	}
}

func finalizeSignup(gw ports.Gateway) domain.Handler {
	return func(ctx context.Context, v domain.Values) (domain.Outcome, error) {
		err := gw.FinalizeSignup(ctx, ports.SignupRequest{
			FirstName: v[FieldFirstName],
			LastName:  v[FieldLastName],
			Email:     v[FieldEmail],
			UserID:    v[FieldUserID],
			Password:  v[FieldPassword],
		})
		if err != nil {
			return domain.Outcome{}, err
		}
		return domain.Advance(), nil
	}
}
