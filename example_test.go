package onboarding_test

import (
	"context"
	"fmt"

	"github.com/aretw0/onboarding"
	"github.com/aretw0/onboarding/pkg/adapters/memory"
	"github.com/aretw0/onboarding/pkg/ports"
	"github.com/aretw0/onboarding/pkg/wizards"
)

// ExampleNewSignup walks the Signup wizard against the in-memory gateway.
func ExampleNewSignup() {
	ctx := context.Background()

	// The code sender is where a real deployment would email the OTP.
	var lastCode string
	gw := memory.NewGateway(memory.WithCodeSender(ports.CodeSenderFunc(func(_ context.Context, _, code string) error {
		lastCode = code
		return nil
	})))

	w := onboarding.NewSignup(gw)

	// Advancing with an empty required field fails locally.
	fmt.Println(w.Advance(ctx), w.FieldErrors()[wizards.FieldFirstName])

	_ = w.SetField(wizards.FieldFirstName, "Ada")
	fmt.Println(w.Advance(ctx), w.CurrentStep())

	_ = w.SetField(wizards.FieldEmail, "ada@example.com")
	fmt.Println(w.Advance(ctx), w.CurrentStep())

	_ = w.SetField(wizards.FieldOTP, lastCode)
	fmt.Println(w.Advance(ctx), w.CurrentStep())

	// Output:
	// invalid First name is required
	// advanced 2
	// advanced 3
	// advanced 4
}

// ExampleWizard_View shows what a rendering surface receives for the active step.
func ExampleWizard_View() {
	w := onboarding.NewForgotPassword(memory.NewGateway())
	_ = w.Touch(wizards.FieldEmail)

	view := w.View()
	fmt.Printf("step %d/%d %q\n", view.Step, view.TotalSteps, view.SubmitLabel)
	for _, f := range view.Fields {
		fmt.Printf("%s (%s): %s\n", f.Label, f.Kind, f.Error)
	}
	fmt.Println("can go back:", view.CanGoBack)

	// Output:
	// step 1/3 "Next"
	// Email (email): Email is required
	// can go back: false
}
