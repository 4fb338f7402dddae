/*
Package runner drives an onboarding.Wizard from a terminal.

The runner prints the active step, reads one line per field and submits the
step. Invalid or rejected steps are shown again with their errors. A few
commands are recognised at any prompt:

	:back   return to the previous step
	:reset  start over from the first step (values are kept)
	:quit   stop without finishing

Password fields are read without echo when the input is a terminal, unless the
step's "show password" checkbox is on.

# Usage

	w := onboarding.NewSignup(gateway)
	r := runner.NewRunner(
		runner.WithRenderer(tui.NewRenderer()),
		runner.WithCompletionMessage("Account created."),
	)
	if err := r.Run(ctx, w); err != nil {
		log.Fatal(err)
	}
*/
package runner
