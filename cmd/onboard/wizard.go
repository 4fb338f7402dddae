package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/onboarding"
	"github.com/aretw0/onboarding/internal/presentation/tui"
	"github.com/aretw0/onboarding/pkg/observability"
	"github.com/aretw0/onboarding/pkg/runner"
	"github.com/aretw0/onboarding/pkg/wizards"
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWizard(cmd, wizards.KindSignup, "Create your account", "Account created. You can now sign in.")
	},
}

var forgotCmd = &cobra.Command{
	Use:     "forgot-password",
	Aliases: []string{"forgot"},
	Short:   "Reset a password interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWizard(cmd, wizards.KindForgotPassword, "Reset your password", "Password updated.")
	},
}

func runWizard(cmd *cobra.Command, kind, title, done string) error {
	ctx := cmd.Context()
	stdout := cmd.OutOrStdout()

	be, err := newBackend(ctx, cfg, logger, consoleSender(stdout))
	if err != nil {
		return err
	}
	defer be.Close()

	w, err := onboarding.New(kind, be.Gateway,
		onboarding.WithLogger(logger),
		onboarding.WithLifecycleHooks(observability.LogHooks(logger)),
		onboarding.WithResetCodeDispatch(cfg.ResetCodeDispatch),
	)
	if err != nil {
		return err
	}

	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	if interactive {
		tui.PrintBanner(stdout, title)
	}

	var renderer runner.ContentRenderer
	if interactive {
		renderer = tui.NewRenderer()
	}
	r := runner.NewRunner(
		runner.WithLogger(logger),
		runner.WithInputHandler(runner.NewTextHandler(cmd.InOrStdin(), stdout, runner.WithTextHandlerRenderer(renderer))),
		runner.WithCompletionMessage(done),
	)

	err = r.Run(ctx, w)
	if errors.Is(err, runner.ErrQuit) {
		fmt.Fprintln(stdout, "Bye!")
		return nil
	}
	return err
}

func init() {
	rootCmd.AddCommand(signupCmd, forgotCmd)
}
