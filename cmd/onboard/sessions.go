package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/onboarding/internal/presentation/graph"
	"github.com/aretw0/onboarding/pkg/domain"
	"github.com/aretw0/onboarding/pkg/persistence/middleware"
	"github.com/aretw0/onboarding/pkg/ports"
	"github.com/aretw0/onboarding/pkg/wizards"
)

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"session"},
	Short:   "Inspect and remove stored wizard sessions",
	Long: `List, inspect and remove the sessions kept by the configured store.
Only the file and redis stores outlive the process; the memory store is always empty here.`,
}

var sessionsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(store ports.StateStore) error {
			ids, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing sessions: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(ids) == 0 {
				fmt.Fprintln(out, "No sessions found.")
				return nil
			}
			for _, id := range ids {
				fmt.Fprintln(out, id)
			}
			return nil
		})
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print a session with secret fields masked",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "json", "yaml", "mermaid":
		default:
			return fmt.Errorf("unknown format %q: want json, yaml or mermaid", format)
		}

		return withStore(cmd, func(store ports.StateStore) error {
			redact, err := middleware.NewRedactionMiddleware(middleware.DefaultSecretPatterns)
			if err != nil {
				return err
			}
			state, err := middleware.Chain(store, redact).Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("loading session %q: %w", args[0], err)
			}
			return printState(cmd.OutOrStdout(), state, format)
		})
	},
}

var sessionsRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(store ports.StateStore) error {
			var errs []error
			for _, id := range args {
				if err := store.Delete(cmd.Context(), id); err != nil {
					errs = append(errs, fmt.Errorf("removing %q: %w", id, err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed session %s\n", id)
			}
			return errors.Join(errs...)
		})
	},
}

func withStore(cmd *cobra.Command, fn func(ports.StateStore) error) error {
	be, err := newBackend(cmd.Context(), cfg, logger, consoleSender(io.Discard))
	if err != nil {
		return err
	}
	defer be.Close()
	return fn(be.Store)
}

func printState(w io.Writer, state *domain.State, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(state)

	case "mermaid":
		steps, err := wizards.Steps(state.Wizard, nil, wizards.Options{ResetCodeDispatch: cfg.ResetCodeDispatch})
		if err != nil {
			return err
		}
		diagram := graph.GenerateMermaid(wizards.Describe(state.Wizard, steps), &graph.Overlay{CurrentStep: state.Step})
		_, err = fmt.Fprint(w, diagram)
		return err

	default:
		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling state: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
}

func init() {
	sessionsShowCmd.Flags().StringP("format", "f", "json", "Output format: json, yaml or mermaid")

	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsLsCmd, sessionsShowCmd, sessionsRmCmd)
}
