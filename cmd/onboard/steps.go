package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/onboarding/internal/presentation/graph"
	"github.com/aretw0/onboarding/pkg/wizards"
)

var stepsCmd = &cobra.Command{
	Use:       "steps [kind]",
	Short:     "Export the step specifications of a wizard",
	Long:      `Prints the fields, required set and validation rules of every step as YAML, or the flow as a Mermaid diagram. Without a kind, all wizards are exported.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: wizards.Kinds(),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if format != "yaml" && format != "mermaid" {
			return fmt.Errorf("unknown format %q: want yaml or mermaid", format)
		}

		kinds := wizards.Kinds()
		if len(args) == 1 {
			kinds = args[:1]
		}

		opts := wizards.Options{ResetCodeDispatch: cfg.ResetCodeDispatch}
		docs := make([]wizards.Description, 0, len(kinds))
		for _, kind := range kinds {
			// Handlers are never invoked here, so no gateway is needed.
			steps, err := wizards.Steps(kind, nil, opts)
			if err != nil {
				return err
			}
			docs = append(docs, wizards.Describe(kind, steps))
		}

		out := cmd.OutOrStdout()
		if format == "mermaid" {
			for _, doc := range docs {
				fmt.Fprintf(out, "%%%% %s\n%s\n", doc.Kind, graph.GenerateMermaid(doc, nil))
			}
			return nil
		}

		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		for _, doc := range docs {
			if err := enc.Encode(doc); err != nil {
				return fmt.Errorf("encoding %s: %w", doc.Kind, err)
			}
		}
		return nil
	},
}

func init() {
	stepsCmd.Flags().StringP("format", "f", "yaml", "Output format: yaml or mermaid")
	rootCmd.AddCommand(stepsCmd)
}
