package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/onboarding/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long:  `Prints the configuration after applying defaults, the config file and ONBOARD_* environment variables. Secrets are omitted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if out, _ := cmd.Flags().GetString("write"); out != "" {
			return config.Write(out, cfg)
		}
		data, err := cfg.YAML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().StringP("write", "w", "", "Write the configuration to this file instead of stdout")
}
