package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reliefops/relief/pkg/config"
	"github.com/reliefops/relief/pkg/credentials"
)

// configurationValidateCmd represents the configuration validate command
var configurationValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and the accounts file",
	Long: `Check the configuration and the accounts file it names.

Exits non-zero when an attribute is out of range or the accounts file does
not load.

Example:
  reliefctl configuration validate`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err == nil {
			err = cfg.Validate()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}

		cipher, err := dataKeyFromEnv()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		reg, err := credentials.LoadRegistry(cfg.AccountsFile, cipher)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid accounts file: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Configuration is valid (%d accounts)\n", reg.Len())
	},
}

func init() {
	configurationCmd.AddCommand(configurationValidateCmd)
}
