package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reliefops/relief/pkg/config"
	"github.com/reliefops/relief/pkg/credentials"
)

// accountCmd represents the account command
var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Inspect UI accounts",
	Long: `Inspect the UI accounts and the store principals they map to.

Accounts are read from the accounts file named by the configuration
(accounts_file, RELIEF_ACCOUNTS_FILE).`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'account' requires a subcommand (list, verify, encrypt-password)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.PersistentFlags().StringP("file", "f", "", "accounts file (overrides configuration)")
}

// loadAccounts loads the accounts file named by --file or the configuration.
func loadAccounts(cmd *cobra.Command) (*config.ReliefConfig, *credentials.Registry, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		cfg.AccountsFile = path
	}

	cipher, err := dataKeyFromEnv()
	if err != nil {
		return nil, nil, err
	}
	reg, err := credentials.LoadRegistry(cfg.AccountsFile, cipher)
	if err != nil {
		return nil, nil, err
	}
	return cfg, reg, nil
}
