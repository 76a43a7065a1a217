package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/reliefops/relief/pkg/credentials"
)

// accountListCmd represents the account list command
var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts, their roles and store principals",
	Long: `List accounts, their roles and store principals.

Passwords are never printed.

Example:
  reliefctl account list
  reliefctl account list --output json`,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")

		_, reg, err := loadAccounts(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load accounts: %v\n", err)
			os.Exit(1)
		}
		if err := listAccounts(os.Stdout, reg, output); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list accounts: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	accountCmd.AddCommand(accountListCmd)
	accountListCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

type accountSummary struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	Principal string `json:"principal"`
	Encrypted bool   `json:"password_encrypted"`
}

func listAccounts(w io.Writer, reg *credentials.Registry, output string) error {
	summaries := make([]accountSummary, 0, reg.Len())
	for _, a := range reg.Accounts() {
		summaries = append(summaries, accountSummary{
			Username:  a.Username,
			Role:      a.Role.String(),
			Principal: a.Principal.User,
			Encrypted: a.Principal.PasswordEncrypted,
		})
	}

	switch output {
	case "json":
		data, err := json.MarshalIndent(summaries, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "text":
		_, _ = fmt.Fprintf(w, "%-20s %-10s %-24s %s\n", "USERNAME", "ROLE", "PRINCIPAL", "ENCRYPTED")
		_, _ = fmt.Fprintf(w, "%-20s %-10s %-24s %s\n", "--------", "----", "---------", "---------")
		for _, s := range summaries {
			_, _ = fmt.Fprintf(w, "%-20s %-10s %-24s %t\n", s.Username, s.Role, s.Principal, s.Encrypted)
		}
		return nil
	}
	return fmt.Errorf("unknown output format %q", output)
}
