package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reliefops/relief/pkg/datakey"
)

// accountEncryptPasswordCmd represents the account encrypt-password command
var accountEncryptPasswordCmd = &cobra.Command{
	Use:   "encrypt-password <principal>",
	Short: "Encrypt a store principal password for the accounts file",
	Long: `Encrypt a store principal password for the accounts file.

The password is read from the first line of stdin and encrypted with
RELIEF_DATA_KEY, bound to the principal name. Put the output in the
principal's password field and set password_encrypted: true.

Example:
  echo -n s3cret | reliefctl account encrypt-password relief_operator`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cipher, err := dataKeyFromEnv()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if cipher == nil {
			fmt.Fprintln(os.Stderr, "RELIEF_DATA_KEY environment variable is required")
			os.Exit(1)
		}

		password, err := readSecret(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read password: %v\n", err)
			os.Exit(1)
		}

		encrypted, err := datakey.EncryptString(cipher, args[0], password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Encryption failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(encrypted)
	},
}

func init() {
	accountCmd.AddCommand(accountEncryptPasswordCmd)
}
