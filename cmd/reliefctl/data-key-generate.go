package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reliefops/relief/pkg/datakey"
)

// dataKeyGenerateCmd represents the data-key generate command
var dataKeyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a data encryption key",
	Long: `
Generate a data encryption key

Use this command to generate a new Base64-encoded 256 bit key. The same
format serves RELIEF_DATA_KEY, which decrypts principal passwords in the
accounts file, and RELIEF_SESSION_KEY, which signs session tokens. Use a
different key for each.

Example:

$ export RELIEF_DATA_KEY="$(reliefctl data-key generate)"
`,
	Run: func(cmd *cobra.Command, args []string) {
		key, err := datakey.Generate()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate key: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s", key)
	},
}

func init() {
	dataKeyCmd.AddCommand(dataKeyGenerateCmd)
}
