package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reliefctl",
	Short: "Run and administer the relief server",
	Long: `reliefctl runs the relief application server and manages its schema,
configuration, accounts and keys.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
