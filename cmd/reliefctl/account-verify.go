package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/reliefops/relief/pkg/credentials"
	"github.com/reliefops/relief/pkg/db"
	"github.com/reliefops/relief/pkg/session"
)

// accountVerifyCmd represents the account verify command
var accountVerifyCmd = &cobra.Command{
	Use:   "verify <username>",
	Short: "Log in as an account and connect as its store principal",
	Long: `Log in as an account and connect as its store principal.

The password is read from the first line of stdin. This runs the same check
as the login endpoint: the account password must match and the mapped
principal must be able to open a store connection.

Example:
  echo -n operator-password | reliefctl account verify operator`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, reg, err := loadAccounts(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load accounts: %v\n", err)
			os.Exit(1)
		}

		password, err := readSecret(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read password: %v\n", err)
			os.Exit(1)
		}

		conn := db.NewPostgresConnector(db.Config{
			Host:     cfg.StoreHost,
			Port:     cfg.StorePort,
			Database: cfg.StoreDatabase,
			SSLMode:  cfg.StoreSSLMode,
		})
		router := credentials.NewRouter(reg, conn, session.Principal{User: cfg.AnonymousUser})

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		acct, p, err := router.Authenticate(ctx, args[0], password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Verification failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s (%s) connects as %s\n", acct.Username, acct.Role, p.User)
	},
}

func init() {
	accountCmd.AddCommand(accountVerifyCmd)
}

// readSecret returns the first line of r without its line ending.
func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("empty input")
	}
	return line, nil
}
