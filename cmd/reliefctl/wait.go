package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/cobra"
)

// waitCmd represents the wait command
var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for the relief server to be ready",
	Long: `Wait for the relief server to be ready by polling the status endpoint.

The status endpoint answers 200 only once the store accepts connections, so
a ready server is also a reachable database.

Example:
  reliefctl wait
  reliefctl wait --port 3000 --timeout 60s`,
	Run: func(cmd *cobra.Command, args []string) {
		host, _ := cmd.Flags().GetString("host")
		port, _ := cmd.Flags().GetInt("port")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		url := fmt.Sprintf("http://%s:%d/status", host, port)
		fmt.Println("Waiting for relief to be ready...")
		if err := waitForServer(context.Background(), url, timeout); err != nil {
			fmt.Fprintf(os.Stderr, "Server did not become ready: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("relief is ready")
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().String("host", "localhost", "Server host to check")
	waitCmd.Flags().IntP("port", "p", 8000, "Server port to check")
	waitCmd.Flags().DurationP("timeout", "t", 90*time.Second, "Give up after this long")
}

// waitForServer polls url with exponential backoff until it answers below
// 300 or timeout elapses.
func waitForServer(ctx context.Context, url string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = timeout

	probe := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		_ = resp.Body.Close()
		if resp.StatusCode >= 300 {
			return fmt.Errorf("status endpoint answered %d", resp.StatusCode)
		}
		return nil
	}

	return backoff.Retry(probe, backoff.WithContext(b, ctx))
}
