package cmd

import (
	"errors"
	"os"

	"github.com/nfrund/eventhub/internal/client"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	eventID   string
	authToken string
)

var rootCmd = &cobra.Command{
	Use:   "eventhub-cli",
	Short: "Eventhub CLI tool",
	Long: `Eventhub CLI talks to an eventhub server from the terminal.

Available commands:
  chat             Join an event chat room interactively
  notifications    Print announcement notifications as they arrive
  version          Print the CLI version

Use "eventhub-cli [command] --help" for more information about a specific command.`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("EVENTHUB_SERVER", "http://localhost:8080"), "eventhub server URL")
	rootCmd.PersistentFlags().StringVar(&eventID, "event", "", "event ID of the chat room")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", os.Getenv("EVENTHUB_TOKEN"), "auth token (X-Auth-Token from login)")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newClient validates the shared flags and returns an API client.
func newClient() (*client.Client, error) {
	if eventID == "" {
		return nil, errors.New("--event is required")
	}
	if authToken == "" {
		return nil, errors.New("--token or EVENTHUB_TOKEN is required")
	}
	return client.New(serverURL, authToken), nil
}
