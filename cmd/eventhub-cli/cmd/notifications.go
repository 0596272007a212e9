package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/nfrund/eventhub/internal/chat"
	"github.com/spf13/cobra"
)

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Print announcement notifications pushed by the server",
	Long: `Opens the chat room's WebSocket and prints every announcement notification
until interrupted.

Example:
  eventhub-cli notifications --event evt-launch --token $EVENTHUB_TOKEN`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Listening for announcements in %s (Ctrl+C to stop)\n", eventID)
		return c.Notifications(ctx, eventID, func(n chat.Notification) {
			printNotification(out, n)
		})
	},
}

func init() {
	rootCmd.AddCommand(notificationsCmd)
}
