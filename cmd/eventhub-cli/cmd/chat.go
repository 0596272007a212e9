package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/nfrund/eventhub/internal/chat"
	"github.com/spf13/cobra"
)

var (
	chatFilter   string
	pollInterval time.Duration
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Join an event chat room interactively",
	Long: `Opens an interactive chat in the terminal. New announcements are
checked in the background and printed as they arrive.

Example:
  eventhub-cli chat --event evt-launch --token $EVENTHUB_TOKEN --filter questions`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		filter, err := chat.ParseFilter(chatFilter)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		out := &syncWriter{w: cmd.OutOrStdout()}
		r := newREPL(c, eventID, filter, out)
		if err := r.list(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "Type /help for commands.")

		watcher := chat.NewWatcher(c, eventID,
			func(n chat.Notification) { printNotification(out, n) },
			chat.WithInterval(pollInterval),
		)
		go watcher.Run(ctx)

		lines := make(chan string)
		go func() {
			defer close(lines)
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				select {
				case lines <- scanner.Text():
				case <-ctx.Done():
					return
				}
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					return nil
				}
				err := r.handle(ctx, line)
				if errors.Is(err, errQuit) {
					return nil
				}
				if err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
				}
			}
		}
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatFilter, "filter", "all", "initial filter: all, questions, announcements or private")
	chatCmd.Flags().DurationVar(&pollInterval, "interval", 30*time.Second, "how often to check for new announcements")
	rootCmd.AddCommand(chatCmd)
}
