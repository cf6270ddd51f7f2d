package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clnbrd/clnbrd/internal/core"
)

var eventsCmd = &cobra.Command{
	Use:   "events [host:port]",
	Short: "Follow clean events from a running clnbrd serve",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var target string
		if len(args) > 0 {
			target = args[0]
		}
		tokenFlag, _ := cmd.Flags().GetString("token")
		baseURL, token, err := resolveAPIConnection(target, tokenFlag)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		service := core.NewRemoteCleanService(baseURL, token)
		defer func() { _ = service.Shutdown() }()
		if err := service.Health(ctx); err != nil {
			return fmt.Errorf("failed to connect to %s: %w", baseURL, err)
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Following events from %s. Press Ctrl+C to stop.\n", baseURL)
		printEvents(ctx, service, cmd.OutOrStdout())
		return nil
	},
}

func init() {
	eventsCmd.Flags().String("token", "", "Bearer token for the server (or set CLNBRD_TOKEN)")
	rootCmd.AddCommand(eventsCmd)
}
