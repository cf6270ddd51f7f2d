package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/clnbrd/clnbrd/internal/config"
	"github.com/clnbrd/clnbrd/internal/core"
	"github.com/clnbrd/clnbrd/internal/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local HTTP API",
	Long: `serve exposes cleaning over HTTP on the loopback interface. Every route
except /health requires the bearer token stored in the clnbrd config
directory.

With --watch the auto-clean and history monitors run as well.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		portFlag, _ := cmd.Flags().GetInt("port")
		watch, _ := cmd.Flags().GetBool("watch")

		release, err := acquireInstance()
		if err != nil {
			return err
		}
		defer release()

		host := GlobalSettings.Server.Host
		port := portFlag
		if port == 0 {
			port = GlobalSettings.Server.Port
		}

		var listener net.Listener
		if port > 0 {
			listener, err = net.Listen("tcp", net.JoinHostPort(host, fmt.Sprint(port)))
			if err != nil {
				return fmt.Errorf("could not bind to port %d: %w", port, err)
			}
		} else {
			port, listener = findAvailablePort(host, config.DefaultServerPort)
			if listener == nil {
				return fmt.Errorf("could not find an available port from %d", config.DefaultServerPort)
			}
		}

		saveActivePort(port)
		defer removeActivePort()

		svc := newLocalService()
		svc.Notifier = core.NewLogNotifier()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		server := &http.Server{
			Handler:           newRouter(NewAPIHandler(svc, GlobalStore, port), ensureAuthToken()),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go startHTTPServer(server, listener)

		wg := startMonitors(ctx, svc, watch, watch)

		fmt.Fprintf(cmd.OutOrStdout(), "clnbrd %s listening on http://%s\n", Version, listener.Addr())
		<-ctx.Done()

		fmt.Fprintln(cmd.OutOrStdout(), "Shutting down...")
		_ = svc.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			utils.Debug("HTTP server shutdown: %v", err)
		}
		wg.Wait()
		return nil
	},
}

func findAvailablePort(host string, start int) (int, net.Listener) {
	for port := start; port < start+100; port++ {
		ln, err := net.Listen("tcp", net.JoinHostPort(host, fmt.Sprint(port)))
		if err == nil {
			return port, ln
		}
	}
	return 0, nil
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (default: settings, then first free from 1760)")
	serveCmd.Flags().Bool("watch", false, "Also run the auto-clean and history monitors")
	rootCmd.AddCommand(serveCmd)
}
