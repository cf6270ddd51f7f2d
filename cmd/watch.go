package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/clnbrd/clnbrd/internal/core"
	"github.com/clnbrd/clnbrd/internal/utils"
)

// reloadInterval is how often a long-running process picks up rule and
// settings edits made by other clnbrd invocations.
const reloadInterval = 2 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Clean the clipboard on every copy and record history",
	Long: `watch polls the clipboard. Stages set to auto-clean run on every external
copy, and each copy is recorded in history when history is enabled.

Only one watch or serve process runs at a time.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		noHistory, _ := cmd.Flags().GetBool("no-history")
		quiet, _ := cmd.Flags().GetBool("quiet")

		release, err := acquireInstance()
		if err != nil {
			return err
		}
		defer release()

		svc := newWatchService(noHistory)
		defer func() { _ = svc.Shutdown() }()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if !quiet {
			go printEvents(ctx, svc, cmd.OutOrStdout())
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Watching clipboard (profile: %s). Press Ctrl+C to stop.\n", activeProfileName())
		startMonitors(ctx, svc, true, !noHistory).Wait()
		fmt.Fprintln(cmd.ErrOrStderr(), "Stopped.")
		return nil
	},
}

// newWatchService is newLocalService with a printing notifier. With
// noHistory set, auto-clean invocations do not record originals either.
func newWatchService(noHistory bool) *core.LocalCleanService {
	svc := newLocalService()
	svc.Notifier = core.NewLogNotifier()
	if noHistory {
		svc.History = nil
	}
	return svc
}

// acquireInstance takes the single-instance lock and returns its release.
func acquireInstance() (func(), error) {
	ok, err := AcquireLock()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("clnbrd is already running (watch or serve); stop it first")
	}
	return func() {
		if err := ReleaseLock(); err != nil {
			utils.Debug("Error releasing lock: %v", err)
		}
	}, nil
}

// startMonitors runs the requested clipboard monitors and the rules reloader
// until ctx is done.
func startMonitors(ctx context.Context, svc *core.LocalCleanService, autoClean, history bool) *sync.WaitGroup {
	var wg sync.WaitGroup
	run := func(name string, m *core.Monitor) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				utils.Debug("%s monitor stopped: %v", name, err)
			}
		}()
	}

	mon := GlobalSettings.Monitor
	if autoClean {
		run("auto-clean", svc.AutoCleanMonitor(mon.AutoCleanInterval))
	}
	if history && GlobalSettings.History.Enabled {
		run("history", svc.HistoryMonitor(GlobalHistory, mon.HistoryInterval))
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		reloadLoop(ctx, svc)
	}()
	return &wg
}

func reloadLoop(ctx context.Context, svc *core.LocalCleanService) {
	ticker := time.NewTicker(reloadInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := GlobalStore.Load(); err != nil {
				utils.Debug("Rules reload failed: %v", err)
			}
			if err := svc.ReloadSettings(); err != nil {
				utils.Debug("Settings reload failed: %v", err)
			}
		}
	}
}

// printEvents writes one line per clean event until ctx is done.
func printEvents(ctx context.Context, svc core.CleanService, w io.Writer) {
	stream, cleanup, err := svc.StreamEvents(ctx)
	if err != nil {
		utils.Debug("Failed to start event stream: %v", err)
		return
	}
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-stream:
			if !ok {
				return
			}
			if line := formatEvent(msg); line != "" {
				fmt.Fprintln(w, line)
			}
		}
	}
}

func formatEvent(msg any) string {
	stamp := time.Now().Format("15:04:05")
	switch m := msg.(type) {
	case core.CleanedMsg:
		action := "Cleaned"
		switch {
		case m.Pasted:
			action = "Pasted"
		case !m.Written:
			action = "Checked"
		}
		stages := "no changes"
		if len(m.Stages) > 0 {
			stages = strings.Join(stageNames(m.Stages), ", ")
		}
		return fmt.Sprintf("%s %s [%s] %d -> %d chars: %s", stamp, action, m.Context, m.InputRunes, m.OutputRunes, stages)
	case core.SkippedMsg:
		return fmt.Sprintf("%s Skipped [%s]: %s", stamp, m.Context, m.Reason)
	case core.ErrorMsg:
		return fmt.Sprintf("%s Error [%s]: %s", stamp, m.Context, m.Err)
	}
	return ""
}

func init() {
	watchCmd.Flags().Bool("no-history", false, "Do not record clipboard history")
	watchCmd.Flags().BoolP("quiet", "q", false, "Do not print clean events")
	rootCmd.AddCommand(watchCmd)
}
