package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/clnbrd/clnbrd/internal/clipboard"
	"github.com/clnbrd/clnbrd/internal/config"
	"github.com/clnbrd/clnbrd/internal/core"
	"github.com/clnbrd/clnbrd/internal/rules"
	"github.com/clnbrd/clnbrd/internal/state"
	"github.com/clnbrd/clnbrd/internal/utils"

	"github.com/spf13/cobra"
)

// Version information - set via ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Globals shared by every subcommand, set up in PersistentPreRunE.
var (
	GlobalSettings *config.Settings
	GlobalStore    *rules.Store
	GlobalProfiles *rules.Profiles
	GlobalHistory  *state.History
)

// newBoard is swapped in tests.
var newBoard = func() clipboard.Board { return clipboard.NewSystemBoard() }

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "clnbrd",
	Short: "Clean invisible characters, tracking and formatting noise from your clipboard",
	Long: `clnbrd removes AI watermark characters, URL tracking parameters, smart quotes,
stray HTML and extra whitespace from clipboard text.

Run 'clnbrd clean' from a hotkey, or 'clnbrd watch' to clean on every copy.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeGlobalState()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		state.CloseDB()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate("clnbrd version {{.Version}}\n")
}

// initializeGlobalState sets up directories, logging, the database and the
// rule store.
func initializeGlobalState() error {
	if err := config.EnsureDirs(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	if err := config.MigrateOldPaths(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not migrate old files: %v\n", err)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		settings = config.DefaultSettings()
	}
	GlobalSettings = settings

	// Config logging
	utils.ConfigureDebug(config.GetLogsDir())
	utils.SetLevel(settings.General.LogLevel)
	if err := utils.CleanupLogs(settings.General.LogRetentionCount); err != nil {
		utils.Debug("Log cleanup failed: %v", err)
	}

	state.Configure(config.GetDBPath())

	GlobalStore = rules.NewStore(state.Prefs{})
	if err := GlobalStore.Load(); err != nil {
		return err
	}
	GlobalProfiles = rules.NewProfiles(state.Prefs{}, GlobalStore)
	if err := GlobalProfiles.Load(); err != nil {
		return err
	}
	GlobalHistory = state.NewHistory(settings.History.MaxItems)
	return nil
}

// newLocalService builds a clean service bound to the system clipboard.
func newLocalService() *core.LocalCleanService {
	svc := core.NewLocalCleanService(newBoard(), GlobalStore, GlobalSettings.ToRuntimeConfig())
	svc.Paster = core.NewSystemPaster()
	// One-shot commands report errors themselves; watch and serve swap in a
	// notifier that also prints.
	svc.Notifier = &core.LogNotifier{}
	if GlobalSettings.History.Enabled {
		svc.History = GlobalHistory
	}
	return svc
}

// commandContext bounds one-shot commands so a wedged clipboard cannot hang
// the shell. Paste needs room for its delays.
func commandContext(extra time.Duration) (context.Context, context.CancelFunc) {
	rc := GlobalSettings.ToRuntimeConfig()
	return context.WithTimeout(context.Background(), rc.ExtractionTimeout+rc.RestoreDelay+extra)
}
