package cmd

import (
	"fmt"
	"time"

	"github.com/clnbrd/clnbrd/internal/core"
	"github.com/clnbrd/clnbrd/internal/rules"
	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean the text on the clipboard",
	Long: `Clean the text on the clipboard in place with the on-demand rules.

With --auto only the rules set to AutoClean run, the same way 'clnbrd watch'
cleans on copy.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		auto, _ := cmd.Flags().GetBool("auto")
		explain, _ := cmd.Flags().GetBool("explain")
		rctx := rules.OnDemand
		if auto {
			rctx = rules.AutoCopy
		}

		svc := newLocalService()
		defer func() { _ = svc.Shutdown() }()

		ctx, cancel := commandContext(time.Second)
		defer cancel()

		res, err := svc.Clean(ctx, rctx)
		if err != nil {
			if quietSkip(err) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Nothing to clean: %v\n", err)
				return nil
			}
			return err
		}
		printResult(cmd.OutOrStdout(), res)
		if explain {
			printExplain(cmd.OutOrStdout(), res)
		}
		return nil
	},
}

var pasteCmd = &cobra.Command{
	Use:   "paste",
	Short: "Clean the clipboard, paste it and restore the original",
	Long: `Write the cleaned text to the clipboard, send the paste keystroke to the
focused application and then restore every original clipboard format.

The paste needs osascript on macOS or xdotool on Linux.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := newLocalService()
		defer func() { _ = svc.Shutdown() }()
		if _, ok := svc.Paster.(core.NopPaster); ok {
			return fmt.Errorf("no paste helper available on this system")
		}

		ctx, cancel := commandContext(5 * time.Second)
		defer cancel()

		res, err := svc.CleanAndPaste(ctx)
		if err != nil {
			if quietSkip(err) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Nothing to paste: %v\n", err)
				return nil
			}
			return err
		}
		printResult(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	cleanCmd.Flags().Bool("auto", false, "Run only the rules set to AutoClean")
	cleanCmd.Flags().Bool("explain", false, "List the active rules and which ones changed the text")
	rootCmd.AddCommand(cleanCmd, pasteCmd)
}
