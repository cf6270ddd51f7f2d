package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/clnbrd/clnbrd/internal/core"
	"github.com/clnbrd/clnbrd/internal/rules"
	"github.com/clnbrd/clnbrd/internal/urlclean"
	"github.com/spf13/cobra"
)

var textCmd = &cobra.Command{
	Use:   "text [file]",
	Short: "Clean text from a file or stdin and print it",
	Long: `Run the cleaning pipeline over a file, or stdin when no file is given, and
print the result. The clipboard is not touched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		auto, _ := cmd.Flags().GetBool("auto")
		explain, _ := cmd.Flags().GetBool("explain")
		rctx := rules.OnDemand
		if auto {
			rctx = rules.AutoCopy
		}

		input, err := readInput(cmd, args)
		if err != nil {
			return err
		}

		svc, err := textService(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = svc.Shutdown() }()

		res, err := svc.CleanText(context.Background(), rctx, input)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), res.Text)
		if explain {
			printExplain(cmd.ErrOrStderr(), res)
		}
		return nil
	},
}

var urlCmd = &cobra.Command{
	Use:   "url [url]...",
	Short: "Remove tracking parameters from URLs",
	Long: `Remove tracking parameters from each URL argument and print the result, one
per line. With no arguments, every URL found in stdin is cleaned and the text
is printed with the cleaned URLs spliced back in.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		explain, _ := cmd.Flags().GetBool("explain")
		if len(args) == 0 {
			input, err := readInput(cmd, nil)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), urlclean.CleanURLsInText(input))
			return nil
		}
		for _, raw := range args {
			printReport(cmd.OutOrStdout(), urlclean.Explain(raw), explain)
		}
		return nil
	},
}

// textService returns the pipeline for the text command: the embedded one,
// or a running server's when --remote is set.
func textService(cmd *cobra.Command) (core.CleanService, error) {
	if !cmd.Flags().Changed("remote") {
		return core.NewLocalCleanService(nil, GlobalStore, GlobalSettings.ToRuntimeConfig()), nil
	}
	target, _ := cmd.Flags().GetString("remote")
	if target == localServer {
		target = ""
	}
	token, _ := cmd.Flags().GetString("token")
	baseURL, token, err := resolveAPIConnection(target, token)
	if err != nil {
		return nil, err
	}
	return core.NewRemoteCleanService(baseURL, token), nil
}

// localServer is the --remote value meaning the server recorded in the port file.
const localServer = "local"

// readInput reads the file named by args[0], or stdin.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()
		r = f
	}
	limit := int64(GlobalSettings.Safety.MaxClipboardSizeMB) * 1024 * 1024
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	if int64(len(data)) > limit {
		return "", &core.PayloadTooLargeError{Size: int64(len(data)), Limit: limit}
	}
	return string(data), nil
}

func init() {
	textCmd.Flags().Bool("auto", false, "Run only the rules set to AutoClean")
	textCmd.Flags().Bool("explain", false, "Print the active rules to stderr")
	textCmd.Flags().String("remote", "", "Clean on a running server (host:port, or the local one when empty)")
	textCmd.Flags().Lookup("remote").NoOptDefVal = localServer
	textCmd.Flags().String("token", "", "Bearer token for --remote (or set CLNBRD_TOKEN)")
	urlCmd.Flags().Bool("explain", false, "Show which rule matched and what was removed")
	rootCmd.AddCommand(textCmd, urlCmd)
}
