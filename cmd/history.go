package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/clnbrd/clnbrd/internal/clipboard"
	"github.com/clnbrd/clnbrd/internal/rules"
	"github.com/clnbrd/clnbrd/internal/state"
	"github.com/clnbrd/clnbrd/internal/utils"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse clipboard history recorded by watch, clean and paste",
}

type historyEntry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Source    string    `json:"source"`
	Preview   string    `json:"preview"`
	Formats   []string  `json:"formats"`
	ImageType string    `json:"image_type,omitempty"`
	Size      int64     `json:"size"`
}

func toHistoryEntry(it state.Item) historyEntry {
	e := historyEntry{
		ID:        it.ID,
		CreatedAt: it.CreatedAt,
		Source:    it.Source,
		Preview:   it.Preview,
		ImageType: it.ImageType,
		Size:      it.Size,
	}
	for _, r := range it.Payload {
		e.Formats = append(e.Formats, string(r.Format))
	}
	return e
}

var historyListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recent clipboard items, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		items, err := GlobalHistory.List(limit)
		if err != nil {
			return err
		}
		if asJSON {
			entries := make([]historyEntry, 0, len(items))
			for _, it := range items {
				entries = append(entries, toHistoryEntry(it))
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "History is empty.")
			return nil
		}
		for _, it := range items {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %-9s %9s  %s\n",
				it.ID[:8], it.CreatedAt.Local().Format("2006-01-02 15:04"), it.Source,
				utils.ConvertBytesToHumanReadable(it.Size), it.Preview)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the text of a history item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		it, err := GlobalHistory.Get(args[0])
		if err != nil {
			return err
		}
		if format != "" {
			f, ok := historyFormats[format]
			if !ok {
				return fmt.Errorf("unknown format %q (want plain, rtf or html)", format)
			}
			data, ok := it.Payload.Get(f)
			if !ok {
				return fmt.Errorf("item %s has no %s representation", it.ID[:8], format)
			}
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}
		text, _, ok := clipboard.ExtractText(it.Payload)
		if !ok {
			return fmt.Errorf("item %s holds no text (%s)", it.ID[:8], it.Preview)
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

var historyFormats = map[string]clipboard.Format{
	"plain": clipboard.FormatPlain,
	"rtf":   clipboard.FormatRTF,
	"html":  clipboard.FormatHTML,
}

var historyRestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Put a history item back on the clipboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clean, _ := cmd.Flags().GetBool("clean")
		it, err := GlobalHistory.Get(args[0])
		if err != nil {
			return err
		}

		svc := newLocalService()
		defer func() { _ = svc.Shutdown() }()
		svc.History = nil

		if err := svc.Board.Restore(it.Payload); err != nil {
			return fmt.Errorf("restore clipboard: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored %s: %s\n", it.ID[:8], it.Preview)
		if !clean {
			return nil
		}

		ctx, cancel := commandContext(time.Second)
		defer cancel()
		res, err := svc.Clean(ctx, rules.OnDemand)
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), res)
		return nil
	},
}

var historyRmCmd = &cobra.Command{
	Use:   "rm <id>...",
	Short: "Delete history items",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, ref := range args {
			if err := GlobalHistory.Delete(ref); err != nil {
				return fmt.Errorf("%s: %w", ref, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", ref)
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every history item",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := GlobalHistory.Clear()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d items.\n", n)
		return nil
	},
}

func init() {
	historyListCmd.Flags().IntP("limit", "n", 20, "Maximum number of items (0 for all)")
	historyListCmd.Flags().Bool("json", false, "Print as JSON")
	historyShowCmd.Flags().String("format", "", "Print one raw representation: plain, rtf or html")
	historyRestoreCmd.Flags().Bool("clean", false, "Clean the restored text in place")
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyRestoreCmd, historyRmCmd, historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
