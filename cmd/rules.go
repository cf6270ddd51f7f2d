package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/clnbrd/clnbrd/internal/rules"
	"github.com/clnbrd/clnbrd/internal/tui"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show and change the cleaning rules of the active profile",
}

var rulesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List every stage with its mode",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		view := buildRulesView(GlobalStore.Snapshot(), activeProfileName())
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		}
		printRules(cmd.OutOrStdout(), view)
		return nil
	},
}

func printRules(w io.Writer, v rulesView) {
	fmt.Fprintf(w, "Profile: %s\n\n", v.Profile)
	fmt.Fprintf(w, "%3s  %-36s %-4s %-13s %s\n", "#", "STAGE", "ON", "MODE", "APPLIES")
	for _, s := range v.Stages {
		on := "no"
		if s.On && s.Enabled {
			on = "yes"
		}
		applies := "-"
		switch {
		case s.AutoCopy:
			applies = "hotkey+copy"
		case s.OnDemand:
			applies = "hotkey"
		}
		fmt.Fprintf(w, "%3d  %-36s %-4s %-13s %s\n", s.Index, s.ID, on, s.Mode, applies)
	}
	fmt.Fprintf(w, "\nEm-dash replacement: %q\n", v.EmdashReplacement)
	fmt.Fprintf(w, "Custom rules: %d\n", len(v.CustomRules))
}

// updateRules publishes an edit and copies it into the active profile.
func updateRules(fn func(d *rules.Draft) error) error {
	if _, err := GlobalStore.Update(fn); err != nil {
		return err
	}
	return GlobalProfiles.SyncActive()
}

func parseStages(args []string) ([]rules.StageID, error) {
	ids := make([]rules.StageID, 0, len(args))
	for _, a := range args {
		id, ok := rules.ParseStageID(a)
		if !ok {
			return nil, fmt.Errorf("unknown stage %q (see 'clnbrd rules list')", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func setStages(cmd *cobra.Command, args []string, on bool) error {
	ids, err := parseStages(args)
	if err != nil {
		return err
	}
	err = updateRules(func(d *rules.Draft) error {
		for _, id := range ids {
			d.SetEnabled(id, on)
			if rules.HasFlag(id) {
				d.Rules = d.Rules.WithFlag(id, on)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	state := "Disabled"
	if on {
		state = "Enabled"
	}
	for _, id := range ids {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", state, id)
	}
	return nil
}

var rulesEnableCmd = &cobra.Command{
	Use:   "enable <stage>...",
	Short: "Switch stages on (by id or number)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setStages(cmd, args, true)
	},
}

var rulesDisableCmd = &cobra.Command{
	Use:   "disable <stage>...",
	Short: "Switch stages off (by id or number)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setStages(cmd, args, false)
	},
}

var rulesModeCmd = &cobra.Command{
	Use:   "mode <stage> <OnDemandOnly|AutoClean|Disabled>",
	Short: "Set when a stage applies",
	Long: `Set when a stage applies:

  OnDemandOnly  only on 'clnbrd clean' and 'clnbrd paste'
  AutoClean     also on every copy while 'clnbrd watch' runs
  Disabled      never`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseStages(args[:1])
		if err != nil {
			return err
		}
		mode, err := rules.ParseMode(args[1])
		if err != nil {
			return err
		}
		if err := updateRules(func(d *rules.Draft) error {
			d.SetMode(ids[0], mode)
			return nil
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", ids[0], mode)
		return nil
	},
}

var rulesEmdashCmd = &cobra.Command{
	Use:   "emdash <replacement>",
	Short: "Set the text em and en dashes are replaced with",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := updateRules(func(d *rules.Draft) error {
			d.Rules = d.Rules.WithEmdashReplacement(args[0])
			return nil
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Em-dashes now become %q\n", args[0])
		return nil
	},
}

var rulesResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default stages and modes (custom rules are kept)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := updateRules(func(d *rules.Draft) error {
			d.Rules = rules.DefaultRuleSet().WithCustomRules(d.Rules.CustomRules())
			d.Configs = rules.DefaultConfigs()
			return nil
		}); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Rules reset to defaults.")
		return nil
	},
}

var rulesCustomCmd = &cobra.Command{
	Use:   "custom",
	Short: "Manage literal find/replace rules",
}

var rulesCustomListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List custom rules in the order they run",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list := GlobalStore.Snapshot().Rules.CustomRules()
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No custom rules.")
			return nil
		}
		for i, r := range list {
			fmt.Fprintf(cmd.OutOrStdout(), "%2d. %q -> %q\n", i+1, r.Find, r.Replace)
		}
		return nil
	},
}

var rulesCustomAddCmd = &cobra.Command{
	Use:   "add <find> <replace>",
	Short: "Append a find/replace rule",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == "" {
			return fmt.Errorf("find text must not be empty")
		}
		var n int
		if err := updateRules(func(d *rules.Draft) error {
			d.Rules = d.Rules.WithCustomRule(rules.CustomRule{Find: args[0], Replace: args[1]})
			n = len(d.Rules.CustomRules())
			return nil
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added rule %d: %q -> %q\n", n, args[0], args[1])
		return nil
	},
}

var rulesCustomRmCmd = &cobra.Command{
	Use:   "rm <number>",
	Short: "Remove a custom rule by its number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid rule number %q", args[0])
		}
		if err := updateRules(func(d *rules.Draft) error {
			if n < 1 || n > len(d.Rules.CustomRules()) {
				return fmt.Errorf("no custom rule %d", n)
			}
			d.Rules = d.Rules.WithoutCustomRule(n - 1)
			return nil
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed rule %d\n", n)
		return nil
	},
}

var rulesEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the rules interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tui.ApplyTheme(GlobalSettings.General.Theme)
		m := tui.NewRulesModel(GlobalStore.Snapshot(), activeProfileName())
		final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
		if err != nil {
			return fmt.Errorf("error running editor: %w", err)
		}
		result, ok := final.(tui.RulesModel)
		if !ok || !result.Saved() {
			fmt.Fprintln(cmd.OutOrStdout(), "No changes saved.")
			return nil
		}
		if err := updateRules(func(d *rules.Draft) error {
			result.Apply(d)
			return nil
		}); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Rules saved.")
		return nil
	},
}

func init() {
	rulesListCmd.Flags().Bool("json", false, "Print as JSON")
	rulesCustomCmd.AddCommand(rulesCustomListCmd, rulesCustomAddCmd, rulesCustomRmCmd)
	rulesCmd.AddCommand(rulesListCmd, rulesEnableCmd, rulesDisableCmd, rulesModeCmd,
		rulesEmdashCmd, rulesResetCmd, rulesCustomCmd, rulesEditCmd)
	rootCmd.AddCommand(rulesCmd)
}
