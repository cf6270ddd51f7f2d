package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage named rule profiles",
}

var profileListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List profiles",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		active := GlobalProfiles.ActiveID()
		for _, p := range GlobalProfiles.List() {
			mark := " "
			if p.ID == active {
				mark = "*"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %s\n", mark, p.ID[:8], p.Name)
		}
		return nil
	},
}

var profileCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a profile as a copy of another (the active one by default)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		if from == "" {
			from = GlobalProfiles.ActiveID()
		}
		p, err := GlobalProfiles.Create(from, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created profile %s [%s]\n", p.Name, p.ID[:8])
		return nil
	},
}

var profileRenameCmd = &cobra.Command{
	Use:   "rename <profile> <new-name>",
	Short: "Rename a profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := GlobalProfiles.Rename(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Renamed to %s\n", args[1])
		return nil
	},
}

var profileRmCmd = &cobra.Command{
	Use:     "rm <profile>",
	Aliases: []string{"delete"},
	Short:   "Delete a profile",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := GlobalProfiles.Find(args[0])
		if err != nil {
			return err
		}
		if err := GlobalProfiles.Delete(p.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted profile %s; active profile is %s\n", p.Name, activeProfileName())
		return nil
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use <profile>",
	Short: "Activate a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := GlobalProfiles.Activate(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Active profile: %s\n", p.Name)
		return nil
	},
}

func init() {
	profileCreateCmd.Flags().String("from", "", "Profile to copy (default: the active one)")
	profileCmd.AddCommand(profileListCmd, profileCreateCmd, profileRenameCmd, profileRmCmd, profileUseCmd)
	rootCmd.AddCommand(profileCmd)
}
