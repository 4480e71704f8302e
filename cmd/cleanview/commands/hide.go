package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var hideCmd = &cobra.Command{
	Use:   "hide",
	Short: "Hide gitignored files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureApp(); err != nil {
			return err
		}
		if CV.Excluder.IsHidingGitignored() {
			fmt.Fprintln(cmd.OutOrStdout(), "Already hiding gitignored files")
			return nil
		}
		if err := CV.Excluder.Hide(context.Background()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🙈 Gitignored files hidden (%d patterns)\n", CV.Excluder.Status().PatternCount)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show all files again",
	Long:  `Remove the exclusion keys added by hide and restore any values they replaced.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureApp(); err != nil {
			return err
		}
		if !CV.Excluder.IsHidingGitignored() {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing hidden")
			return nil
		}
		if err := CV.Excluder.Show(context.Background()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "👀 Showing all files")
		return nil
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Undo any hiding before the workspace is closed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureApp(); err != nil {
			return err
		}
		if err := CV.Excluder.Disable(context.Background()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "CleanView: Disabled")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hideCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(disableCmd)
}
