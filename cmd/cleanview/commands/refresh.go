package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-read ignore files and re-apply hiding",
	Long:  `Re-collect the ignore rules. When hiding is active the exclusion map is rebuilt from the new rules; otherwise nothing is written.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureApp(); err != nil {
			return err
		}
		if err := CV.Excluder.Refresh(context.Background()); err != nil {
			return err
		}

		if CV.Excluder.IsHidingGitignored() {
			fmt.Fprintf(cmd.OutOrStdout(), "🔄 Patterns refreshed (%d patterns)\n", CV.Excluder.Status().PatternCount)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Not hiding, nothing to refresh")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
