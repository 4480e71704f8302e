package commands

import (
	"context"
	"fmt"

	"cleanview/pkg/exporter"

	"github.com/spf13/cobra"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle hiding of gitignored files",
	Long:  `Hide gitignored files if they are currently shown, otherwise restore the exclusion map to what it was before hiding.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureApp(); err != nil {
			return err
		}

		hiding, err := CV.Excluder.Toggle(context.Background())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if hiding {
			fmt.Fprintf(out, "🙈 Gitignored files hidden (%d patterns)\n", CV.Excluder.Status().PatternCount)
		} else {
			fmt.Fprintln(out, "👀 Showing all files")
		}
		fmt.Fprintln(out, exporter.StatusText(CV.Excluder.Status()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toggleCmd)
}
