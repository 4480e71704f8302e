package commands

import (
	"context"

	"cleanview/pkg/exporter"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether gitignored files are hidden",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureApp(); err != nil {
			return err
		}
		// 新进程里还没收集过规则，先收集一次才能给出规则数
		if _, err := CV.Excluder.LoadPatterns(context.Background()); err != nil {
			return err
		}
		exporter.PrintStatus(cmd.OutOrStdout(), CV.Excluder.Status())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
