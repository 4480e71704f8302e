package commands

import (
	"context"
	"fmt"

	"cleanview/pkg/exporter"

	"github.com/spf13/cobra"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List the collected ignore rules and their exclusion keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureApp(); err != nil {
			return err
		}

		store, err := CV.Excluder.LoadPatterns(context.Background())
		if err != nil {
			return err
		}
		if err := exporter.PrintPatterns(cmd.OutOrStdout(), store.Rules()); err != nil {
			return err
		}

		for _, w := range store.Warnings() {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  %s\n", w)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(patternsCmd)
}
