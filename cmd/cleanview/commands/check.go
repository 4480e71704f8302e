package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"cleanview/pkg/exporter"
	"cleanview/pkg/translate"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <path>...",
	Short: "Report whether paths are gitignored and which exclusion keys hide them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureApp(); err != nil {
			return err
		}
		ctx := context.Background()

		// 1. 收集规则 (判定用 gitignore 语义)
		if _, err := CV.Excluder.LoadPatterns(ctx); err != nil {
			return err
		}

		// 2. 编译当前 exclusion map (展示命中的 key)
		current, err := CV.Settings.ReadExclusions(ctx)
		if err != nil {
			return err
		}
		keys, err := translate.CompileKeys(current)
		if err != nil {
			slog.Warn("some exclusion keys could not be compiled", slog.Any("error", err))
		}

		// 3. 逐个路径判定
		root := CV.Excluder.Root()
		for _, arg := range args {
			abs, err := filepath.Abs(arg)
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(root, abs)
			if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				return fmt.Errorf("path %s is outside workspace %s", arg, root)
			}
			exporter.PrintCheck(cmd.OutOrStdout(), arg, CV.Excluder.ShouldIgnore(abs), keys.Match(rel))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
