package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default cleanview.yaml into the current directory",
	Long:  `Create cleanview.yaml with the default settings and the .cleanview directory used by the disk and sqlite state backends.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 获取当前路径
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		// 2. 状态目录
		if err := os.MkdirAll(filepath.Join(wd, ".cleanview"), 0755); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}

		// 3. 写配置文件 (已存在时不覆盖)
		cfgPath := filepath.Join(wd, "cleanview.yaml")
		if err := viper.SafeWriteConfigAs(cfgPath); err != nil {
			var exists viper.ConfigFileAlreadyExistsError
			if errors.As(err, &exists) {
				fmt.Fprintf(out, "⚠️  Config already exists in %s\n", cfgPath)
				return nil
			}
			return fmt.Errorf("failed to write config: %w", err)
		}

		fmt.Fprintf(out, "✅ Initialized CleanView config in %s\n", cfgPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
