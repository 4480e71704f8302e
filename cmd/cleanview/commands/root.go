package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"cleanview/pkg/app"
	"cleanview/pkg/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	// 全局应用实例，供子命令使用
	CV *app.App
)

var rootCmd = &cobra.Command{
	Use:   "cleanview",
	Short: "CleanView: hide gitignored files from the editor file tree",
	// PersistentPreRunE 会在所有子命令执行前运行
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		// init 命令就是去创建配置的，不需要组装 App
		if cmd.Name() == "init" {
			return nil
		}
		// 测试里会预先注入 CV
		if CV != nil {
			return nil
		}

		var err error
		CV, err = app.NewApp(context.Background())
		if err != nil {
			return fmt.Errorf("failed to initialize cleanview: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if CV == nil {
			return nil
		}
		return CV.Close()
	},
	SilenceUsage: true,
}

// Execute 是入口
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// 1. 全局参数 --config
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./cleanview.yaml or $HOME/.cleanview/cleanview.yaml)")

	// 2. --root 绑定到 workspace.root，命令行优先于配置文件
	rootCmd.PersistentFlags().String("root", "", "workspace root (default is the current directory)")
	if err := viper.BindPFlag(config.KeyRoot, rootCmd.PersistentFlags().Lookup("root")); err != nil {
		fmt.Println("Failed to bind flag:", err)
		os.Exit(1)
	}

	rootCmd.PersistentFlags().String("state", "", "state backend: disk, sqlite, postgres, redis, s3")
	if err := viper.BindPFlag(config.KeyStateType, rootCmd.PersistentFlags().Lookup("state")); err != nil {
		fmt.Println("Failed to bind flag:", err)
		os.Exit(1)
	}
}

// initConfig 读取配置文件和环境变量
func initConfig() {
	if err := config.Load(cfgFile); err != nil {
		fmt.Println("Config error:", err)
		os.Exit(1)
	}
}

func setupLogger() {
	level := config.ParseLevel(viper.GetString(config.KeyLogLevel))
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func ensureApp() error {
	if CV == nil || CV.Excluder == nil {
		return fmt.Errorf("application not initialized")
	}
	return nil
}
