package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// 配置 key (viper 对 key 大小写不敏感)
const (
	KeyRoot           = "workspace.root"
	KeyIncludeNested  = "cleanview.includeNestedGitignore"
	KeyCustomPatterns = "cleanview.customPatterns"
	KeyAutoHide       = "cleanview.autoHide"
	KeySettingsPath   = "settings.path"
	KeySettingsKey    = "settings.key"
	KeyStateType      = "state.type"
	KeyStatePath      = "state.path"
	KeySQLitePath     = "state.sqlite.path"
	KeyLogLevel       = "log.level"
)

// Load 初始化 Viper 配置
// cfgFile: 可选，用户显式指定的配置文件路径
func Load(cfgFile string) error {
	// 1. 设置默认值 (Defaults)
	setDefaults()

	// 2. 配置搜索路径
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// 搜索顺序：当前目录 -> 当前目录下的 .cleanview -> 用户主目录下的 .cleanview
		viper.AddConfigPath(".")
		viper.AddConfigPath(".cleanview")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".cleanview"))
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("cleanview")
	}

	// 3. 读取环境变量 (CLEANVIEW_STATE_TYPE 等)
	viper.SetEnvPrefix("CLEANVIEW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 4. 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// 没有配置文件不算错，使用默认值和环境变量
			slog.Debug("no config file found, using defaults/env vars")
		} else {
			return fmt.Errorf("fatal error config file: %w", err)
		}
	} else {
		slog.Debug("using config file", slog.String("path", viper.ConfigFileUsed()))
	}

	return nil
}

func setDefaults() {
	// 与扩展的默认配置保持一致
	viper.SetDefault(KeyIncludeNested, true)
	viper.SetDefault(KeyCustomPatterns, []string{})
	viper.SetDefault(KeyAutoHide, true)

	// 外部设置文档
	viper.SetDefault(KeySettingsKey, "files.exclude")

	// 状态存储默认值
	viper.SetDefault(KeyStateType, "disk")
	viper.SetDefault("redis.url", "redis://localhost:6379/0")
	viper.SetDefault("s3.region", "us-east-1")

	// 数据库默认值
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault(KeyLogLevel, "info")
}

// ParseLevel 把配置中的日志级别转换为 slog.Level，未知值按 info 处理
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
