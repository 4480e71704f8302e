// pkg/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cleanview/pkg/config"
	"cleanview/pkg/excluder"
	"cleanview/pkg/ignore"
	"cleanview/pkg/meta"
	"cleanview/pkg/settings"
	"cleanview/pkg/state"
	"cleanview/pkg/state/cache"
	"cleanview/pkg/state/disk"
	"cleanview/pkg/state/s3"

	"github.com/spf13/viper"
)

// App 是整个应用程序的依赖容器 (Dependency Container)
type App struct {
	Root     string
	Settings settings.Store
	State    state.Store
	Excluder *excluder.Excluder

	closers []func() error
}

// NewApp 是工厂函数，按 Viper 配置组装一个 workspace 的全部依赖
func NewApp(ctx context.Context) (*App, error) {
	// 1. 获取 workspace 根路径
	root, err := resolveRoot()
	if err != nil {
		return nil, err
	}

	// 2. 外部设置文档
	settingsPath := viper.GetString(config.KeySettingsPath)
	if settingsPath == "" {
		settingsPath = filepath.Join(root, ".vscode", "settings.json")
	}
	settingsStore := settings.NewFileStore(settingsPath, viper.GetString(config.KeySettingsKey))

	// 3. 状态存储
	stateStore, closer, err := initStateStore(ctx, root)
	if err != nil {
		return nil, err
	}

	a := &App{
		Root:     root,
		Settings: settingsStore,
		State:    stateStore,
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	// 4. 控制器
	ex, err := excluder.New(ctx, root, excluder.Deps{
		Collector: ignore.NewCollector(),
		Settings:  settingsStore,
		State:     stateStore,
		Options:   Options,
		Logger:    slog.Default(),
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize controller: %w", err)
	}
	a.Excluder = ex

	return a, nil
}

// Options 每次调用都重新读取配置
func Options() excluder.Options {
	return excluder.Options{
		IncludeNested:  viper.GetBool(config.KeyIncludeNested),
		CustomPatterns: viper.GetStringSlice(config.KeyCustomPatterns),
	}
}

// Close 释放状态存储持有的连接
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func resolveRoot() (string, error) {
	root := viper.GetString(config.KeyRoot)
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("%w: %v", excluder.ErrNotInitialized, err)
		}
		root = wd
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", excluder.ErrNotInitialized, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", excluder.ErrNotInitialized, abs)
	}
	return abs, nil
}

// initStateStore 根据 state.type 选择状态存储后端
func initStateStore(ctx context.Context, root string) (state.Store, func() error, error) {
	switch t := viper.GetString(config.KeyStateType); t {
	case "", "disk":
		path := viper.GetString(config.KeyStatePath)
		if path == "" {
			path = filepath.Join(root, ".cleanview", "state.json")
		}
		return disk.NewAdapter(path), nil, nil

	case "sqlite":
		path := viper.GetString(config.KeySQLitePath)
		if path == "" {
			path = filepath.Join(root, ".cleanview", "state.db")
		}
		db, err := meta.NewSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return meta.NewStateStore(meta.NewRepository(db), root), db.Close, nil

	case "postgres":
		db, err := meta.NewDB(ctx, meta.Config{
			Host:     viper.GetString("database.host"),
			Port:     viper.GetInt("database.port"),
			User:     viper.GetString("database.user"),
			Password: viper.GetString("database.password"),
			DBName:   viper.GetString("database.dbname"),
			SSLMode:  viper.GetString("database.sslmode"),
		})
		if err != nil {
			return nil, nil, err
		}
		return meta.NewStateStore(meta.NewRepository(db), root), db.Close, nil

	case "redis":
		store, err := cache.NewRedisStore(ctx, root, cache.Config{
			RedisURL: viper.GetString("redis.url"),
		})
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case "s3":
		store, err := s3.NewAdapter(ctx, root, s3.Config{
			Endpoint:        viper.GetString("s3.endpoint"),
			Region:          viper.GetString("s3.region"),
			Bucket:          viper.GetString("s3.bucket"),
			AccessKeyID:     viper.GetString("s3.access_key"),
			SecretAccessKey: viper.GetString("s3.secret_key"),
		})
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil

	default:
		return nil, nil, fmt.Errorf("unsupported state type: %s", t)
	}
}
