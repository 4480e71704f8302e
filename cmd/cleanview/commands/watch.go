package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"cleanview/pkg/config"
	"cleanview/pkg/exporter"
	"cleanview/pkg/watch"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the exclusion map in sync with ignore files until interrupted",
	Long: `Watch every ignore file in the workspace and refresh the hidden set when one is created, changed or deleted.
When cleanview.autoHide is true the files are hidden on start. On SIGINT/SIGTERM all hiding is undone before exit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureApp(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runWatch(ctx, cmd.OutOrStdout())
	},
}

// runWatch 运行事件循环直到 ctx 取消，退出前撤销隐藏
func runWatch(ctx context.Context, out io.Writer) error {
	ex := CV.Excluder

	// 1. 启动时自动隐藏
	if viper.GetBool(config.KeyAutoHide) {
		if err := ex.Hide(ctx); err != nil {
			return err
		}
	}
	fmt.Fprintln(out, exporter.StatusText(ex.Status()))

	// 2. 注册 watcher
	w, err := watch.New(ex.Root(), watch.Config{Logger: slog.Default()})
	if err != nil {
		return err
	}

	// 3. 事件循环 (watcher 和订阅者各一个 goroutine)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx)
	})
	g.Go(func() error {
		watch.Subscribe(gctx, w.Events(), ex, func(ev watch.Event, err error) {
			if err != nil {
				fmt.Fprintf(out, "❌ Failed to refresh patterns: %v\n", err)
				return
			}
			fmt.Fprintln(out, watch.Message(ev))
			fmt.Fprintln(out, exporter.StatusText(ex.Status()))
		})
		return nil
	})
	fmt.Fprintf(out, "👀 Watching %s (Ctrl+C to stop)\n", ex.Root())

	runErr := g.Wait()
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	// 4. 退出前撤销隐藏；ctx 已取消，用新的 context
	if err := ex.Disable(context.Background()); err != nil {
		return errors.Join(runErr, err)
	}
	fmt.Fprintln(out, "👋 Hiding disabled, bye")
	return runErr
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
