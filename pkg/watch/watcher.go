// Package watch 监听 workspace 中的 ignore 文件变化，并以消息的形式发布出去。
//
// 监听范围与 ignore.Collector 的遍历范围一致：隐藏目录和依赖缓存目录不监听。
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cleanview/pkg/ignore"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce 是合并连续事件的时间窗口 (编辑器保存通常会产生多次写入)
const DefaultDebounce = 200 * time.Millisecond

type Kind int

const (
	Created Kind = iota + 1
	Changed
	Deleted
)

func (k Kind) String() string {
	switch k {
	case Created:
		return "created"
	case Changed:
		return "changed"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Event 是 "规则已变化" 消息
type Event struct {
	Kind Kind
	Path string // 变化的 ignore 文件 (绝对路径)
}

// Watcher 监听 root 下所有 ignore 文件
type Watcher struct {
	root     string
	fileName string
	skipDirs []string
	debounce time.Duration
	logger   *slog.Logger

	fsw    *fsnotify.Watcher
	events chan Event
}

// Config 是 Watcher 的可选参数，零值使用默认值
type Config struct {
	FileName string
	SkipDirs []string
	Debounce time.Duration
	Logger   *slog.Logger
}

// New 创建 Watcher 并注册 root 下的全部目录
func New(root string, cfg Config) (*Watcher, error) {
	if cfg.FileName == "" {
		cfg.FileName = ignore.DefaultFileName
	}
	if cfg.SkipDirs == nil {
		cfg.SkipDirs = ignore.DefaultSkipDirs()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		root:     root,
		fileName: cfg.FileName,
		skipDirs: cfg.SkipDirs,
		debounce: cfg.Debounce,
		logger:   cfg.Logger,
		fsw:      fsw,
		events:   make(chan Event, 16),
	}
	if _, err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Events 返回事件通道；Run 退出后通道关闭
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run 处理文件系统事件直到 ctx 取消
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)
	defer w.fsw.Close()

	var (
		pending *Event
		timer   *time.Timer
		fire    <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", slog.Any("err", err))

		case fe, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			ev, ok := w.translate(fe)
			if !ok {
				continue
			}
			pending = merge(pending, ev)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if pending == nil {
				continue
			}
			select {
			case w.events <- *pending:
			case <-ctx.Done():
				return ctx.Err()
			}
			pending = nil
		}
	}
}

// translate 把 fsnotify 事件转换为 ignore 文件事件
// 新建目录会被加入监听；目录里已有的 ignore 文件视为新建。
func (w *Watcher) translate(fe fsnotify.Event) (Event, bool) {
	if fe.Has(fsnotify.Create) {
		if info, err := os.Stat(fe.Name); err == nil && info.IsDir() {
			if ignore.SkipDir(filepath.Base(fe.Name), w.skipDirs) {
				return Event{}, false
			}
			found, err := w.addTree(fe.Name)
			if err != nil {
				w.logger.Warn("failed to watch new directory", slog.String("path", fe.Name), slog.Any("err", err))
			}
			if found != "" {
				return Event{Kind: Created, Path: found}, true
			}
			return Event{}, false
		}
	}

	if filepath.Base(fe.Name) != w.fileName {
		return Event{}, false
	}
	switch {
	case fe.Has(fsnotify.Create):
		return Event{Kind: Created, Path: fe.Name}, true
	case fe.Has(fsnotify.Write):
		return Event{Kind: Changed, Path: fe.Name}, true
	case fe.Has(fsnotify.Remove), fe.Has(fsnotify.Rename):
		return Event{Kind: Deleted, Path: fe.Name}, true
	}
	return Event{}, false
}

// addTree 注册 dir 及其子目录 (跟随目录符号链接)，返回遇到的第一个 ignore 文件
func (w *Watcher) addTree(dir string) (string, error) {
	var found string
	walker := &ignore.Walker{
		SkipDirs: w.skipDirs,
		OnDir: func(path string) error {
			if err := w.fsw.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			return nil
		},
		OnFile: func(path string) {
			if found == "" && filepath.Base(path) == w.fileName {
				found = path
			}
		},
		OnError: func(path string, err error) {
			w.logger.Warn("skipping unreadable directory", slog.String("path", path), slog.Any("err", err))
		},
	}
	err := walker.Walk(context.Background(), dir)
	return found, err
}

// merge 合并窗口内的事件：新建后紧跟的写入仍然算新建
func merge(pending *Event, next Event) *Event {
	if pending != nil && pending.Kind == Created && next.Kind == Changed {
		return pending
	}
	return &next
}
