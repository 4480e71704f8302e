package watch

import (
	"context"
	"log/slog"
)

// Target 是收到事件后需要刷新的一方 (excluder.Excluder 实现了它)
type Target interface {
	IsHidingGitignored() bool
	RefreshPatterns(ctx context.Context) error
}

// Notify 在每次刷新之后被调用，err 为刷新结果
type Notify func(ev Event, err error)

// Subscribe 串行消费事件：只在 Active 时刷新，同一时间最多一个刷新在执行
// 通道关闭或 ctx 取消时返回。
func Subscribe(ctx context.Context, events <-chan Event, target Target, notify Notify) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !target.IsHidingGitignored() {
				slog.Debug("ignore file changed while inactive", slog.String("path", ev.Path))
				continue
			}
			err := target.RefreshPatterns(ctx)
			if notify != nil {
				notify(ev, err)
			}
		}
	}
}

// Message 返回给用户看的提示
func Message(ev Event) string {
	switch ev.Kind {
	case Created:
		return "Detected new .gitignore file, patterns updated"
	case Deleted:
		return ".gitignore deleted, patterns updated"
	default:
		return ".gitignore changed, patterns updated"
	}
}
