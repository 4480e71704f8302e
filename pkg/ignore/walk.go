package ignore

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
)

// Walker 深度优先遍历目录树，并跟随指向目录的符号链接
// 按真实路径去重，同一个目录只访问一次，符号链接成环时也会终止。
type Walker struct {
	SkipDirs []string

	// OnDir 对每个访问到的目录调用 (包括起点)，返回 error 会中止遍历
	OnDir func(path string) error
	// OnFile 对每个非目录条目调用
	OnFile func(path string)
	// OnError 报告无法读取的目录，遍历继续
	OnError func(path string, err error)
}

// Walk 从 root 开始遍历；root 本身不受 SkipDirs 影响
// 返回的 error 只可能来自 ctx 取消或 OnDir。
func (w *Walker) Walk(ctx context.Context, root string) error {
	return w.walk(ctx, root, make(map[string]bool))
}

func (w *Walker) walk(ctx context.Context, dir string, visited map[string]bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		w.report(dir, err)
		return nil
	}
	if visited[real] {
		return nil
	}
	visited[real] = true

	if w.OnDir != nil {
		if err := w.OnDir(dir); err != nil {
			return err
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.report(dir, err)
		return nil
	}

	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		isDir := e.IsDir()
		if e.Type()&fs.ModeSymlink != 0 {
			// 悬空链接按普通条目处理，由调用方在读取时报错
			if info, err := os.Stat(path); err == nil {
				isDir = info.IsDir()
			}
		}

		if !isDir {
			if w.OnFile != nil {
				w.OnFile(path)
			}
			continue
		}
		if SkipDir(e.Name(), w.SkipDirs) {
			continue
		}
		if err := w.walk(ctx, path, visited); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) report(path string, err error) {
	if w.OnError != nil {
		w.OnError(path, err)
	}
}
