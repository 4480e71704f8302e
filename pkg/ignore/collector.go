package ignore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cleanview/pkg/types"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultFileName 是要收集的 ignore 文件名
	DefaultFileName = ".gitignore"
	// DefaultConcurrency 是并发读取嵌套 ignore 文件的上限
	DefaultConcurrency = 8
)

// DefaultSkipDirs 返回遍历时永远跳过的依赖缓存目录 (隐藏目录另外按前缀跳过)
// 每次返回新的切片，调用方可以自由修改。
func DefaultSkipDirs() []string {
	return []string{"node_modules"}
}

var ErrEmptyRoot = errors.New("workspace root is empty")

// ReadError 表示某个 ignore 文件或目录读取失败
// 它只会被记录和跳过，不会中断整个收集过程。
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Collector 负责遍历目录树，收集所有 ignore 文件中的规则
type Collector struct {
	FileName    string
	SkipDirs    []string
	Concurrency int
	Logger      *slog.Logger
}

// NewCollector 使用默认配置创建收集器
func NewCollector() *Collector {
	return &Collector{
		FileName:    DefaultFileName,
		SkipDirs:    DefaultSkipDirs(),
		Concurrency: DefaultConcurrency,
		Logger:      slog.Default(),
	}
}

// Collect 收集 root 下的规则
// 1. 根目录的 ignore 文件 (如果存在)
// 2. includeNested 时，深度优先遍历子目录中的 ignore 文件
// 3. customRules 追加在最后，来源为 types.CustomSource
// 单个文件或目录读取失败只会记录警告，返回的 error 只可能来自 ctx 取消或空 root。
func (c *Collector) Collect(ctx context.Context, root string, includeNested bool, customRules []string) (*PatternStore, error) {
	if root == "" {
		return nil, ErrEmptyRoot
	}
	store := NewPatternStore(root)

	// 1. 根目录文件，必须排在最前
	rootFile := filepath.Join(root, c.fileName())
	if lines, err := readRules(rootFile); err == nil {
		store.add("", c.fileName(), lines)
	} else if !errors.Is(err, fs.ErrNotExist) {
		c.warn(store, &ReadError{Path: rootFile, Err: err})
	}

	// 2. 嵌套文件
	if includeNested {
		files := c.findNested(ctx, root, store)
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// 并发读取，但按发现顺序写回，保证输出顺序确定
		results := make([][]string, len(files))
		failures := make([]error, len(files))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.concurrency())
		for i, file := range files {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				lines, err := readRules(file)
				if err != nil {
					failures[i] = &ReadError{Path: file, Err: err}
					return nil
				}
				results[i] = lines
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		for i, file := range files {
			if failures[i] != nil {
				c.warn(store, failures[i])
				continue
			}
			rel, err := filepath.Rel(root, file)
			if err != nil {
				c.warn(store, &ReadError{Path: file, Err: err})
				continue
			}
			source := filepath.ToSlash(rel)
			store.add(filepath.ToSlash(filepath.Dir(rel)), source, results[i])
		}
	}

	// 3. 自定义规则
	var custom []string
	for _, p := range customRules {
		if p = strings.TrimSpace(p); p != "" {
			custom = append(custom, p)
		}
	}
	store.add("", types.CustomSource, custom)

	return store, nil
}

// findNested 深度优先查找 root 之下 (不含 root 本身) 的 ignore 文件
// 指向目录的符号链接会被跟随，路径保留链接本身的位置。
func (c *Collector) findNested(ctx context.Context, root string, store *PatternStore) []string {
	var files []string
	rootFile := filepath.Join(root, c.fileName())

	w := &Walker{
		SkipDirs: c.SkipDirs,
		OnFile: func(path string) {
			if filepath.Base(path) == c.fileName() && path != rootFile {
				files = append(files, path)
			}
		},
		OnError: func(path string, err error) {
			// 权限错误等：跳过该目录，继续遍历
			c.warn(store, &ReadError{Path: path, Err: err})
		},
	}
	_ = w.Walk(ctx, root)
	return files
}

// SkipDir 判断目录名是否应被跳过
// 供 watch 包复用，保证监听范围和收集范围一致。
func SkipDir(name string, skip []string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, s := range skip {
		if name == s {
			return true
		}
	}
	return false
}

func (c *Collector) fileName() string {
	if c.FileName == "" {
		return DefaultFileName
	}
	return c.FileName
}

func (c *Collector) concurrency() int {
	if c.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return c.Concurrency
}

func (c *Collector) warn(store *PatternStore, err error) {
	store.warn(err)
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("skipping unreadable ignore path", slog.Any("err", err))
}

// readRules 读取并解析一个 ignore 文件
// 去掉空行和 # 开头的注释行，其余行原样保留 (已 trim)
func readRules(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseLines(string(data)), nil
}

// ParseLines 把 ignore 文件内容切分成规则行
func ParseLines(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
