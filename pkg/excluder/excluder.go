// Package excluder 把 gitignore 规则合并进外部的 exclusion map，并能精确撤销。
//
// 状态机只有两个状态：Inactive (初始) 和 Active。
// hide 写入 exclusion map 成功后才持久化 OwnedKeys；show 先读 OwnedKeys，
// 写回过滤后的 map，最后才清除记录。
package excluder

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"sync"

	"cleanview/pkg/ignore"
	"cleanview/pkg/settings"
	"cleanview/pkg/state"
	"cleanview/pkg/translate"
	"cleanview/pkg/types"
)

// Options 是每次 hide 时读取的配置输入
type Options struct {
	IncludeNested  bool
	CustomPatterns []string
}

// DefaultOptions 对应配置的默认值
func DefaultOptions() Options {
	return Options{IncludeNested: true}
}

// Deps 是控制器的依赖，全部通过构造函数注入
type Deps struct {
	Collector *ignore.Collector
	Settings  settings.Store
	State     state.Store

	// Options 在每次 hide 时调用，这样配置修改无需重建控制器
	Options func() Options
	Logger  *slog.Logger
}

// Excluder 是 VisibilityController
// 所有修改操作都持有同一把锁串行执行。
type Excluder struct {
	root      string
	collector *ignore.Collector
	settings  settings.Store
	state     state.Store
	options   func() Options
	logger    *slog.Logger

	mu       sync.Mutex
	active   bool
	patterns *ignore.PatternStore
}

// New 创建控制器，并从持久化记录恢复 active 状态
func New(ctx context.Context, root string, deps Deps) (*Excluder, error) {
	if root == "" {
		return nil, ErrNotInitialized
	}

	e := &Excluder{
		root:      root,
		collector: deps.Collector,
		settings:  deps.Settings,
		state:     deps.State,
		options:   deps.Options,
		logger:    deps.Logger,
	}
	if e.collector == nil {
		e.collector = ignore.NewCollector()
	}
	if e.options == nil {
		e.options = DefaultOptions
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	rec, err := e.state.Load(ctx)
	if err != nil {
		return nil, storeErr("load state", err)
	}
	// 有 OwnedKeys 就说明上次的 hide 还没被撤销
	e.active = rec.Active || len(rec.OwnedKeys) > 0
	if e.active {
		e.logger.Info("restored active state", slog.String("root", root), slog.Int("keys", len(rec.OwnedKeys)))
	}
	return e, nil
}

// Root 返回 workspace root
func (e *Excluder) Root() string { return e.root }

// Hide 把 gitignore 规则合并进 exclusion map；已经 Active 时什么都不做
func (e *Excluder) Hide(ctx context.Context) error {
	if err := e.ready(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hide(ctx)
}

// Show 撤销 hide 写入的 key；Inactive 时什么都不做
func (e *Excluder) Show(ctx context.Context) error {
	if err := e.ready(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.show(ctx)
}

// Refresh 在 Active 时先 show 再 hide，从干净的基线重建规则
func (e *Excluder) Refresh(ctx context.Context) error {
	if err := e.ready(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return nil
	}
	if err := e.show(ctx); err != nil {
		return err
	}
	return e.hide(ctx)
}

// RefreshPatterns 是 ignore 文件变化时由监听方调用的入口
func (e *Excluder) RefreshPatterns(ctx context.Context) error {
	return e.Refresh(ctx)
}

// Toggle 切换状态，返回切换后是否正在隐藏
func (e *Excluder) Toggle(ctx context.Context) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active {
		if err := e.show(ctx); err != nil {
			return e.active, err
		}
		return false, nil
	}
	if err := e.hide(ctx); err != nil {
		return e.active, err
	}
	return true, nil
}

// Disable 永久关闭 (等同于 Show)，幂等
func (e *Excluder) Disable(ctx context.Context) error {
	return e.Show(ctx)
}

// IsHidingGitignored 返回当前状态
func (e *Excluder) IsHidingGitignored() bool {
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// GitignorePatterns 返回最近一次收集的规则，首次收集前为空
func (e *Excluder) GitignorePatterns() []types.Rule {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.patterns.Rules()
}

// Status 返回给状态展示用的快照
func (e *Excluder) Status() types.Status {
	if e == nil {
		return types.Status{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return types.Status{Active: e.active, PatternCount: e.patterns.Len()}
}

// LoadPatterns 只收集规则 (不修改任何外部状态)，用于诊断和展示
func (e *Excluder) LoadPatterns(ctx context.Context) (*ignore.PatternStore, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	patterns, err := e.collect(ctx)
	if err != nil {
		return nil, err
	}
	e.patterns = patterns
	return patterns, nil
}

// ShouldIgnore 用最近一次收集的规则判断路径是否被忽略
func (e *Excluder) ShouldIgnore(path string) bool {
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.patterns.Matches(path)
}

func (e *Excluder) ready() error {
	if e == nil || e.root == "" {
		return ErrNotInitialized
	}
	return nil
}

func (e *Excluder) collect(ctx context.Context) (*ignore.PatternStore, error) {
	opts := e.options()
	return e.collector.Collect(ctx, e.root, opts.IncludeNested, opts.CustomPatterns)
}

// hide 调用方必须持有锁
func (e *Excluder) hide(ctx context.Context) error {
	if e.active {
		return nil
	}

	// 1. 收集并转换规则
	patterns, err := e.collect(ctx)
	if err != nil {
		return err
	}
	e.patterns = patterns
	ours := translate.BuildExclusionMap(patterns.Rules())

	// 2. 读取外部 map，记录会被覆盖的原值
	current, err := e.settings.ReadExclusions(ctx)
	if err != nil {
		return storeErr("read exclusions", err)
	}
	conds, err := e.settings.ReadConditions(ctx)
	if err != nil {
		return storeErr("read exclusions", err)
	}
	var (
		shadowed   map[string]bool
		conditions map[string]json.RawMessage
	)
	for k := range ours {
		if v, ok := current[k]; ok {
			if shadowed == nil {
				shadowed = make(map[string]bool)
			}
			shadowed[k] = v
		} else if raw, ok := conds[k]; ok {
			if conditions == nil {
				conditions = make(map[string]json.RawMessage)
			}
			conditions[k] = raw
		}
	}

	// 3. 合并写回 (我们的值在冲突时胜出)
	merged := current.Merge(ours)
	if !maps.Equal(merged, current) || len(conditions) > 0 {
		if err := e.settings.WriteExclusions(ctx, merged); err != nil {
			return storeErr("write exclusions", err)
		}
	}

	// 4. map 写入成功之后才持久化 OwnedKeys
	rec := state.Record{Active: true, OwnedKeys: ours.Keys(), Shadowed: shadowed, Conditions: conditions}
	if err := e.state.Save(ctx, rec); err != nil {
		return storeErr("save state", err)
	}

	e.active = true
	e.logger.Info("hide applied",
		slog.String("root", e.root),
		slog.Int("rules", patterns.Len()),
		slog.Int("keys", len(ours)),
		slog.Int("shadowed", len(shadowed)+len(conditions)),
	)
	return nil
}

// show 调用方必须持有锁
func (e *Excluder) show(ctx context.Context) error {
	if !e.active {
		return nil
	}

	// 1. 读取我们拥有的 key
	rec, err := e.state.Load(ctx)
	if err != nil {
		return storeErr("load state", err)
	}
	if len(rec.OwnedKeys) == 0 {
		if err := e.state.Clear(ctx); err != nil {
			return storeErr("clear state", err)
		}
		e.active = false
		return nil
	}

	// 2. 读取当前 map，删除我们的 key，还原被覆盖的原值
	current, err := e.settings.ReadExclusions(ctx)
	if err != nil {
		return storeErr("read exclusions", err)
	}
	filtered := current.Without(rec.OwnedKeys)
	maps.Copy(filtered, rec.Shadowed)

	// 3. 写回 (条件条目在同一次写入中原样还原)
	if !maps.Equal(filtered, current) || len(rec.Conditions) > 0 {
		if err := e.settings.RestoreExclusions(ctx, filtered, rec.Conditions); err != nil {
			return storeErr("write exclusions", err)
		}
	}

	// 4. 最后清除记录
	if err := e.state.Clear(ctx); err != nil {
		return storeErr("clear state", err)
	}

	e.active = false
	e.logger.Info("show applied", slog.String("root", e.root), slog.Int("keys", len(rec.OwnedKeys)))
	return nil
}
