package excluder

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"cleanview/pkg/state"
	"cleanview/pkg/types"

	"github.com/stretchr/testify/require"
)

var errInjected = errors.New("injected failure")

// memSettings 是内存中的 settings.Store，可注入失败
type memSettings struct {
	mu        sync.Mutex
	m         types.ExclusionMap
	conds     map[string]json.RawMessage
	writes    int
	failRead  bool
	failWrite bool
}

func newMemSettings(initial types.ExclusionMap) *memSettings {
	if initial == nil {
		initial = types.ExclusionMap{}
	}
	return &memSettings{m: initial.Clone(), conds: map[string]json.RawMessage{}}
}

func (s *memSettings) ReadExclusions(ctx context.Context) (types.ExclusionMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRead {
		return nil, errInjected
	}
	return s.m.Clone(), nil
}

func (s *memSettings) ReadConditions(ctx context.Context) (map[string]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRead {
		return nil, errInjected
	}
	return maps.Clone(s.conds), nil
}

func (s *memSettings) WriteExclusions(ctx context.Context, m types.ExclusionMap) error {
	return s.RestoreExclusions(ctx, m, nil)
}

// RestoreExclusions 与 FileStore 语义一致：m 覆盖同名条件条目，conditions 原样写回
func (s *memSettings) RestoreExclusions(ctx context.Context, m types.ExclusionMap, conditions map[string]json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite {
		return errInjected
	}
	s.writes++
	s.m = m.Clone()
	for k := range m {
		delete(s.conds, k)
	}
	for k, raw := range conditions {
		delete(s.m, k)
		s.conds[k] = raw
	}
	return nil
}

// snapshot 返回当前 map (测试中也用来模拟外部修改)
func (s *memSettings) snapshot() types.ExclusionMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Clone()
}

func (s *memSettings) conditions() map[string]json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.conds)
}

func (s *memSettings) setCondition(key, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conds[key] = json.RawMessage(raw)
}

func (s *memSettings) set(key string, v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = v
}

// memState 是内存中的 state.Store，可注入失败
type memState struct {
	mu        sync.Mutex
	rec       state.Record
	failLoad  bool
	failSave  bool
	failClear bool
}

func (s *memState) Load(ctx context.Context) (state.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLoad {
		return state.Record{}, errInjected
	}
	return s.rec.Clone(), nil
}

func (s *memState) Save(ctx context.Context, r state.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave {
		return errInjected
	}
	s.rec = r.Clone()
	return nil
}

func (s *memState) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failClear {
		return errInjected
	}
	s.rec = state.Record{}
	return nil
}

func (s *memState) record() state.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.Clone()
}

type fixture struct {
	root     string
	settings *memSettings
	state    *memState
	opts     Options
	ex       *Excluder
}

// newFixture 创建一个带 .gitignore 的 workspace 和控制器
func newFixture(t *testing.T, gitignore string, initial types.ExclusionMap) *fixture {
	t.Helper()
	root := t.TempDir()
	if gitignore != "" {
		require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte(gitignore), 0644))
	}

	f := &fixture{
		root:     root,
		settings: newMemSettings(initial),
		state:    &memState{},
		opts:     DefaultOptions(),
	}
	f.ex = f.newExcluder(t)
	return f
}

// newExcluder 基于同一份外部状态重建控制器 (模拟进程重启)
func (f *fixture) newExcluder(t *testing.T) *Excluder {
	t.Helper()
	ex, err := New(context.Background(), f.root, Deps{
		Settings: f.settings,
		State:    f.state,
		Options:  func() Options { return f.opts },
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return ex
}
