package meta

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"cleanview/pkg/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestRepository_StateLifecycle(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	scope := state.ScopeID("/work/project")

	// 1. 初始状态
	_, err := repo.GetState(ctx, scope)
	assert.ErrorIs(t, err, ErrStateNotFound)

	// 2. 首次写入
	mustPutState(t, repo, WorkspaceState{
		Scope:     scope,
		Active:    true,
		OwnedKeys: datatypes.JSON(`["**/*.log"]`),
	}, 0, "首次写入应该成功")

	ws, err := repo.GetState(ctx, scope)
	require.NoError(t, err)
	assert.True(t, ws.Active)
	assert.Equal(t, int64(1), ws.Version)
	assert.JSONEq(t, `["**/*.log"]`, string(ws.OwnedKeys))

	// 3. 基于版本 1 更新
	mustPutState(t, repo, WorkspaceState{Scope: scope, OwnedKeys: datatypes.JSON(`[]`)}, 1)
	ws, err = repo.GetState(ctx, scope)
	require.NoError(t, err)
	assert.False(t, ws.Active)
	assert.Equal(t, int64(2), ws.Version)

	// 4. 删除是幂等的
	require.NoError(t, repo.DeleteState(ctx, scope))
	require.NoError(t, repo.DeleteState(ctx, scope))
	_, err = repo.GetState(ctx, scope)
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestRepository_OptimisticLocking(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	scope := state.ScopeID("/work/project")

	mustPutState(t, repo, WorkspaceState{Scope: scope}, 0)

	// 进程 B 基于版本 1 先写入成功
	mustPutState(t, repo, WorkspaceState{Scope: scope, Active: true}, 1)

	// 进程 A 拿着过期的版本 1 写入
	err := repo.PutState(ctx, WorkspaceState{Scope: scope, Active: false}, 1)
	assert.ErrorIs(t, err, ErrConcurrentUpdate)

	// 重复创建同样被拒绝
	err = repo.PutState(ctx, WorkspaceState{Scope: scope}, 0)
	assert.ErrorIs(t, err, ErrConcurrentUpdate)

	ws, err := repo.GetState(ctx, scope)
	require.NoError(t, err)
	assert.True(t, ws.Active, "应该保持为进程 B 的值")
	assert.Equal(t, int64(2), ws.Version)
}

func TestStateStore_RoundTrip(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "ws")

	store := NewStateStore(repo, root)

	rec, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, rec.IsZero())

	want := state.Record{
		Active:    true,
		OwnedKeys: []string{"**/*.log", "build/**"},
		Shadowed:  map[string]bool{"build/**": false},
		Conditions: map[string]json.RawMessage{
			"**/*.log": json.RawMessage(`{"when":"$(basename).txt"}`),
		},
	}
	require.NoError(t, store.Save(ctx, want))
	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// 第二次 Save 走 CAS 更新路径
	want2 := state.Record{Active: true, OwnedKeys: []string{"dist/**"}}
	require.NoError(t, store.Save(ctx, want2))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want2, got)

	// 另一个 workspace 互不影响
	other := NewStateStore(repo, filepath.Join(t.TempDir(), "other"))
	rec, err = other.Load(ctx)
	require.NoError(t, err)
	assert.True(t, rec.IsZero())

	require.NoError(t, store.Clear(ctx))
	rec, err = store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, rec.IsZero())
}

func TestNewSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")
	db, err := NewSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	store := NewStateStore(NewRepository(db), t.TempDir())
	require.NoError(t, store.Save(context.Background(), state.Record{Active: true}))
	rec, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, rec.Active)
	assert.Nil(t, rec.OwnedKeys)
}
