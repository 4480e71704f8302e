package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cleanview/pkg/state"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrStateNotFound    = errors.New("workspace state not found")
	ErrConcurrentUpdate = errors.New("concurrent update detected (CAS failed)")
)

// Repository 封装所有对 SQL 数据库的操作
type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// GetState 读取 workspace 状态
func (r *Repository) GetState(ctx context.Context, scope string) (*WorkspaceState, error) {
	var ws WorkspaceState
	err := r.db.GetConn().WithContext(ctx).
		Where("scope = ?", scope).
		First(&ws).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

// PutState 原子更新状态 (CAS)
// oldVersion: 之前读到的版本号，0 表示期望记录不存在。
func (r *Repository) PutState(ctx context.Context, ws WorkspaceState, oldVersion int64) error {
	return r.db.GetConn().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 场景 A: 第一次创建
		if oldVersion == 0 {
			ws.Version = 1
			if err := tx.Create(&ws).Error; err != nil {
				// 兼容不同数据库 (PG 与 SQLite) 的唯一约束错误
				if errors.Is(err, gorm.ErrDuplicatedKey) ||
					strings.Contains(err.Error(), "UNIQUE constraint failed") {
					return ErrConcurrentUpdate
				}
				return fmt.Errorf("failed to create state: %w", err)
			}
			return nil
		}

		// 场景 B: 更新现有记录
		// UPDATE workspace_states SET ..., version = version + 1 WHERE scope = ? AND version = ?
		result := tx.Model(&WorkspaceState{}).
			Where("scope = ? AND version = ?", ws.Scope, oldVersion).
			Updates(map[string]any{
				"root":       ws.Root,
				"active":     ws.Active,
				"owned_keys": ws.OwnedKeys,
				"shadowed":   ws.Shadowed,
				"conditions": ws.Conditions,
				"version":    gorm.Expr("version + 1"),
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrConcurrentUpdate
		}
		return nil
	})
}

// DeleteState 删除状态 (幂等)
func (r *Repository) DeleteState(ctx context.Context, scope string) error {
	return r.db.GetConn().WithContext(ctx).
		Where("scope = ?", scope).
		Delete(&WorkspaceState{}).Error
}

// -----------------------------------------------------------------------------
// state.Store 适配
// -----------------------------------------------------------------------------

// StateStore 用 Repository 实现 state.Store，作用域为一个 workspace root
type StateStore struct {
	repo  *Repository
	scope string
	root  string
}

func NewStateStore(repo *Repository, root string) *StateStore {
	return &StateStore{repo: repo, scope: state.ScopeID(root), root: root}
}

func (s *StateStore) Load(ctx context.Context) (state.Record, error) {
	ws, err := s.repo.GetState(ctx, s.scope)
	if errors.Is(err, ErrStateNotFound) {
		return state.Record{}, nil
	}
	if err != nil {
		return state.Record{}, fmt.Errorf("failed to load state: %w", err)
	}
	return toRecord(ws)
}

// Save 读取当前版本后条件写入；期间若有其他进程写入则返回 ErrConcurrentUpdate
func (s *StateStore) Save(ctx context.Context, rec state.Record) error {
	var oldVersion int64
	current, err := s.repo.GetState(ctx, s.scope)
	switch {
	case err == nil:
		oldVersion = current.Version
	case errors.Is(err, ErrStateNotFound):
	default:
		return fmt.Errorf("failed to load state: %w", err)
	}

	ws, err := fromRecord(s.scope, s.root, rec)
	if err != nil {
		return err
	}
	return s.repo.PutState(ctx, ws, oldVersion)
}

func (s *StateStore) Clear(ctx context.Context) error {
	return s.repo.DeleteState(ctx, s.scope)
}

func fromRecord(scope, root string, rec state.Record) (WorkspaceState, error) {
	keys := rec.OwnedKeys
	if keys == nil {
		keys = []string{}
	}
	keysJSON, err := json.Marshal(keys)
	if err != nil {
		return WorkspaceState{}, fmt.Errorf("failed to marshal owned keys: %w", err)
	}
	shadowJSON, err := json.Marshal(rec.Shadowed)
	if err != nil {
		return WorkspaceState{}, fmt.Errorf("failed to marshal shadowed keys: %w", err)
	}
	condJSON, err := json.Marshal(rec.Conditions)
	if err != nil {
		return WorkspaceState{}, fmt.Errorf("failed to marshal conditions: %w", err)
	}
	return WorkspaceState{
		Scope:      scope,
		Root:       root,
		Active:     rec.Active,
		OwnedKeys:  datatypes.JSON(keysJSON),
		Shadowed:   datatypes.JSON(shadowJSON),
		Conditions: datatypes.JSON(condJSON),
	}, nil
}

func toRecord(ws *WorkspaceState) (state.Record, error) {
	rec := state.Record{Active: ws.Active}
	if len(ws.OwnedKeys) > 0 {
		if err := json.Unmarshal(ws.OwnedKeys, &rec.OwnedKeys); err != nil {
			return state.Record{}, fmt.Errorf("corrupted owned keys: %w", err)
		}
	}
	if len(ws.Shadowed) > 0 {
		if err := json.Unmarshal(ws.Shadowed, &rec.Shadowed); err != nil {
			return state.Record{}, fmt.Errorf("corrupted shadowed keys: %w", err)
		}
	}
	if len(ws.Conditions) > 0 {
		if err := json.Unmarshal(ws.Conditions, &rec.Conditions); err != nil {
			return state.Record{}, fmt.Errorf("corrupted conditions: %w", err)
		}
	}
	if len(rec.OwnedKeys) == 0 {
		rec.OwnedKeys = nil
	}
	return rec, nil
}
