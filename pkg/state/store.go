package state

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"maps"
	"path/filepath"
	"slices"
)

// Key 是持久化记录的唯一 key (对应扩展的 workspaceState key)
const Key = "cleanview.gitignorePatterns"

// Record 是 cleanview 唯一需要持久化的状态
// Active 和 OwnedKeys 作为一对一起落盘，进程重启后可以恢复。
type Record struct {
	Active bool `json:"active" cbor:"a"`

	// OwnedKeys 是最近一次 hide 写入 exclusion map 的全部 key
	OwnedKeys []string `json:"ownedKeys" cbor:"k"`

	// Shadowed 记录 hide 之前就已存在、被我们覆盖的 key 的原值
	// show 时先删除 OwnedKeys，再把这些值还原。
	Shadowed map[string]bool `json:"shadowed,omitempty" cbor:"s,omitempty"`

	// Conditions 记录被覆盖的条件条目 (值不是 bool)，原始 JSON 原样保存
	Conditions map[string]json.RawMessage `json:"conditions,omitempty" cbor:"c,omitempty"`
}

// IsZero 判断记录是否为空 (等价于"没有记录")
func (r Record) IsZero() bool {
	return !r.Active && len(r.OwnedKeys) == 0 && len(r.Shadowed) == 0 && len(r.Conditions) == 0
}

// Clone 深拷贝
func (r Record) Clone() Record {
	out := Record{
		Active:    r.Active,
		OwnedKeys: slices.Clone(r.OwnedKeys),
		Shadowed:  maps.Clone(r.Shadowed),
	}
	if r.Conditions != nil {
		out.Conditions = make(map[string]json.RawMessage, len(r.Conditions))
		for k, v := range r.Conditions {
			out.Conditions[k] = slices.Clone(v)
		}
	}
	return out
}

// Store 是带作用域的持久化 key-value 接口
// 每个实现只服务一个 workspace root。
type Store interface {
	// Load 读取记录；不存在时返回零值记录，而不是错误
	Load(ctx context.Context) (Record, error)

	// Save 覆盖写入记录
	Save(ctx context.Context, r Record) error

	// Clear 删除记录 (幂等)
	Clear(ctx context.Context) error
}

// ScopeID 把 workspace root 转换为稳定的作用域 ID (SHA-256 Hex)
// 用于 redis / s3 / sql 这类多个 workspace 共享的后端。
func ScopeID(root string) string {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	sum := sha256.Sum256([]byte(filepath.ToSlash(filepath.Clean(root))))
	return hex.EncodeToString(sum[:])
}
