package settings

import (
	"context"
	"encoding/json"
	"errors"

	"cleanview/pkg/types"
)

var ErrMalformed = errors.New("settings document is malformed")

// Store 是外部设置文档中 exclusion map 的读写接口
// 实现方只需要保证单次 Read / Write 的完整性，读-合并-写的原子性不由它负责。
type Store interface {
	// ReadExclusions 读取当前的 exclusion map，不存在时返回空 map
	ReadExclusions(ctx context.Context) (types.ExclusionMap, error)

	// ReadConditions 读取值不是 bool 的条目 (例如 {"when": ...})，值为原始 JSON
	ReadConditions(ctx context.Context) (map[string]json.RawMessage, error)

	// WriteExclusions 用 m 整体替换 exclusion map，m 中的 key 覆盖同名的条件条目
	WriteExclusions(ctx context.Context, m types.ExclusionMap) error

	// RestoreExclusions 与 WriteExclusions 相同，但在同一次写入中把 conditions 原样写回
	RestoreExclusions(ctx context.Context, m types.ExclusionMap, conditions map[string]json.RawMessage) error
}
