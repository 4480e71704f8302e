package meta

import (
	"time"

	"gorm.io/datatypes"
)

// WorkspaceState 是 state.Record 在关系型数据库中的投影
// 一个 workspace root 一行。
type WorkspaceState struct {
	// Scope 是主键 (state.ScopeID(root))
	Scope string `gorm:"primaryKey;type:char(64)"`

	// Root 仅用于人工排查
	Root string `gorm:"type:text"`

	Active bool `gorm:"not null;default:false"`

	// OwnedKeys: JSON 数组 ["**/*.log", "build/**"]
	OwnedKeys datatypes.JSON

	// Shadowed: JSON 对象 {"**/*.log": false}
	Shadowed datatypes.JSON

	// Conditions: JSON 对象 {"**/*.js": {"when": "$(basename).ts"}}
	Conditions datatypes.JSON

	// Version 用于乐观锁并发控制 (CAS)
	// 每次更新时 +1，防止两个进程互相覆盖
	Version int64 `gorm:"default:1"`

	UpdatedAt time.Time
}

// TableName 强制指定表名
func (WorkspaceState) TableName() string {
	return "workspace_states"
}
