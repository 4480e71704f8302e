// pkg/types/common.go
package types

import (
	"maps"
	"slices"
)

// CustomSource 是自定义规则的来源标记 (不是真实文件)
const CustomSource = "custom configuration"

// Rule 代表一条收集到的忽略规则
// 这是一个"值对象"，创建后不可变。
type Rule struct {
	Pattern string `json:"pattern"` // 原始行，例如 "node_modules/" 或 "!important.log"
	Source  string `json:"source"`  // 相对于根目录的 ignore 文件路径，或 CustomSource
}

// IsCustom 判断规则是否来自自定义配置
func (r Rule) IsCustom() bool { return r.Source == CustomSource }

// IsNegation 判断是否为取反规则 (!pattern)
func (r Rule) IsNegation() bool { return len(r.Pattern) > 0 && r.Pattern[0] == '!' }

// ExclusionMap 对应设置文档里的 files.exclude
// key: glob, value: 是否启用
type ExclusionMap map[string]bool

// Clone 返回一份副本，避免修改调用者持有的 map
func (m ExclusionMap) Clone() ExclusionMap {
	out := make(ExclusionMap, len(m))
	maps.Copy(out, m)
	return out
}

// Keys 返回排序后的 key 列表 (确定性输出)
func (m ExclusionMap) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}

// Merge 返回 m ∪ other，冲突时 other 的值胜出
func (m ExclusionMap) Merge(other ExclusionMap) ExclusionMap {
	out := m.Clone()
	maps.Copy(out, other)
	return out
}

// Without 返回删除了 keys 之后的新 map
func (m ExclusionMap) Without(keys []string) ExclusionMap {
	out := m.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Status 是给外壳 (状态栏 / CLI) 展示用的快照
type Status struct {
	Active       bool `json:"active"`
	PatternCount int  `json:"patternCount"`
}
