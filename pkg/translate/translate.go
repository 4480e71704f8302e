// Package translate 把 gitignore 语法的规则转换成 files.exclude 风格的 glob key。
//
// 目标 schema 没有取反语义，所以 "!pattern" 会被丢弃。这是已知的有损转换，不是错误。
package translate

import (
	"strings"

	"cleanview/pkg/types"
)

const (
	anyDepth    = "**/" // 任意深度前缀
	anyContents = "/**" // 目录内全部内容后缀
)

// Translate 把一条 gitignore 规则转换为 exclusion key
// 返回 ok=false 表示该规则没有等价表示 (调用者应静默丢弃)
func Translate(rule string) (string, bool) {
	pattern := rule

	// 1. 取反规则无法表达
	if strings.HasPrefix(pattern, "!") {
		return "", false
	}

	// 2. 去掉一个结尾的 "/" (仅目录标记)
	pattern = strings.TrimSuffix(pattern, "/")

	// 3. 锚定规则相对根目录，否则在任意深度匹配
	if strings.HasPrefix(pattern, "/") {
		pattern = pattern[1:]
	} else {
		pattern = anyDepth + pattern
	}

	// 4. 没有通配符的字面量：文件或目录本身及其内容都要覆盖
	if !strings.ContainsAny(pattern, "*?") {
		pattern += anyContents
	}

	return pattern, true
}

// BuildExclusionMap 把一组规则转换为 {key: true}
// 被丢弃的规则不出现；多条规则得到同一个 key 时只保留一个。
func BuildExclusionMap(rules []types.Rule) types.ExclusionMap {
	out := make(types.ExclusionMap, len(rules))
	for _, r := range rules {
		if key, ok := Translate(r.Pattern); ok {
			out[key] = true
		}
	}
	return out
}
