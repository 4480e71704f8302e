package ignore

import (
	"path/filepath"
	"slices"
	"strings"

	"cleanview/pkg/types"
)

// PatternStore 记录一次收集得到的全部规则及其来源
// 顺序即发现顺序：根目录文件 -> 深度优先的子目录文件 -> 自定义规则。
// 相同 pattern 来自不同来源时不去重。
type PatternStore struct {
	root     string
	rules    []types.Rule
	matcher  *Matcher
	warnings []error
}

// NewPatternStore 创建一个空的 store
func NewPatternStore(root string) *PatternStore {
	return &PatternStore{
		root:    root,
		matcher: newMatcher(),
	}
}

// Root 返回收集时使用的根目录
func (s *PatternStore) Root() string { return s.root }

// Rules 返回规则的副本 (调用者修改不会影响 store)
func (s *PatternStore) Rules() []types.Rule {
	if s == nil {
		return nil
	}
	return slices.Clone(s.rules)
}

// Len 返回规则数量
func (s *PatternStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Warnings 返回收集过程中被跳过的读取错误 (CollectionReadError)
func (s *PatternStore) Warnings() []error {
	if s == nil {
		return nil
	}
	return slices.Clone(s.warnings)
}

// Matches 判断路径是否被忽略
// path 可以是绝对路径 (在 root 之下) 或相对于 root 的路径
func (s *PatternStore) Matches(path string) bool {
	if s == nil {
		return false
	}
	if filepath.IsAbs(path) {
		rel, err := filepath.Rel(s.root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return false
		}
		path = rel
	}
	return s.matcher.Matches(path)
}

// add 追加一批来自同一来源的规则，并喂给 oracle
func (s *PatternStore) add(dir, source string, lines []string) {
	for _, line := range lines {
		s.rules = append(s.rules, types.Rule{Pattern: line, Source: source})
	}
	s.matcher.add(dir, lines)
}

func (s *PatternStore) warn(err error) {
	s.warnings = append(s.warnings, err)
}
