package ignore

import (
	"path"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// Matcher 是"路径是否被忽略"的判定器 (oracle)
// 每个 ignore 文件按它所在的目录形成一个 scope，规则只作用于该目录之下。
type Matcher struct {
	scopes []scope
}

type scope struct {
	base    string // 相对于根目录的目录，根目录为 ""
	ignorer *gitignore.GitIgnore
}

func newMatcher() *Matcher {
	return &Matcher{}
}

// add 把一组原始规则编译进 base 目录的 scope
func (m *Matcher) add(base string, lines []string) {
	if len(lines) == 0 {
		return
	}
	base = cleanRel(base)
	if base == "." {
		base = ""
	}
	m.scopes = append(m.scopes, scope{
		base:    base,
		ignorer: gitignore.CompileIgnoreLines(lines...),
	})
}

// Matches 检查给定的路径是否匹配忽略规则
// rel: 相对于根目录的路径 (例如 "data/model.bin")
// 任意一个覆盖该路径的 scope 命中即视为忽略。
func (m *Matcher) Matches(rel string) bool {
	if m == nil {
		return false
	}
	rel = cleanRel(rel)
	if rel == "." || rel == "" {
		return false
	}
	for _, s := range m.scopes {
		sub, ok := within(s.base, rel)
		if !ok {
			continue
		}
		if s.ignorer.MatchesPath(sub) {
			return true
		}
	}
	return false
}

// within 返回 rel 相对于 base 的部分；rel 不在 base 之下时 ok=false
func within(base, rel string) (string, bool) {
	if base == "" {
		return rel, true
	}
	if rel == base {
		return "", false
	}
	if strings.HasPrefix(rel, base+"/") {
		return rel[len(base)+1:], true
	}
	return "", false
}

func cleanRel(p string) string {
	return path.Clean(filepath.ToSlash(p))
}
