package translate

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"cleanview/pkg/types"

	"github.com/gobwas/glob"
)

// KeySet 是编译后的 exclusion key 集合，用于回答"哪个 key 会隐藏这个路径"
// 只用于诊断输出 (cleanview check)，不参与 hide/show 的状态计算。
type KeySet struct {
	entries []compiledKey
}

type compiledKey struct {
	key      string
	patterns []glob.Glob
}

// CompileKeys 编译 map 中所有启用的 key (按 key 排序)
// 无法编译的 key 会被跳过并在 error 中汇报，其余 key 仍然可用。
func CompileKeys(m types.ExclusionMap) (*KeySet, error) {
	ks := &KeySet{}
	var bad []string
	for _, key := range m.Keys() {
		if !m[key] {
			continue
		}
		ck, err := compileKey(key)
		if err != nil {
			bad = append(bad, key)
			continue
		}
		ks.entries = append(ks.entries, ck)
	}
	if len(bad) > 0 {
		return ks, fmt.Errorf("invalid exclusion keys: %s", strings.Join(bad, ", "))
	}
	return ks, nil
}

// compileKey 编译一个 key
// "**/" 前缀在 files.exclude 里可以匹配零层目录，gobwas 的 ** 至少需要一个 "/"，
// 所以额外编译一个去掉前缀的版本。
func compileKey(key string) (compiledKey, error) {
	variants := []string{key}
	if rest, ok := strings.CutPrefix(key, anyDepth); ok && rest != "" {
		variants = append(variants, rest)
	}

	ck := compiledKey{key: key}
	for _, v := range variants {
		g, err := glob.Compile(v, '/')
		if err != nil {
			return compiledKey{}, err
		}
		ck.patterns = append(ck.patterns, g)
	}
	return ck, nil
}

// Match 返回会隐藏 rel (相对于根目录) 的所有 key
func (ks *KeySet) Match(rel string) []string {
	if ks == nil {
		return nil
	}
	rel = path.Clean(filepath.ToSlash(rel))
	var hits []string
	for _, ck := range ks.entries {
		if ck.match(rel) {
			hits = append(hits, ck.key)
		}
	}
	return hits
}

// Len 返回可用 key 数量
func (ks *KeySet) Len() int {
	if ks == nil {
		return 0
	}
	return len(ks.entries)
}

func (ck compiledKey) match(rel string) bool {
	for _, g := range ck.patterns {
		// "dir/**" 也要命中 "dir" 本身
		if g.Match(rel) || g.Match(rel+"/") {
			return true
		}
	}
	return false
}
