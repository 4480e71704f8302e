package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"cleanview/pkg/types"
)

// DefaultKey 是 exclusion map 在设置文档中的 key
const DefaultKey = "files.exclude"

// FileStore 把 exclusion map 存在一个 JSON 设置文件里 (例如 .vscode/settings.json)
// 文档中的其他 key 原样保留；exclusion map 中值不是 bool 的条目 (条件表达式) 也原样保留。
type FileStore struct {
	path string
	key  string
}

// NewFileStore 创建文件存储，key 为空时使用 DefaultKey
func NewFileStore(path, key string) *FileStore {
	if key == "" {
		key = DefaultKey
	}
	return &FileStore{path: path, key: key}
}

// Path 返回设置文件路径
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) ReadExclusions(ctx context.Context) (types.ExclusionMap, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	entries, err := s.entries(doc)
	if err != nil {
		return nil, err
	}

	out := make(types.ExclusionMap, len(entries))
	for k, raw := range entries {
		var enabled bool
		if err := json.Unmarshal(raw, &enabled); err != nil {
			// 非 bool 值 (例如 {"when": ...}) 由 ReadConditions 负责
			continue
		}
		out[k] = enabled
	}
	return out, nil
}

// ReadConditions 返回值不是 bool 的条目，原始 JSON 不做任何转换
func (s *FileStore) ReadConditions(ctx context.Context) (map[string]json.RawMessage, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	entries, err := s.entries(doc)
	if err != nil {
		return nil, err
	}

	out := make(map[string]json.RawMessage)
	for k, raw := range entries {
		if !isBool(raw) {
			out[k] = raw
		}
	}
	return out, nil
}

func (s *FileStore) WriteExclusions(ctx context.Context, m types.ExclusionMap) error {
	return s.RestoreExclusions(ctx, m, nil)
}

func (s *FileStore) RestoreExclusions(ctx context.Context, m types.ExclusionMap, conditions map[string]json.RawMessage) error {
	// 1. 重新读取整个文档，保留其他 key
	doc, err := s.load()
	if err != nil {
		return err
	}
	existing, err := s.entries(doc)
	if err != nil {
		return err
	}

	// 2. 组装新的 exclusion 对象：m 的条目 + 原有的非 bool 条目
	next := make(map[string]json.RawMessage, len(m))
	for k, raw := range existing {
		if !isBool(raw) {
			if _, overridden := m[k]; !overridden {
				next[k] = raw
			}
		}
	}
	for k, v := range m {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		next[k] = raw
	}
	// 被还原的条件条目原样写回
	for k, raw := range conditions {
		next[k] = raw
	}

	_, existed := doc[s.key]
	if len(next) == 0 {
		if !existed {
			return nil // 没有内容需要写
		}
		delete(doc, s.key)
	} else {
		raw, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", s.key, err)
		}
		doc[s.key] = raw
	}

	// 3. 原子写入
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return writeAtomic(s.path, buf.Bytes())
}

// load 读取整个设置文档，文件不存在时返回空文档
func (s *FileStore) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]json.RawMessage{}, nil
	}

	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &doc); err != nil {
		// 带注释或尾随逗号的 JSONC 也会走到这里：宁可报错也不重写用户的文件
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, s.path, err)
	}
	if doc == nil {
		doc = map[string]json.RawMessage{}
	}
	return doc, nil
}

func (s *FileStore) entries(doc map[string]json.RawMessage) (map[string]json.RawMessage, error) {
	raw, ok := doc[s.key]
	if !ok || string(raw) == "null" {
		return map[string]json.RawMessage{}, nil
	}
	entries := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: %q is not an object: %v", ErrMalformed, s.key, err)
	}
	return entries, nil
}

func isBool(raw json.RawMessage) bool {
	var b bool
	return json.Unmarshal(raw, &b) == nil
}

// writeAtomic 先写临时文件再 Rename，保证文件要么是旧的，要么是完整的新内容
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, ".settings-*")
	if err != nil {
		return err
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return err
	}
	if err := tempFile.Close(); err != nil {
		return err
	}

	// 尽量保留原文件权限
	if info, err := os.Stat(path); err == nil {
		_ = os.Chmod(tempFile.Name(), info.Mode().Perm())
	} else {
		_ = os.Chmod(tempFile.Name(), 0644)
	}

	return os.Rename(tempFile.Name(), path)
}
