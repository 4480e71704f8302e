package disk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"cleanview/pkg/state"
)

// Adapter 实现了 state.Store 接口
// 记录以格式化 JSON 存在 workspace 内的一个文件里 (默认 .cleanview/state.json)
type Adapter struct {
	path string
}

// file 是落盘格式，带上 key 方便人工排查
type file struct {
	Key    string       `json:"key"`
	Record state.Record `json:"record"`
}

// NewAdapter 创建一个新的磁盘状态适配器
func NewAdapter(path string) *Adapter {
	return &Adapter{path: path}
}

func (a *Adapter) Load(ctx context.Context) (state.Record, error) {
	data, err := os.ReadFile(a.path)
	if errors.Is(err, fs.ErrNotExist) {
		return state.Record{}, nil
	}
	if err != nil {
		return state.Record{}, fmt.Errorf("failed to read state: %w", err)
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return state.Record{}, fmt.Errorf("corrupted state file %s: %w", a.path, err)
	}
	return f.Record, nil
}

func (a *Adapter) Save(ctx context.Context, r state.Record) error {
	data, err := json.MarshalIndent(file{Key: state.Key, Record: r}, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(a.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}

	// 原子写入：临时文件 + Rename
	tempFile, err := os.CreateTemp(dir, "state-*")
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
	return os.Rename(tempFile.Name(), a.path)
}

func (a *Adapter) Clear(ctx context.Context) error {
	err := os.Remove(a.path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to clear state: %w", err)
}
