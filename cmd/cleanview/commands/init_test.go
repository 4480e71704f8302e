package commands

import (
	"os"
	"path/filepath"
	"testing"

	"cleanview/pkg/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_WritesDefaultConfig(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	require.NoError(t, config.Load(""))

	// 1. 首次 init 写出配置和状态目录
	out := run(t, initCmd)
	assert.Contains(t, out, "Initialized CleanView config")

	cfgPath := filepath.Join(dir, "cleanview.yaml")
	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "autohide: true")
	assert.Contains(t, string(data), "files.exclude")
	assert.DirExists(t, filepath.Join(dir, ".cleanview"))

	// 2. 写出的文件能被重新加载
	viper.Reset()
	require.NoError(t, config.Load(""))
	assert.Equal(t, cfgPath, viper.ConfigFileUsed())
	assert.Equal(t, "disk", viper.GetString(config.KeyStateType))

	// 3. 再次 init 不覆盖已有文件
	require.NoError(t, os.WriteFile(cfgPath, []byte("cleanview:\n  autoHide: false\n"), 0644))
	out = run(t, initCmd)
	assert.Contains(t, out, "Config already exists")
	data, err = os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "cleanview:\n  autoHide: false\n", string(data))
}
