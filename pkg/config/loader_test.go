package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Chdir(t.TempDir())

	require.NoError(t, Load(""))
	assert.True(t, viper.GetBool(KeyIncludeNested))
	assert.True(t, viper.GetBool(KeyAutoHide))
	assert.Empty(t, viper.GetStringSlice(KeyCustomPatterns))
	assert.Equal(t, "disk", viper.GetString(KeyStateType))
	assert.Equal(t, "files.exclude", viper.GetString(KeySettingsKey))
}

func TestLoad_File(t *testing.T) {
	viper.Reset()
	path := filepath.Join(t.TempDir(), "cleanview.yaml")
	content := `
cleanview:
  includeNestedGitignore: false
  customPatterns:
    - "*.tmp"
    - "cache/"
state:
  type: sqlite
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	require.NoError(t, Load(path))
	assert.False(t, viper.GetBool(KeyIncludeNested))
	assert.Equal(t, []string{"*.tmp", "cache/"}, viper.GetStringSlice(KeyCustomPatterns))
	assert.Equal(t, "sqlite", viper.GetString(KeyStateType))
}

func TestLoad_Env(t *testing.T) {
	viper.Reset()
	t.Chdir(t.TempDir())
	t.Setenv("CLEANVIEW_STATE_TYPE", "redis")

	require.NoError(t, Load(""))
	assert.Equal(t, "redis", viper.GetString(KeyStateType))
}

func TestLoad_BrokenFile(t *testing.T) {
	viper.Reset()
	path := filepath.Join(t.TempDir(), "cleanview.yaml")
	require.NoError(t, os.WriteFile(path, []byte("state: [unclosed"), 0644))

	err := Load(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "fatal error config file")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("whatever"))
}
