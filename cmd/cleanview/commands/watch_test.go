package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"cleanview/pkg/config"
	"cleanview/pkg/types"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer 允许 watcher 回调和主循环并发写输出
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunWatch_HidesRefreshesAndDisablesOnShutdown(t *testing.T) {
	a, root := setupIntegrationEnv(t)
	viper.Set(config.KeyAutoHide, true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var buf syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- runWatch(ctx, &buf)
	}()

	// 1. 启动即隐藏
	require.Eventually(t, a.Excluder.IsHidingGitignored, 5*time.Second, 20*time.Millisecond)

	// 2. ignore 文件变化后规则被刷新 (watcher 注册完成前的写入会丢失，所以每轮重写一次)
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(root, ".gitignore"), []byte("*.tmp\n"), 0644)
		m, err := a.Settings.ReadExclusions(context.Background())
		return err == nil && m["**/*.tmp"]
	}, 10*time.Second, 500*time.Millisecond)

	// 3. 取消 (等价于收到 SIGINT) 后撤销隐藏
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch loop did not exit")
	}

	assert.False(t, a.Excluder.IsHidingGitignored())
	m, err := a.Settings.ReadExclusions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.ExclusionMap{"**/.git": true}, m)

	out := buf.String()
	assert.Contains(t, out, "CleanView (4)")
	assert.Contains(t, out, "patterns updated")
	assert.Contains(t, out, "Hiding disabled")
}

func TestRunWatch_NoAutoHide(t *testing.T) {
	a, _ := setupIntegrationEnv(t)
	viper.Set(config.KeyAutoHide, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	require.NoError(t, runWatch(ctx, &buf))
	assert.False(t, a.Excluder.IsHidingGitignored())
	assert.Contains(t, buf.String(), "CleanView\n")
}
