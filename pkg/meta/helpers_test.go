package meta

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestRepo 构建隔离的测试环境 (每个测试一个内存数据库)
func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	metaDB := NewWithConn(db)
	require.NoError(t, metaDB.AutoMigrate(&WorkspaceState{}))
	t.Cleanup(func() { _ = metaDB.Close() })

	return NewRepository(metaDB)
}

// mustPutState 强制写入状态，失败则终止
func mustPutState(t *testing.T, repo *Repository, ws WorkspaceState, oldVersion int64, msgAndArgs ...any) {
	t.Helper()
	err := repo.PutState(context.Background(), ws, oldVersion)
	require.NoError(t, err, msgAndArgs...)
}
