package dao

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// 整秒时间, sqlite 以文本保存时间, 保证比较结果稳定
var baseTime = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func ledgers(t *testing.T) map[string]LedgerStore {
	t.Helper()

	gl, err := NewGormLedger(newTestDB(t))
	require.NoError(t, err)
	return map[string]LedgerStore{
		"memory": NewMemoryLedger(),
		"gorm":   gl,
	}
}

func idempotencyStores(t *testing.T, ttl time.Duration) map[string]IdempotencyStore {
	t.Helper()

	gi, err := NewGormIdempotency(newTestDB(t), ttl)
	require.NoError(t, err)
	return map[string]IdempotencyStore{
		"memory": NewMemoryIdempotency(ttl),
		"gorm":   gi,
	}
}

var ctx = context.Background()
