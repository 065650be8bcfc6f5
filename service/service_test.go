package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Jayjokeer/loyalty-api/config"
	"github.com/Jayjokeer/loyalty-api/dao"
	"github.com/Jayjokeer/loyalty-api/pkg/timeutil"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

type testServices struct {
	clock    *fakeClock
	customer *CustomerService
	point    *PointService
	wallet   *WalletService
}

// 2025-03-01 12:00 Africa/Lagos
var noon = time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC)

func newServices(t *testing.T, ledger dao.LedgerStore) *testServices {
	t.Helper()

	conf := config.Default()
	conf.Auth.ApiKey = "test_key"

	clock := &fakeClock{t: noon}
	cal, err := timeutil.NewCalendar(conf.Loyalty.Timezone, clock.Now)
	require.NoError(t, err)

	locks := NewLocks()
	return &testServices{
		clock:    clock,
		customer: &CustomerService{Ledger: ledger, Calendar: cal, Locks: locks},
		point:    &PointService{Config: conf, Ledger: ledger, Calendar: cal, Locks: locks},
		wallet:   &WalletService{Ledger: ledger, Calendar: cal, Locks: locks},
	}
}

func newGormLedger(t *testing.T) *dao.GormLedger {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ledger, err := dao.NewGormLedger(db)
	require.NoError(t, err)
	return ledger
}

func backends(t *testing.T) map[string]*testServices {
	return map[string]*testServices{
		"memory": newServices(t, dao.NewMemoryLedger()),
		"gorm":   newServices(t, newGormLedger(t)),
	}
}

var ctx = context.Background()
