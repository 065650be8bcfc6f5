package dao

import (
	"fmt"

	"github.com/Jayjokeer/loyalty-api/config"

	"github.com/google/wire"
	"gorm.io/gorm"
)

var ProviderSet = wire.NewSet(
	NewLedgerStore,
)

// NewLedgerStore 按 storage.driver 选择账本实现
func NewLedgerStore(conf *config.Config, db *gorm.DB) (LedgerStore, error) {
	switch conf.Storage.Driver {
	case config.DriverMemory:
		return NewMemoryLedger(), nil
	case config.DriverMySQL, config.DriverSQLite:
		if db == nil {
			return nil, fmt.Errorf("dao: storage driver %q needs a database", conf.Storage.Driver)
		}
		return NewGormLedger(db)
	}
	return nil, fmt.Errorf("dao: unknown storage driver %q", conf.Storage.Driver)
}
