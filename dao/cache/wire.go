package cache

import (
	"fmt"

	"github.com/Jayjokeer/loyalty-api/config"
	"github.com/Jayjokeer/loyalty-api/dao"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var ProviderSet = wire.NewSet(
	NewIdempotencyStore,
)

// NewIdempotencyStore 按 idempotency.driver 选择幂等记录存储
func NewIdempotencyStore(conf *config.Config, db *gorm.DB, rds *redis.Client) (dao.IdempotencyStore, error) {
	ttl := conf.Idempotency.TTL
	switch conf.Idempotency.Driver {
	case config.DriverMemory:
		return dao.NewMemoryIdempotency(ttl), nil
	case config.DriverRedis:
		if rds == nil {
			return nil, fmt.Errorf("cache: idempotency driver redis needs a redis client")
		}
		return NewIdempotencyStorage(rds, ttl), nil
	case config.DriverMySQL, config.DriverSQLite:
		if db == nil {
			return nil, fmt.Errorf("cache: idempotency driver %q needs a database", conf.Idempotency.Driver)
		}
		return dao.NewGormIdempotency(db, ttl)
	}
	return nil, fmt.Errorf("cache: unknown idempotency driver %q", conf.Idempotency.Driver)
}
