package config

import "time"

type Driver string

const (
	DriverMemory Driver = "memory"
	DriverMySQL  Driver = "mysql"
	DriverSQLite Driver = "sqlite"
	DriverRedis  Driver = "redis"
)

// Storage 账本存储
type Storage struct {
	Driver Driver `json:"driver" yaml:"driver"` // memory | mysql | sqlite
	DSN    string `json:"dsn" yaml:"dsn"`       // sqlite 使用
}

func (d Driver) oneOf(allowed ...Driver) bool {
	for _, a := range allowed {
		if d == a {
			return true
		}
	}
	return false
}

// Idempotency 幂等记录存储与保留策略
type Idempotency struct {
	Driver        Driver        `json:"driver" yaml:"driver"` // memory | redis | mysql | sqlite
	TTL           time.Duration `json:"ttl" yaml:"ttl"`       // 0 表示永不过期
	SweepInterval time.Duration `json:"sweep_interval" yaml:"sweep_interval"`
}

// UsesSQL 是否需要打开 gorm 连接
func (c *Config) UsesSQL() bool {
	sql := func(d Driver) bool { return d == DriverMySQL || d == DriverSQLite }
	return sql(c.Storage.Driver) || sql(c.Idempotency.Driver)
}

// SQLDriver 账本和幂等记录共享一个 gorm 连接, 以账本配置优先
func (c *Config) SQLDriver() Driver {
	if c.Storage.Driver == DriverMySQL || c.Storage.Driver == DriverSQLite {
		return c.Storage.Driver
	}
	return c.Idempotency.Driver
}
