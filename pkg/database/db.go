package database

import (
	"fmt"

	"github.com/Jayjokeer/loyalty-api/config"
	"github.com/Jayjokeer/loyalty-api/pkg/log"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultSQLiteDSN = "file:loyalty.db?_pragma=busy_timeout(5000)"

// NewDB 初始化数据库连接; 账本与幂等记录都不使用 SQL 时返回 nil
func NewDB(conf *config.Config) (*gorm.DB, func(), error) {
	if !conf.UsesSQL() {
		return nil, func() {}, nil
	}

	var dialector gorm.Dialector
	switch conf.SQLDriver() {
	case config.DriverMySQL:
		dialector = mysql.Open(conf.MySQL.Dsn())
	case config.DriverSQLite:
		dsn := conf.Storage.DSN
		if dsn == "" {
			dsn = defaultSQLiteDSN
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, nil, fmt.Errorf("database: unsupported driver %q", conf.SQLDriver())
	}

	gormConf := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	if conf.Debug() {
		gormConf.Logger = logger.Default.LogMode(logger.Info)
	}
	db, err := gorm.Open(dialector, gormConf)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	if conf.SQLDriver() == config.DriverSQLite {
		// sqlite 只允许一个写连接
		sqlDB.SetMaxOpenConns(1)
	}
	log.L.Info("connect database success", zap.String("driver", string(conf.SQLDriver())))

	return db, func() {
		if err := sqlDB.Close(); err != nil {
			log.L.Warn("close database", zap.Error(err))
		}
	}, nil
}
