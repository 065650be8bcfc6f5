package client

import (
	"context"
	"fmt"
	"time"

	"github.com/Jayjokeer/loyalty-api/config"
	"github.com/Jayjokeer/loyalty-api/pkg/log"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient 只有幂等记录放在 redis 时才建立连接, 否则返回 nil
func NewRedisClient(conf *config.Config) (*redis.Client, func(), error) {
	if conf.Idempotency.Driver != config.DriverRedis {
		return nil, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr(),
		Password: conf.Redis.Password,
		Username: conf.Redis.Username,
		DB:       conf.Redis.Database,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect redis %s: %w", conf.Redis.Addr(), err)
	}
	log.L.Info("redis client success", zap.String("addr", conf.Redis.Addr()))

	return client, func() {
		if err := client.Close(); err != nil {
			log.L.Warn("close redis", zap.Error(err))
		}
	}, nil
}
