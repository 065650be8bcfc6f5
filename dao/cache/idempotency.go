package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Jayjokeer/loyalty-api/dao"
	"github.com/Jayjokeer/loyalty-api/models"

	"github.com/redis/go-redis/v9"
)

var _ dao.IdempotencyStore = (*IdempotencyStorage)(nil)

// IdempotencyStorage 幂等记录存放在 redis, 依赖 key 的 TTL 过期
type IdempotencyStorage struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewIdempotencyStorage(rds *redis.Client, ttl time.Duration) *IdempotencyStorage {
	return &IdempotencyStorage{redis: rds, ttl: ttl}
}

type idempotencyValue struct {
	Status    int             `json:"status"`
	Body      json.RawMessage `json:"body"`
	CreatedAt time.Time       `json:"created_at"`
}

func (s *IdempotencyStorage) Lookup(ctx context.Context, fingerprint string, _ time.Time) (*models.IdempotencyRecord, error) {
	raw, err := s.redis.Get(ctx, s.name(fingerprint)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, dao.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache.Idempotency.Lookup: %w", err)
	}

	var v idempotencyValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("cache.Idempotency.Lookup decode: %w", err)
	}
	return &models.IdempotencyRecord{
		Fingerprint: fingerprint,
		Status:      v.Status,
		Body:        []byte(v.Body),
		CreatedAt:   v.CreatedAt,
	}, nil
}

// Store SETNX 保证同一指纹只写一次
func (s *IdempotencyStorage) Store(ctx context.Context, fingerprint string, status int, body []byte, at time.Time) error {
	if len(body) == 0 {
		body = []byte("null")
	}
	raw, err := json.Marshal(idempotencyValue{Status: status, Body: body, CreatedAt: at})
	if err != nil {
		return fmt.Errorf("cache.Idempotency.Store encode: %w", err)
	}

	ok, err := s.redis.SetNX(ctx, s.name(fingerprint), raw, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("cache.Idempotency.Store: %w", err)
	}
	if !ok {
		return dao.ErrAlreadyExists
	}
	return nil
}

// Sweep redis 自己过期, 无需清理
func (s *IdempotencyStorage) Sweep(context.Context, time.Time) (int64, error) {
	return 0, nil
}

// loyalty:idem:{fingerprint}
func (s *IdempotencyStorage) name(fingerprint string) string {
	return fmt.Sprintf("loyalty:idem:%s", fingerprint)
}
