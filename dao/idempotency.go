package dao

import (
	"context"
	"time"

	"github.com/Jayjokeer/loyalty-api/models"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// IdempotencyStore 保存请求指纹对应的首次响应.
// 同一指纹在保留期内只能写入一次, 过期记录对 Lookup 不可见并可被重新写入.
type IdempotencyStore interface {
	Lookup(ctx context.Context, fingerprint string, now time.Time) (*models.IdempotencyRecord, error)
	Store(ctx context.Context, fingerprint string, status int, body []byte, at time.Time) error
	// Sweep 删除 now 之前已过期的记录, 返回删除条数
	Sweep(ctx context.Context, now time.Time) (int64, error)
}

var _ IdempotencyStore = (*MemoryIdempotency)(nil)

// MemoryIdempotency 进程内幂等记录
type MemoryIdempotency struct {
	ttl     time.Duration
	records cmap.ConcurrentMap[string, *models.IdempotencyRecord]
}

// NewMemoryIdempotency ttl 为 0 时记录永不过期
func NewMemoryIdempotency(ttl time.Duration) *MemoryIdempotency {
	return &MemoryIdempotency{
		ttl:     ttl,
		records: cmap.New[*models.IdempotencyRecord](),
	}
}

func (m *MemoryIdempotency) Lookup(_ context.Context, fingerprint string, now time.Time) (*models.IdempotencyRecord, error) {
	rec, ok := m.records.Get(fingerprint)
	if !ok || rec.Expired(now) {
		return nil, ErrNotFound
	}
	out := *rec
	out.Body = append([]byte(nil), rec.Body...)
	return &out, nil
}

func (m *MemoryIdempotency) Store(_ context.Context, fingerprint string, status int, body []byte, at time.Time) error {
	rec := newIdempotencyRecord(fingerprint, status, body, at, m.ttl)

	stored := false
	m.records.Upsert(fingerprint, rec, func(exist bool, old, fresh *models.IdempotencyRecord) *models.IdempotencyRecord {
		if exist && !old.Expired(at) {
			return old
		}
		stored = true
		return fresh
	})
	if !stored {
		return ErrAlreadyExists
	}
	return nil
}

func (m *MemoryIdempotency) Sweep(_ context.Context, now time.Time) (int64, error) {
	var expired []string
	m.records.IterCb(func(key string, rec *models.IdempotencyRecord) {
		if rec.Expired(now) {
			expired = append(expired, key)
		}
	})

	var removed int64
	for _, key := range expired {
		if m.records.RemoveCb(key, func(_ string, rec *models.IdempotencyRecord, exists bool) bool {
			return exists && rec.Expired(now)
		}) {
			removed++
		}
	}
	return removed, nil
}

// Len 当前保存的记录数 (含尚未清理的过期记录)
func (m *MemoryIdempotency) Len() int {
	return m.records.Count()
}

func newIdempotencyRecord(fingerprint string, status int, body []byte, at time.Time, ttl time.Duration) *models.IdempotencyRecord {
	rec := &models.IdempotencyRecord{
		Fingerprint: fingerprint,
		Status:      status,
		Body:        append([]byte(nil), body...),
		CreatedAt:   at,
	}
	if ttl > 0 {
		exp := at.Add(ttl)
		rec.ExpiresAt = &exp
	}
	return rec
}
