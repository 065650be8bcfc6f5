package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jayjokeer/loyalty-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ IdempotencyStore = (*GormIdempotency)(nil)

type GormIdempotency struct {
	Repo[models.IdempotencyRecord]
	ttl time.Duration
}

func NewGormIdempotency(db *gorm.DB, ttl time.Duration) (*GormIdempotency, error) {
	if err := db.AutoMigrate(&models.IdempotencyRecord{}); err != nil {
		return nil, fmt.Errorf("dao.GormIdempotency migrate: %w", err)
	}
	return &GormIdempotency{Repo: NewRepo[models.IdempotencyRecord](db), ttl: ttl}, nil
}

func (g *GormIdempotency) Lookup(ctx context.Context, fingerprint string, now time.Time) (*models.IdempotencyRecord, error) {
	rec, err := g.FindByWhere(ctx, "fingerprint = ?", fingerprint)
	if err != nil {
		return nil, notFound("dao.GormIdempotency.Lookup", err)
	}
	if rec.Expired(now) {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (g *GormIdempotency) Store(ctx context.Context, fingerprint string, status int, body []byte, at time.Time) error {
	rec := newIdempotencyRecord(fingerprint, status, body, at, g.ttl)

	inserted, err := g.insert(ctx, rec)
	if err != nil || inserted {
		return err
	}

	// 指纹已存在: 只有过期记录才允许被替换
	res := g.Db.WithContext(ctx).
		Where("fingerprint = ? AND expires_at IS NOT NULL AND expires_at <= ?", fingerprint, at).
		Delete(&models.IdempotencyRecord{})
	if res.Error != nil {
		return fmt.Errorf("dao.GormIdempotency.Store: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyExists
	}
	if inserted, err = g.insert(ctx, rec); err != nil {
		return err
	}
	if !inserted {
		return ErrAlreadyExists
	}
	return nil
}

func (g *GormIdempotency) insert(ctx context.Context, rec *models.IdempotencyRecord) (bool, error) {
	res := g.Db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "fingerprint"}}, DoNothing: true}).
		Create(rec)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, fmt.Errorf("dao.GormIdempotency.Store: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (g *GormIdempotency) Sweep(ctx context.Context, now time.Time) (int64, error) {
	res := g.Db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Delete(&models.IdempotencyRecord{})
	return res.RowsAffected, res.Error
}
