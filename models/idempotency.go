package models

import (
	"time"

	"gorm.io/datatypes"
)

// IdempotencyRecord 请求指纹 -> 首次响应, 写入后不可修改
type IdempotencyRecord struct {
	Fingerprint string         `gorm:"column:fingerprint;primaryKey;size:64"`
	Status      int            `gorm:"column:status;not null"`
	Body        datatypes.JSON `gorm:"column:body"`
	CreatedAt   time.Time      `gorm:"column:created_at;not null"`
	ExpiresAt   *time.Time     `gorm:"column:expires_at;index"` // nil 表示不过期
}

func (IdempotencyRecord) TableName() string {
	return "idempotency_records"
}

// Expired 记录在 now 时刻是否已过保留期
func (r *IdempotencyRecord) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && !now.Before(*r.ExpiresAt)
}
