package dao

import (
	"context"

	"gorm.io/gorm"
)

// Repo 单表通用操作
type Repo[T any] struct {
	Db *gorm.DB
}

func NewRepo[T any](db *gorm.DB) Repo[T] {
	return Repo[T]{Db: db}
}

func (r *Repo[T]) Model(ctx context.Context) *gorm.DB {
	return r.Db.WithContext(ctx).Model(new(T))
}

// FindByWhere 条件查询单条, 未找到返回 gorm.ErrRecordNotFound
func (r *Repo[T]) FindByWhere(ctx context.Context, where string, args ...any) (*T, error) {
	var item T
	if err := r.Db.WithContext(ctx).Where(where, args...).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindAll 条件查询多条
func (r *Repo[T]) FindAll(ctx context.Context, order string, where string, args ...any) ([]T, error) {
	items := make([]T, 0)
	err := r.Db.WithContext(ctx).Where(where, args...).Order(order).Find(&items).Error
	return items, err
}

// IsExist 判断记录是否存在
func (r *Repo[T]) IsExist(ctx context.Context, where string, args ...any) (bool, error) {
	var count int64
	err := r.Model(ctx).Where(where, args...).Limit(1).Count(&count).Error
	return count > 0, err
}

func (r *Repo[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.Model(ctx).Count(&count).Error
	return count, err
}

func (r *Repo[T]) Create(ctx context.Context, item *T) error {
	return r.Db.WithContext(ctx).Create(item).Error
}
