package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jayjokeer/loyalty-api/models"
	"github.com/Jayjokeer/loyalty-api/pkg/snowflake"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ LedgerStore = (*GormLedger)(nil)

// GormLedger 基于 gorm 的账本 (MySQL / SQLite)
type GormLedger struct {
	customers    Repo[models.Customer]
	transactions Repo[models.EarnTransaction]
	redemptions  Repo[models.Redemption]
}

func NewGormLedger(db *gorm.DB) (*GormLedger, error) {
	if err := db.AutoMigrate(&models.Customer{}, &models.EarnTransaction{}, &models.Redemption{}); err != nil {
		return nil, fmt.Errorf("dao.GormLedger migrate: %w", err)
	}
	return &GormLedger{
		customers:    NewRepo[models.Customer](db),
		transactions: NewRepo[models.EarnTransaction](db),
		redemptions:  NewRepo[models.Redemption](db),
	}, nil
}

func (g *GormLedger) CreateCustomer(ctx context.Context, phone string, email *string, at time.Time) (*models.Customer, bool, error) {
	existing, err := g.GetCustomerByPhone(ctx, phone)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	c := &models.Customer{
		ID:        snowflake.GenPrefixedID(snowflake.PrefixCustomer),
		Phone:     phone,
		Email:     email,
		CreatedAt: at,
	}
	res := g.customers.Db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "phone"}}, DoNothing: true}).
		Create(c)
	if res.Error != nil {
		return nil, false, fmt.Errorf("dao.GormLedger.CreateCustomer: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// 并发写入时另一方已经创建
		existing, err := g.GetCustomerByPhone(ctx, phone)
		return existing, false, err
	}
	return c, true, nil
}

func (g *GormLedger) GetCustomerByID(ctx context.Context, id string) (*models.Customer, error) {
	c, err := g.customers.FindByWhere(ctx, "id = ?", id)
	if err != nil {
		return nil, notFound("dao.GormLedger.GetCustomerByID", err)
	}
	return c, nil
}

func (g *GormLedger) GetCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	c, err := g.customers.FindByWhere(ctx, "phone = ?", phone)
	if err != nil {
		return nil, notFound("dao.GormLedger.GetCustomerByPhone", err)
	}
	return c, nil
}

func (g *GormLedger) CustomerExists(ctx context.Context, id string) (bool, error) {
	return g.customers.IsExist(ctx, "id = ?", id)
}

func (g *GormLedger) RecordEarn(ctx context.Context, customerID string, amountMinor, points int64, at time.Time) (*models.EarnTransaction, error) {
	tx := &models.EarnTransaction{
		ID:          snowflake.GenPrefixedID(snowflake.PrefixTransaction),
		CustomerID:  customerID,
		AmountMinor: amountMinor,
		Points:      points,
		CreatedAt:   at,
	}
	if err := g.transactions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("dao.GormLedger.RecordEarn: %w", err)
	}
	return tx, nil
}

func (g *GormLedger) RecordRedemption(ctx context.Context, customerID string, points int64, at time.Time) (*models.Redemption, error) {
	r := &models.Redemption{
		ID:         snowflake.GenPrefixedID(snowflake.PrefixRedemption),
		CustomerID: customerID,
		Points:     points,
		CreatedAt:  at,
	}
	if err := g.redemptions.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("dao.GormLedger.RecordRedemption: %w", err)
	}
	return r, nil
}

func (g *GormLedger) TransactionsFor(ctx context.Context, customerID string) ([]models.EarnTransaction, error) {
	return g.transactions.FindAll(ctx, "created_at ASC, id ASC", "customer_id = ?", customerID)
}

func (g *GormLedger) RedemptionsFor(ctx context.Context, customerID string) ([]models.Redemption, error) {
	return g.redemptions.FindAll(ctx, "created_at ASC, id ASC", "customer_id = ?", customerID)
}

func (g *GormLedger) Stats(ctx context.Context) (models.LedgerStats, error) {
	var (
		stats models.LedgerStats
		err   error
	)
	if stats.Customers, err = g.customers.Count(ctx); err != nil {
		return stats, err
	}
	if stats.Transactions, err = g.transactions.Count(ctx); err != nil {
		return stats, err
	}
	if stats.Redemptions, err = g.redemptions.Count(ctx); err != nil {
		return stats, err
	}
	return stats, nil
}

func notFound(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
