package dao

import (
	"context"
	"errors"
	"time"

	"github.com/Jayjokeer/loyalty-api/models"
)

var (
	ErrNotFound      = errors.New("dao: record not found")
	ErrAlreadyExists = errors.New("dao: record already exists")
)

// LedgerStore 客户与积分流水的存储, 只负责读写, 不做业务校验.
// RecordEarn / RecordRedemption 要求调用方已确认客户存在.
type LedgerStore interface {
	// CreateCustomer 手机号已存在时返回已有客户, created 为 false
	CreateCustomer(ctx context.Context, phone string, email *string, at time.Time) (customer *models.Customer, created bool, err error)
	GetCustomerByID(ctx context.Context, id string) (*models.Customer, error)
	GetCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error)
	CustomerExists(ctx context.Context, id string) (bool, error)

	RecordEarn(ctx context.Context, customerID string, amountMinor, points int64, at time.Time) (*models.EarnTransaction, error)
	RecordRedemption(ctx context.Context, customerID string, points int64, at time.Time) (*models.Redemption, error)

	// TransactionsFor / RedemptionsFor 按写入顺序返回
	TransactionsFor(ctx context.Context, customerID string) ([]models.EarnTransaction, error)
	RedemptionsFor(ctx context.Context, customerID string) ([]models.Redemption, error)

	Stats(ctx context.Context) (models.LedgerStats, error)
}
