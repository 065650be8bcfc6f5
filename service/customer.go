package service

import (
	"context"
	"errors"

	"github.com/Jayjokeer/loyalty-api/dao"
	"github.com/Jayjokeer/loyalty-api/models"
	"github.com/Jayjokeer/loyalty-api/pkg/timeutil"
)

type CustomerService struct {
	Ledger   dao.LedgerStore
	Calendar *timeutil.Calendar
	Locks    *Locks
}

var _ ICustomerService = (*CustomerService)(nil)

type ICustomerService interface {
	// CreateOrGet 同一手机号只创建一次, created 表示本次是否新建
	CreateOrGet(ctx context.Context, phone string, email *string) (customer *models.Customer, created bool, err error)
	Get(ctx context.Context, customerID string) (*models.Customer, error)
	Exists(ctx context.Context, customerID string) (bool, error)
}

func (c *CustomerService) CreateOrGet(ctx context.Context, phone string, email *string) (*models.Customer, bool, error) {
	if email != nil && *email == "" {
		email = nil
	}

	unlock := c.Locks.Phone(phone)
	defer unlock()

	return c.Ledger.CreateCustomer(ctx, phone, email, c.Calendar.Now())
}

func (c *CustomerService) Get(ctx context.Context, customerID string) (*models.Customer, error) {
	customer, err := c.Ledger.GetCustomerByID(ctx, customerID)
	if errors.Is(err, dao.ErrNotFound) {
		return nil, ErrCustomerNotFound
	}
	return customer, err
}

func (c *CustomerService) Exists(ctx context.Context, customerID string) (bool, error) {
	return c.Ledger.CustomerExists(ctx, customerID)
}

func ensureCustomer(ctx context.Context, ledger dao.LedgerStore, customerID string) error {
	ok, err := ledger.CustomerExists(ctx, customerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCustomerNotFound
	}
	return nil
}
