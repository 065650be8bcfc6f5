package dao

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Jayjokeer/loyalty-api/models"
	"github.com/Jayjokeer/loyalty-api/pkg/snowflake"
)

var _ LedgerStore = (*MemoryLedger)(nil)

// MemoryLedger 进程内账本, 生命周期与进程相同
type MemoryLedger struct {
	mu           sync.RWMutex
	customers    map[string]models.Customer
	byPhone      map[string]string
	transactions map[string][]models.EarnTransaction
	redemptions  map[string][]models.Redemption
	txCount      int64
	redCount     int64
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		customers:    make(map[string]models.Customer),
		byPhone:      make(map[string]string),
		transactions: make(map[string][]models.EarnTransaction),
		redemptions:  make(map[string][]models.Redemption),
	}
}

func (m *MemoryLedger) CreateCustomer(_ context.Context, phone string, email *string, at time.Time) (*models.Customer, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.byPhone[phone]; ok {
		existing := m.customers[id]
		return &existing, false, nil
	}

	c := models.Customer{
		ID:        snowflake.GenPrefixedID(snowflake.PrefixCustomer),
		Phone:     phone,
		Email:     cloneString(email),
		CreatedAt: at,
	}
	m.customers[c.ID] = c
	m.byPhone[phone] = c.ID
	return &c, true, nil
}

func (m *MemoryLedger) GetCustomerByID(_ context.Context, id string) (*models.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.customers[id]
	if !ok {
		return nil, fmt.Errorf("dao.MemoryLedger.GetCustomerByID %s: %w", id, ErrNotFound)
	}
	return &c, nil
}

func (m *MemoryLedger) GetCustomerByPhone(_ context.Context, phone string) (*models.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byPhone[phone]
	if !ok {
		return nil, fmt.Errorf("dao.MemoryLedger.GetCustomerByPhone: %w", ErrNotFound)
	}
	c := m.customers[id]
	return &c, nil
}

func (m *MemoryLedger) CustomerExists(_ context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.customers[id]
	return ok, nil
}

func (m *MemoryLedger) RecordEarn(_ context.Context, customerID string, amountMinor, points int64, at time.Time) (*models.EarnTransaction, error) {
	tx := models.EarnTransaction{
		ID:          snowflake.GenPrefixedID(snowflake.PrefixTransaction),
		CustomerID:  customerID,
		AmountMinor: amountMinor,
		Points:      points,
		CreatedAt:   at,
	}

	m.mu.Lock()
	m.transactions[customerID] = append(m.transactions[customerID], tx)
	m.txCount++
	m.mu.Unlock()

	return &tx, nil
}

func (m *MemoryLedger) RecordRedemption(_ context.Context, customerID string, points int64, at time.Time) (*models.Redemption, error) {
	r := models.Redemption{
		ID:         snowflake.GenPrefixedID(snowflake.PrefixRedemption),
		CustomerID: customerID,
		Points:     points,
		CreatedAt:  at,
	}

	m.mu.Lock()
	m.redemptions[customerID] = append(m.redemptions[customerID], r)
	m.redCount++
	m.mu.Unlock()

	return &r, nil
}

func (m *MemoryLedger) TransactionsFor(_ context.Context, customerID string) ([]models.EarnTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.EarnTransaction, len(m.transactions[customerID]))
	copy(out, m.transactions[customerID])
	return out, nil
}

func (m *MemoryLedger) RedemptionsFor(_ context.Context, customerID string) ([]models.Redemption, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Redemption, len(m.redemptions[customerID]))
	copy(out, m.redemptions[customerID])
	return out, nil
}

func (m *MemoryLedger) Stats(_ context.Context) (models.LedgerStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return models.LedgerStats{
		Customers:    int64(len(m.customers)),
		Transactions: m.txCount,
		Redemptions:  m.redCount,
	}, nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
