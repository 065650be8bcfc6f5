package service

import (
	"github.com/Jayjokeer/loyalty-api/pkg/lock"
)

const lockStripes = 256

// Locks 进程内串行化点.
// 加锁顺序固定为 幂等指纹 -> 客户, 服务层只会拿客户锁或手机号锁中的一把.
type Locks struct {
	customers *lock.Striped
	phones    *lock.Striped
}

func NewLocks() *Locks {
	return &Locks{
		customers: lock.NewStriped(lockStripes),
		phones:    lock.NewStriped(lockStripes),
	}
}

func (l *Locks) Customer(customerID string) (unlock func()) {
	return l.customers.Lock(customerID)
}

func (l *Locks) Phone(phone string) (unlock func()) {
	return l.phones.Lock(phone)
}
