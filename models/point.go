package models

import "time"

// EarnTransaction 积分获得流水, 只追加
type EarnTransaction struct {
	ID          string    `gorm:"column:id;primaryKey;size:64" json:"id"`
	CustomerID  string    `gorm:"column:customer_id;not null;index:idx_earn_customer;size:64" json:"customerId"`
	AmountMinor int64     `gorm:"column:amount_minor;not null" json:"amountMinor"` // 消费金额(最小货币单位)
	Points      int64     `gorm:"column:points;not null" json:"points"`            // 实际入账积分, 可能因每日上限少于计算值
	CreatedAt   time.Time `gorm:"column:created_at;not null" json:"createdAt"`
}

func (EarnTransaction) TableName() string {
	return "earn_transactions"
}

// Redemption 积分兑换流水, 只追加
type Redemption struct {
	ID         string    `gorm:"column:id;primaryKey;size:64" json:"id"`
	CustomerID string    `gorm:"column:customer_id;not null;index:idx_redemption_customer;size:64" json:"customerId"`
	Points     int64     `gorm:"column:points;not null" json:"points"`
	CreatedAt  time.Time `gorm:"column:created_at;not null" json:"createdAt"`
}

func (Redemption) TableName() string {
	return "redemptions"
}

// LedgerStats 账本规模
type LedgerStats struct {
	Customers    int64
	Transactions int64
	Redemptions  int64
}
