package types

import (
	"time"

	"github.com/Jayjokeer/loyalty-api/models"
)

// EarnReq 消费获得积分, amountMinor 为最小货币单位 (kobo)
type EarnReq struct {
	CustomerID  string `json:"customerId" binding:"required"`
	AmountMinor *int64 `json:"amountMinor" binding:"required,gte=0"`
	Currency    string `json:"currency" binding:"required"`
}

type EarnResp struct {
	CustomerID              string                  `json:"customerId"`
	CreditedPoints          int64                   `json:"creditedPoints"`
	RemainingDailyAllowance int64                   `json:"remainingDailyAllowance"`
	Transaction             *models.EarnTransaction `json:"transaction"`
}

type RedeemReq struct {
	CustomerID string `json:"customerId" binding:"required"`
	Points     *int64 `json:"points" binding:"required,gt=0"`
}

type RedeemResp struct {
	CustomerID     string `json:"customerId"`
	RedeemedPoints int64  `json:"redeemedPoints"`
	NewBalance     int64  `json:"newBalance"`
}

// WalletResp 钱包概览
type WalletResp struct {
	CustomerID             string `json:"customerId"`
	BalancePoints          int64  `json:"balancePoints"`
	TodayEarnedPoints      int64  `json:"todayEarnedPoints"`
	LifetimeEarnedPoints   int64  `json:"lifetimeEarnedPoints"`
	LifetimeRedeemedPoints int64  `json:"lifetimeRedeemedPoints"`
}

// 流水筛选
const (
	ActionAll    uint8 = 0
	ActionEarn   uint8 = 1
	ActionRedeem uint8 = 2
)

const (
	OrderTypeIncome  = "INCOME"
	OrderTypeExpense = "EXPENSE"
)

type ListPointRecordsReq struct {
	Action uint8 `form:"action" binding:"oneof=0 1 2"`              // 0-全部, 1-仅获得, 2-仅兑换
	Cursor int64 `form:"cursor" binding:"gte=0"`                    // 偏移量
	Limit  int   `form:"limit,default=10" binding:"gte=1,lte=100"` // 每页数量
}

// PointRecord 每一条流水的细节
type PointRecord struct {
	ID          string    `json:"id"`
	Amount      int64     `json:"amount"`                 // 变动数值 (获得为正, 兑换为负)
	AmountMinor *int64    `json:"amount_minor,omitempty"` // 获得流水对应的消费金额
	OrderType   string    `json:"order_type"`             // INCOME / EXPENSE
	CreatedAt   time.Time `json:"created_at"`
}

// ListPointsRecord 流水列表包装
type ListPointsRecord struct {
	Records    []PointRecord `json:"records"`
	NextCursor int64         `json:"next_cursor"` // 下一页的偏移量, 没有更多时为 0
	HasMore    bool          `json:"has_more"`
}
