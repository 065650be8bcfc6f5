// Package points 积分计算, 只依赖传入的流水, 不做任何 I/O.
package points

import (
	"time"

	"github.com/Jayjokeer/loyalty-api/models"
	"github.com/Jayjokeer/loyalty-api/pkg/timeutil"
)

// Grant 一次获得积分在每日上限下的结果
type Grant struct {
	Calculated     int64 // 按消费金额算出的积分
	Credited       int64 // 实际入账
	RemainingAfter int64 // 入账后当日剩余额度
}

// Lifetime 累计获得与累计兑换
type Lifetime struct {
	Earned   int64
	Redeemed int64
}

// Calculate floor(amountMinor / earnRate), earnRate 必须为正
func Calculate(amountMinor, earnRate int64) int64 {
	if amountMinor <= 0 {
		return 0
	}
	return amountMinor / earnRate
}

// Remaining 当日剩余额度, 不小于 0
func Remaining(dailyCap, earnedToday int64) int64 {
	return max(0, dailyCap-earnedToday)
}

func ApplyDailyCap(dailyCap, earnedToday, calculated int64) Grant {
	remaining := Remaining(dailyCap, earnedToday)
	credited := min(max(calculated, 0), remaining)
	return Grant{
		Calculated:     calculated,
		Credited:       credited,
		RemainingAfter: remaining - credited,
	}
}

func Totals(txs []models.EarnTransaction, reds []models.Redemption) Lifetime {
	var l Lifetime
	for _, tx := range txs {
		l.Earned += tx.Points
	}
	for _, r := range reds {
		l.Redeemed += r.Points
	}
	return l
}

func Balance(txs []models.EarnTransaction, reds []models.Redemption) int64 {
	l := Totals(txs, reds)
	return l.Earned - l.Redeemed
}

// EarnedOn 指定自然日 (loc 时区) 内入账的积分
func EarnedOn(txs []models.EarnTransaction, day timeutil.Date, loc *time.Location) int64 {
	var sum int64
	for _, tx := range txs {
		if timeutil.DateIn(tx.CreatedAt, loc) == day {
			sum += tx.Points
		}
	}
	return sum
}

func CanRedeem(balance, points int64) bool {
	return balance >= points
}
