package service

import (
	"context"
	"fmt"

	"github.com/Jayjokeer/loyalty-api/config"
	"github.com/Jayjokeer/loyalty-api/dao"
	"github.com/Jayjokeer/loyalty-api/pkg/log"
	"github.com/Jayjokeer/loyalty-api/pkg/points"
	"github.com/Jayjokeer/loyalty-api/pkg/timeutil"
	"github.com/Jayjokeer/loyalty-api/types"

	"go.uber.org/zap"
)

type PointService struct {
	Config   *config.Config
	Ledger   dao.LedgerStore
	Calendar *timeutil.Calendar
	Locks    *Locks
}

var _ IPointService = (*PointService)(nil)

type IPointService interface {
	// Earn 按消费金额入账, 受每日上限约束
	Earn(ctx context.Context, customerID string, amountMinor int64) (*types.EarnResp, error)
	// Redeem 余额不足时返回 ErrInsufficientPoints, 不写流水
	Redeem(ctx context.Context, customerID string, amount int64) (*types.RedeemResp, error)

	// 查询
	CalculatePoints(amountMinor int64) int64
	EarnedOnDate(ctx context.Context, customerID string, day timeutil.Date) (int64, error)
	RemainingDailyAllowance(ctx context.Context, customerID string) (int64, error)
}

func (p *PointService) CalculatePoints(amountMinor int64) int64 {
	return points.Calculate(amountMinor, p.Config.Loyalty.EarnRate)
}

func (p *PointService) Earn(ctx context.Context, customerID string, amountMinor int64) (*types.EarnResp, error) {
	unlock := p.Locks.Customer(customerID)
	defer unlock()

	if err := ensureCustomer(ctx, p.Ledger, customerID); err != nil {
		return nil, err
	}

	// 时间只取一次: 既用于判断"今天", 也作为流水的创建时间
	now := p.Calendar.Now()
	earnedToday, err := p.EarnedOnDate(ctx, customerID, p.Calendar.DateOf(now))
	if err != nil {
		return nil, err
	}

	grant := points.ApplyDailyCap(p.Config.Loyalty.DailyCap, earnedToday, p.CalculatePoints(amountMinor))
	tx, err := p.Ledger.RecordEarn(ctx, customerID, amountMinor, grant.Credited, now)
	if err != nil {
		return nil, fmt.Errorf("记录积分流水失败: %w", err)
	}

	pointsCreditedTotal.Add(float64(grant.Credited))
	if withheld := grant.Calculated - grant.Credited; withheld > 0 {
		pointsCappedTotal.Add(float64(withheld))
		log.L.Info("daily cap reached",
			zap.String("customer_id", customerID),
			zap.Int64("calculated", grant.Calculated),
			zap.Int64("credited", grant.Credited))
	}

	return &types.EarnResp{
		CustomerID:              customerID,
		CreditedPoints:          grant.Credited,
		RemainingDailyAllowance: grant.RemainingAfter,
		Transaction:             tx,
	}, nil
}

func (p *PointService) Redeem(ctx context.Context, customerID string, amount int64) (*types.RedeemResp, error) {
	unlock := p.Locks.Customer(customerID)
	defer unlock()

	if err := ensureCustomer(ctx, p.Ledger, customerID); err != nil {
		return nil, err
	}

	txs, err := p.Ledger.TransactionsFor(ctx, customerID)
	if err != nil {
		return nil, err
	}
	reds, err := p.Ledger.RedemptionsFor(ctx, customerID)
	if err != nil {
		return nil, err
	}

	balance := points.Balance(txs, reds)
	if !points.CanRedeem(balance, amount) {
		redemptionsRejectedTotal.Inc()
		return nil, ErrInsufficientPoints
	}

	if _, err := p.Ledger.RecordRedemption(ctx, customerID, amount, p.Calendar.Now()); err != nil {
		return nil, fmt.Errorf("记录兑换流水失败: %w", err)
	}
	pointsRedeemedTotal.Add(float64(amount))

	return &types.RedeemResp{
		CustomerID:     customerID,
		RedeemedPoints: amount,
		NewBalance:     balance - amount,
	}, nil
}

func (p *PointService) EarnedOnDate(ctx context.Context, customerID string, day timeutil.Date) (int64, error) {
	txs, err := p.Ledger.TransactionsFor(ctx, customerID)
	if err != nil {
		return 0, err
	}
	return points.EarnedOn(txs, day, p.Calendar.Location()), nil
}

func (p *PointService) RemainingDailyAllowance(ctx context.Context, customerID string) (int64, error) {
	earned, err := p.EarnedOnDate(ctx, customerID, p.Calendar.Today())
	if err != nil {
		return 0, err
	}
	return points.Remaining(p.Config.Loyalty.DailyCap, earned), nil
}
