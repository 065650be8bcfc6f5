package service

import (
	"context"
	"slices"

	"github.com/Jayjokeer/loyalty-api/dao"
	"github.com/Jayjokeer/loyalty-api/models"
	"github.com/Jayjokeer/loyalty-api/pkg/points"
	"github.com/Jayjokeer/loyalty-api/pkg/timeutil"
	"github.com/Jayjokeer/loyalty-api/types"
)

type WalletService struct {
	Ledger   dao.LedgerStore
	Calendar *timeutil.Calendar
	Locks    *Locks
}

var _ IWalletService = (*WalletService)(nil)

type IWalletService interface {
	Balance(ctx context.Context, customerID string) (int64, error)
	LifetimeStats(ctx context.Context, customerID string) (points.Lifetime, error)
	Summary(ctx context.Context, customerID string) (*types.WalletResp, error)
	History(ctx context.Context, customerID string, action uint8, cursor int64, limit int) (*types.ListPointsRecord, error)
}

// snapshot 在客户锁内读取两类流水, 保证余额与累计值来自同一时刻
func (w *WalletService) snapshot(ctx context.Context, customerID string) ([]models.EarnTransaction, []models.Redemption, error) {
	unlock := w.Locks.Customer(customerID)
	defer unlock()

	if err := ensureCustomer(ctx, w.Ledger, customerID); err != nil {
		return nil, nil, err
	}
	txs, err := w.Ledger.TransactionsFor(ctx, customerID)
	if err != nil {
		return nil, nil, err
	}
	reds, err := w.Ledger.RedemptionsFor(ctx, customerID)
	if err != nil {
		return nil, nil, err
	}
	return txs, reds, nil
}

func (w *WalletService) Balance(ctx context.Context, customerID string) (int64, error) {
	txs, reds, err := w.snapshot(ctx, customerID)
	if err != nil {
		return 0, err
	}
	return points.Balance(txs, reds), nil
}

func (w *WalletService) LifetimeStats(ctx context.Context, customerID string) (points.Lifetime, error) {
	txs, reds, err := w.snapshot(ctx, customerID)
	if err != nil {
		return points.Lifetime{}, err
	}
	return points.Totals(txs, reds), nil
}

func (w *WalletService) Summary(ctx context.Context, customerID string) (*types.WalletResp, error) {
	txs, reds, err := w.snapshot(ctx, customerID)
	if err != nil {
		return nil, err
	}

	lifetime := points.Totals(txs, reds)
	return &types.WalletResp{
		CustomerID:             customerID,
		BalancePoints:          lifetime.Earned - lifetime.Redeemed,
		TodayEarnedPoints:      points.EarnedOn(txs, w.Calendar.Today(), w.Calendar.Location()),
		LifetimeEarnedPoints:   lifetime.Earned,
		LifetimeRedeemedPoints: lifetime.Redeemed,
	}, nil
}

// History 获得与兑换合并后按时间倒序分页, cursor 为已返回的条数
func (w *WalletService) History(ctx context.Context, customerID string, action uint8, cursor int64, limit int) (*types.ListPointsRecord, error) {
	txs, reds, err := w.snapshot(ctx, customerID)
	if err != nil {
		return nil, err
	}

	records := make([]types.PointRecord, 0, len(txs)+len(reds))
	if action != types.ActionRedeem {
		for _, tx := range txs {
			amountMinor := tx.AmountMinor
			records = append(records, types.PointRecord{
				ID:          tx.ID,
				Amount:      tx.Points,
				AmountMinor: &amountMinor,
				OrderType:   types.OrderTypeIncome,
				CreatedAt:   tx.CreatedAt,
			})
		}
	}
	if action != types.ActionEarn {
		for _, r := range reds {
			records = append(records, types.PointRecord{
				ID:        r.ID,
				Amount:    -r.Points,
				OrderType: types.OrderTypeExpense,
				CreatedAt: r.CreatedAt,
			})
		}
	}
	slices.SortStableFunc(records, func(a, b types.PointRecord) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	resp := &types.ListPointsRecord{Records: make([]types.PointRecord, 0)}
	if cursor >= int64(len(records)) {
		return resp, nil
	}

	page := records[cursor:]
	if len(page) > limit {
		resp.HasMore = true
		page = page[:limit]
		resp.NextCursor = cursor + int64(limit)
	}
	resp.Records = append(resp.Records, page...)
	return resp, nil
}
