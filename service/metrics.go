package service

import (
	"context"
	"errors"
	"time"

	"github.com/Jayjokeer/loyalty-api/dao"
	"github.com/Jayjokeer/loyalty-api/models"
	"github.com/Jayjokeer/loyalty-api/pkg/log"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	pointsCreditedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "loyalty_points_credited_total",
		Help: "Points credited by earn requests",
	})
	pointsCappedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "loyalty_points_capped_total",
		Help: "Calculated points withheld by the daily cap",
	})
	pointsRedeemedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "loyalty_points_redeemed_total",
		Help: "Points redeemed",
	})
	redemptionsRejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "loyalty_redemptions_rejected_total",
		Help: "Redemptions rejected for insufficient balance",
	})
)

func init() {
	prometheus.MustRegister(pointsCreditedTotal, pointsCappedTotal, pointsRedeemedTotal, redemptionsRejectedTotal)
}

// RegisterLedgerMetrics 账本规模 gauge, 重复注册时忽略
func RegisterLedgerMetrics(reg prometheus.Registerer, ledger dao.LedgerStore) error {
	stats := func(pick func(models.LedgerStats) int64) func() float64 {
		return func() float64 {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			s, err := ledger.Stats(ctx)
			if err != nil {
				log.L.Warn("ledger stats failed", zap.Error(err))
				return 0
			}
			return float64(pick(s))
		}
	}

	gauges := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "loyalty_ledger_customers",
			Help: "Registered customers",
		}, stats(func(s models.LedgerStats) int64 { return s.Customers })),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "loyalty_ledger_transactions",
			Help: "Earn transactions recorded",
		}, stats(func(s models.LedgerStats) int64 { return s.Transactions })),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "loyalty_ledger_redemptions",
			Help: "Redemptions recorded",
		}, stats(func(s models.LedgerStats) int64 { return s.Redemptions })),
	}
	for _, g := range gauges {
		if err := reg.Register(g); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
		}
	}
	return nil
}
