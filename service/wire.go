package service

import (
	"github.com/Jayjokeer/loyalty-api/config"
	"github.com/Jayjokeer/loyalty-api/pkg/timeutil"

	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	NewLocks,
	NewCalendar,

	wire.Struct(new(CustomerService), "*"),
	wire.Bind(new(ICustomerService), new(*CustomerService)),

	wire.Struct(new(PointService), "*"),
	wire.Bind(new(IPointService), new(*PointService)),

	wire.Struct(new(WalletService), "*"),
	wire.Bind(new(IWalletService), new(*WalletService)),
)

// NewCalendar 业务日历, 使用配置的时区
func NewCalendar(conf *config.Config) (*timeutil.Calendar, error) {
	return timeutil.NewCalendar(conf.Loyalty.Timezone, nil)
}
