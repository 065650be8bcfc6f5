package config

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"
)

// Loyalty 积分规则
type Loyalty struct {
	DailyCap int64  `json:"daily_cap" yaml:"daily_cap"` // 每个客户每个自然日最多可获得的积分
	EarnRate int64  `json:"earn_rate" yaml:"earn_rate"` // 多少最小货币单位折合 1 积分
	Timezone string `json:"timezone" yaml:"timezone"`   // 计算"今天"使用的时区
	Currency string `json:"currency" yaml:"currency"`   // 唯一支持的币种
}

func (l *Loyalty) Validate() error {
	if l == nil {
		return errors.New("config: loyalty section is required")
	}
	if l.DailyCap <= 0 {
		return fmt.Errorf("config: daily_cap must be positive, got %d", l.DailyCap)
	}
	if l.EarnRate <= 0 {
		return fmt.Errorf("config: earn_rate must be positive, got %d", l.EarnRate)
	}
	if l.Currency == "" {
		return errors.New("config: currency is required")
	}
	if _, err := time.LoadLocation(l.Timezone); err != nil {
		return fmt.Errorf("config: timezone %q: %w", l.Timezone, err)
	}
	return nil
}
