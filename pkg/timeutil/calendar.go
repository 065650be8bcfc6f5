package timeutil

import (
	"fmt"
	"time"
	_ "time/tzdata" // 容器镜像里不一定带时区数据库
)

const dateLayout = "2006-01-02"

// Date 指定时区下的自然日, 形如 2006-01-02
type Date string

// Calendar 把绝对时间换算为固定时区的自然日
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// NewCalendar now 为空时使用 time.Now
func NewCalendar(timezone string, now func() time.Time) (*Calendar, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("timeutil: load location %q: %w", timezone, err)
	}
	if now == nil {
		now = time.Now
	}
	return &Calendar{loc: loc, now: now}, nil
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Now 返回 UTC 时间, 持久化与比较都使用这一份
func (c *Calendar) Now() time.Time {
	return c.now().UTC()
}

func (c *Calendar) DateOf(t time.Time) Date {
	return DateIn(t, c.loc)
}

func (c *Calendar) Today() Date {
	return c.DateOf(c.Now())
}

func DateIn(t time.Time, loc *time.Location) Date {
	return Date(t.In(loc).Format(dateLayout))
}
