package service

import (
	"strings"
	"time"

	"ledger/models"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// 报表周期
const (
	PeriodAll    = "all"
	PeriodToday  = "today"
	PeriodWeek   = "week"
	PeriodMonth  = "month"
	PeriodCustom = "custom"
)

// DateRange 闭区间日期范围，零值表示不限
type DateRange struct {
	Start time.Time
	End   time.Time
}

// IsZero 是否不限日期
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

func (r DateRange) apply(db *gorm.DB, column string) *gorm.DB {
	if !r.Start.IsZero() {
		db = db.Where(column+" >= ?", r.Start)
	}
	if !r.End.IsZero() {
		db = db.Where(column+" <= ?", r.End)
	}
	return db
}

// Contains 日期是否落在范围内
func (r DateRange) Contains(t time.Time) bool {
	d := models.DateOf(t)
	if !r.Start.IsZero() && d.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && d.After(r.End) {
		return false
	}
	return true
}

// ParsePeriod 将周期参数转换为日期范围。
// week 为今天往前 7 天，month 为往前 30 天；custom 缺少起止日期时视为 all。
func ParsePeriod(period, start, end string, today time.Time) (DateRange, error) {
	day := now.With(today.In(time.Local)).BeginningOfDay()
	switch strings.ToLower(strings.TrimSpace(period)) {
	case "", PeriodAll:
		return DateRange{}, nil
	case PeriodToday:
		return DateRange{Start: day, End: day}, nil
	case PeriodWeek:
		return DateRange{Start: day.AddDate(0, 0, -7)}, nil
	case PeriodMonth:
		return DateRange{Start: day.AddDate(0, 0, -30)}, nil
	case PeriodCustom:
		if start == "" || end == "" {
			return DateRange{}, nil
		}
		s, err := models.ParseDate(start)
		if err != nil {
			return DateRange{}, invalid("start_date", "日期格式应为 YYYY-MM-DD")
		}
		e, err := models.ParseDate(end)
		if err != nil {
			return DateRange{}, invalid("end_date", "日期格式应为 YYYY-MM-DD")
		}
		if e.Before(s) {
			return DateRange{}, invalid("end_date", "不能早于开始日期")
		}
		return DateRange{Start: s, End: e}, nil
	default:
		return DateRange{}, invalid("period", "不支持的周期")
	}
}
