package models

import (
	"time"

	"github.com/jinzhu/now"
)

// DateLayout 日期格式
const DateLayout = "2006-01-02"

// DateOf 截断到当天零点（本地时区）
func DateOf(t time.Time) time.Time {
	return now.With(t.In(time.Local)).BeginningOfDay()
}

// ParseDate 解析 YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}

// AddMonths 按日历月偏移，日超出目标月天数时取月末
func AddMonths(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	last := now.With(first).EndOfMonth().Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}
