package service

import (
	"time"

	"ledger/config"
	"ledger/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Options 账务规则
type Options struct {
	AllowNegativeStock        bool
	CapitalMissing            string
	AmortizationRemainder     string
	ThemExpenseAdjustsCapital bool
	LowStockThreshold         decimal.Decimal
	AlertWindowDays           int
	RecentSalesLimit          int
}

// DefaultOptions 与内置默认配置一致
func DefaultOptions() Options {
	return Options{
		CapitalMissing:        config.CapitalMissingCreate,
		AmortizationRemainder: config.RemainderDrop,
		LowStockThreshold:     decimal.NewFromInt(50),
		AlertWindowDays:       3,
		RecentSalesLimit:      10,
	}
}

// OptionsFromConfig 从配置构建
func OptionsFromConfig(cfg config.LedgerConfig) Options {
	return Options{
		AllowNegativeStock:        cfg.AllowNegativeStock,
		CapitalMissing:            cfg.CapitalMissing,
		AmortizationRemainder:     cfg.AmortizationRemainder,
		ThemExpenseAdjustsCapital: cfg.ThemExpenseAdjustsCapital,
		LowStockThreshold:         cfg.LowStock(),
		AlertWindowDays:           cfg.AlertWindowDays,
		RecentSalesLimit:          cfg.RecentSalesLimit,
	}
}

// Ledger 账务一致性引擎。每个写操作都是一个数据库事务内完成的脚本：
// 校验、持久化、派生汇总重算、现金余额调整，要么全部成功要么全部回滚。
type Ledger struct {
	db      *gorm.DB
	opts    Options
	capital *CapitalService
	now     func() time.Time
}

// NewLedger 创建账务引擎
func NewLedger(db *gorm.DB, capital *CapitalService, opts Options) *Ledger {
	return &Ledger{db: db, opts: opts, capital: capital, now: time.Now}
}

// SetClock 替换"今天"的来源
func (l *Ledger) SetClock(now func() time.Time) {
	l.now = now
	l.capital.now = now
}

// Capital 现金余额服务
func (l *Ledger) Capital() *CapitalService {
	return l.capital
}

// Today 当前日期
func (l *Ledger) Today() time.Time {
	return models.DateOf(l.now())
}

// Build 按配置组装账务引擎与报表
func Build(db *gorm.DB, cfg config.LedgerConfig) (*Ledger, *Reporter) {
	opts := OptionsFromConfig(cfg)
	l := NewLedger(db, NewCapitalService(db, nil, opts.CapitalMissing), opts)
	return l, NewReporter(db, opts)
}
