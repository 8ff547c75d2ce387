package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CapitalID 现金余额单行记录的固定主键
const CapitalID uint = 1

// Capital 现金余额（全局唯一一行）
type Capital struct {
	ID            uint            `json:"id" gorm:"primaryKey;autoIncrement:false"`
	InitialAmount decimal.Decimal `json:"initial_amount" gorm:"type:decimal(15,2);not null;default:0"`
	LastUpdated   time.Time       `json:"last_updated"`
}

func (Capital) TableName() string {
	return "capital"
}

// MovementSource 资金变动来源
type MovementSource string

const (
	SourcePayment         MovementSource = "payment"
	SourceLoanInstallment MovementSource = "loan_installment"
	SourceIncome          MovementSource = "income"
	SourceHomeExpense     MovementSource = "home_expense"
	SourceContactExpense  MovementSource = "contact_expense"
	SourceManual          MovementSource = "manual"
)

// CapitalMovement 每次余额调整的流水
type CapitalMovement struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:decimal(15,2);not null"` // 带符号
	BalanceAfter decimal.Decimal `json:"balance_after" gorm:"type:decimal(15,2);not null"`
	Source       MovementSource  `json:"source" gorm:"size:30;not null;index"`
	SourceID     uint            `json:"source_id" gorm:"index"`
	Note         string          `json:"note" gorm:"size:255"`
	CreatedAt    time.Time       `json:"created_at" gorm:"index"`
}

func (CapitalMovement) TableName() string {
	return "capital_movements"
}
