package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// IncomeRecord 与交易无关的其他收入
type IncomeRecord struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(14,2);not null"`
	Date        time.Time       `json:"date" gorm:"type:date;not null;index"`
	Description string          `json:"description" gorm:"size:255"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (IncomeRecord) TableName() string {
	return "income_records"
}

// HomeExpense 非经营性支出
type HomeExpense struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(14,2);not null"`
	Date        time.Time       `json:"date" gorm:"type:date;not null;index"`
	Description string          `json:"description" gorm:"size:255"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (HomeExpense) TableName() string {
	return "home_expenses"
}

// PayerType 费用由谁垫付
type PayerType string

const (
	PayerUs   PayerType = "us"
	PayerThem PayerType = "them"
)

func (p PayerType) Valid() bool {
	return p == PayerUs || p == PayerThem
}

// ContactExpense 与交易伙伴相关的费用
type ContactExpense struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	ContactID   uint            `json:"contact_id" gorm:"index;not null"`
	Contact     *Contact        `json:"contact,omitempty" gorm:"foreignKey:ContactID"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(14,2);not null"`
	PayerType   PayerType       `json:"payer_type" gorm:"size:10;not null"`
	Date        time.Time       `json:"date" gorm:"type:date;not null;index"`
	Description string          `json:"description" gorm:"size:255"`
	// CapitalDelta 创建时实际计入现金的金额，删除时按此冲回
	CapitalDelta decimal.Decimal `json:"capital_delta" gorm:"type:decimal(14,2);not null;default:0"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (ContactExpense) TableName() string {
	return "contact_expenses"
}
