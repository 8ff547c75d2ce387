package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Direction 交易方向：in 为采购入库，out 为销售出库
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Valid 是否为合法方向
func (d Direction) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}

// CashSign 收款对现金的影响方向：销售收款为 +1，采购付款为 -1
func (d Direction) CashSign() decimal.Decimal {
	if d == DirectionOut {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(-1)
}

// Transaction 一笔出入库交易
type Transaction struct {
	ID              uint             `json:"id" gorm:"primaryKey"`
	Date            time.Time        `json:"date" gorm:"type:date;not null;index"`
	Direction       Direction        `json:"direction" gorm:"size:3;not null;index"`
	ProductID       uint             `json:"product_id" gorm:"index;not null"`
	Product         *Product         `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	ContactID       uint             `json:"contact_id" gorm:"index;not null"`
	Contact         *Contact         `json:"contact,omitempty" gorm:"foreignKey:ContactID"`
	Weight          decimal.Decimal  `json:"weight" gorm:"type:decimal(12,2);not null"`
	PricePerKg      decimal.Decimal  `json:"price_per_kg" gorm:"type:decimal(12,2);not null"`
	TotalPrice      decimal.Decimal  `json:"total_price" gorm:"type:decimal(14,2);not null"`
	Notes           string           `json:"notes" gorm:"type:text"`
	FinancialRecord *FinancialRecord `json:"financial_record,omitempty" gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// ComputeTotal 总价始终由重量×单价得出，不信任外部输入
func (t *Transaction) ComputeTotal() {
	t.TotalPrice = t.Weight.Mul(t.PricePerKg).Round(2)
}

func (t *Transaction) BeforeSave(tx *gorm.DB) error {
	t.ComputeTotal()
	return nil
}

// RemainingAmount 未结清金额；未加载财务记录时视为全额未付
func (t *Transaction) RemainingAmount() decimal.Decimal {
	if t.FinancialRecord == nil {
		return t.TotalPrice
	}
	return t.FinancialRecord.RemainingAmount(t.TotalPrice)
}

// FinancialRecord 与交易一对一的应收/应付记录
type FinancialRecord struct {
	ID            uint                 `json:"id" gorm:"primaryKey"`
	TransactionID uint                 `json:"transaction_id" gorm:"uniqueIndex;not null"`
	AmountPaid    decimal.Decimal      `json:"amount_paid" gorm:"type:decimal(14,2);not null;default:0"`
	Installments  []PaymentInstallment `json:"installments,omitempty" gorm:"foreignKey:FinancialRecordID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func (FinancialRecord) TableName() string {
	return "financial_records"
}

// RemainingAmount total - amount_paid
func (r *FinancialRecord) RemainingAmount(total decimal.Decimal) decimal.Decimal {
	return total.Sub(r.AmountPaid)
}

// IsFullyPaid remaining <= 0
func (r *FinancialRecord) IsFullyPaid(total decimal.Decimal) bool {
	return !r.RemainingAmount(total).IsPositive()
}

// PaymentInstallment 针对财务记录的一次收/付款
type PaymentInstallment struct {
	ID                uint            `json:"id" gorm:"primaryKey"`
	FinancialRecordID uint            `json:"financial_record_id" gorm:"index;not null"`
	Amount            decimal.Decimal `json:"amount" gorm:"type:decimal(14,2);not null"`
	DatePaid          time.Time       `json:"date_paid" gorm:"type:date;not null"`
	Notes             string          `json:"notes" gorm:"type:text"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (PaymentInstallment) TableName() string {
	return "payment_installments"
}

// SumInstallments 分期金额合计
func SumInstallments(items []PaymentInstallment) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}
	return total
}
