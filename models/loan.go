package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Loan 银行贷款，固定利率（按本金一次性计息）
type Loan struct {
	ID                     uint              `json:"id" gorm:"primaryKey"`
	BankName               string            `json:"bank_name" gorm:"size:200;not null"`
	LoanType               string            `json:"loan_type" gorm:"size:100;not null"`
	TotalLoanAmount        decimal.Decimal   `json:"total_loan_amount" gorm:"type:decimal(15,2);not null"`
	InterestRatePercentage decimal.Decimal   `json:"interest_rate_percentage" gorm:"type:decimal(5,2);not null;default:0"`
	LoanPeriodMonths       int               `json:"loan_period_months" gorm:"not null"`
	StartDate              time.Time         `json:"start_date" gorm:"type:date;not null"`
	IsActive               bool              `json:"is_active" gorm:"index"`
	Installments           []LoanInstallment `json:"installments,omitempty" gorm:"foreignKey:LoanID;constraint:OnDelete:CASCADE"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
}

func (Loan) TableName() string {
	return "loans"
}

// LoanInstallment 月供明细
type LoanInstallment struct {
	ID                     uint            `json:"id" gorm:"primaryKey"`
	LoanID                 uint            `json:"loan_id" gorm:"index;not null"`
	Loan                   *Loan           `json:"loan,omitempty" gorm:"foreignKey:LoanID"`
	DueDate                time.Time       `json:"due_date" gorm:"type:date;not null;index"`
	PrincipalComponent     decimal.Decimal `json:"principal_component" gorm:"type:decimal(12,2);not null"`
	InterestComponent      decimal.Decimal `json:"interest_component" gorm:"type:decimal(12,2);not null"`
	ExtraCharges           decimal.Decimal `json:"extra_charges" gorm:"type:decimal(12,2);not null;default:0"`
	TotalInstallmentAmount decimal.Decimal `json:"total_installment_amount" gorm:"type:decimal(12,2);not null"`
	IsPaid                 bool            `json:"is_paid" gorm:"index"`
	ActualPaymentDate      *time.Time      `json:"actual_payment_date" gorm:"type:date"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

func (LoanInstallment) TableName() string {
	return "loan_installments"
}

// RoundUnit 四舍六入五成双取整到整数货币单位
func RoundUnit(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(0)
}

// Normalize 各分量取整并重新计算总额；首次标记已付时记录实际付款日期。
// 总额永远是派生值，会覆盖调用方传入的值。
func (i *LoanInstallment) Normalize(today time.Time) {
	i.PrincipalComponent = RoundUnit(i.PrincipalComponent)
	i.InterestComponent = RoundUnit(i.InterestComponent)
	i.ExtraCharges = RoundUnit(i.ExtraCharges)
	i.TotalInstallmentAmount = i.PrincipalComponent.Add(i.InterestComponent).Add(i.ExtraCharges)
	if i.IsPaid && i.ActualPaymentDate == nil {
		d := DateOf(today)
		i.ActualPaymentDate = &d
	}
}

func (i *LoanInstallment) BeforeSave(tx *gorm.DB) error {
	i.Normalize(time.Now())
	return nil
}

// IsOverdue 未付且到期日早于 today
func (i *LoanInstallment) IsOverdue(today time.Time) bool {
	return !i.IsPaid && i.DueDate.Before(DateOf(today))
}
