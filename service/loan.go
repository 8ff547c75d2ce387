package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ledger/models"

	"gorm.io/gorm"
)

// LoanInput 新建或修改贷款的参数
type LoanInput struct {
	BankName               string
	LoanType               string
	TotalLoanAmount        string
	InterestRatePercentage string
	LoanPeriodMonths       int
	StartDate              time.Time
	IsActive               bool
}

// CreateLoan 创建贷款并一次性生成全部月供
func (l *Ledger) CreateLoan(ctx context.Context, in LoanInput) (*models.Loan, error) {
	if strings.TrimSpace(in.BankName) == "" {
		return nil, invalid("bank_name", "不能为空")
	}
	if strings.TrimSpace(in.LoanType) == "" {
		return nil, invalid("loan_type", "不能为空")
	}
	amount, err := ParseAmount("total_loan_amount", in.TotalLoanAmount)
	if err != nil {
		return nil, err
	}
	rate, err := ParseOptionalAmount("interest_rate_percentage", in.InterestRatePercentage)
	if err != nil {
		return nil, err
	}
	if in.StartDate.IsZero() {
		return nil, invalid("start_date", "不能为空")
	}
	schedule, err := BuildSchedule(amount, rate, in.LoanPeriodMonths, in.StartDate, l.opts.AmortizationRemainder)
	if err != nil {
		return nil, err
	}

	loan := &models.Loan{
		BankName:               strings.TrimSpace(in.BankName),
		LoanType:               strings.TrimSpace(in.LoanType),
		TotalLoanAmount:        amount,
		InterestRatePercentage: rate,
		LoanPeriodMonths:       in.LoanPeriodMonths,
		StartDate:              models.DateOf(in.StartDate),
		IsActive:               in.IsActive,
	}
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Installments").Create(loan).Error; err != nil {
			return fmt.Errorf("创建贷款失败: %w", err)
		}
		for i := range schedule {
			schedule[i].LoanID = loan.ID
		}
		if err := tx.Create(&schedule).Error; err != nil {
			return fmt.Errorf("生成月供失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	loan.Installments = schedule
	slog.Info("贷款已创建", "loan_id", loan.ID, "amount", amount.String(), "months", in.LoanPeriodMonths)
	return loan, nil
}

// GetLoan 贷款及按到期日排序的月供
func (l *Ledger) GetLoan(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := l.db.WithContext(ctx).
		Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("due_date ASC") }).
		First(&loan, id).Error
	if err != nil {
		return nil, notFound(err, "贷款", id)
	}
	return &loan, nil
}

// ListLoans 贷款列表
func (l *Ledger) ListLoans(ctx context.Context) ([]models.Loan, error) {
	var list []models.Loan
	if err := l.db.WithContext(ctx).Order("start_date DESC, id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("查询贷款失败: %w", err)
	}
	return list, nil
}

// UpdateLoan 仅修改描述字段与启用状态，不重新生成月供
func (l *Ledger) UpdateLoan(ctx context.Context, id uint, in LoanInput) (*models.Loan, error) {
	if strings.TrimSpace(in.BankName) == "" {
		return nil, invalid("bank_name", "不能为空")
	}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var loan models.Loan
		if err := tx.First(&loan, id).Error; err != nil {
			return notFound(err, "贷款", id)
		}
		updates := map[string]interface{}{
			"bank_name": strings.TrimSpace(in.BankName),
			"is_active": in.IsActive,
		}
		if t := strings.TrimSpace(in.LoanType); t != "" {
			updates["loan_type"] = t
		}
		return tx.Model(&loan).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return l.GetLoan(ctx, id)
}

// SetInstallmentPaid 设置月供是否已付。状态变化时调整现金余额：
// 标记已付减少 total，撤销已付增加 total；状态未变化时不做任何调整。
func (l *Ledger) SetInstallmentPaid(ctx context.Context, id uint, paid bool) (*models.LoanInstallment, error) {
	var out models.LoanInstallment
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&out, id).Error; err != nil {
			return notFound(err, "月供", id)
		}
		return l.applyPaid(tx, &out, paid)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ToggleInstallment 反转月供的已付状态
func (l *Ledger) ToggleInstallment(ctx context.Context, id uint) (*models.LoanInstallment, error) {
	var out models.LoanInstallment
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&out, id).Error; err != nil {
			return notFound(err, "月供", id)
		}
		return l.applyPaid(tx, &out, !out.IsPaid)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (l *Ledger) applyPaid(tx *gorm.DB, inst *models.LoanInstallment, paid bool) error {
	if inst.IsPaid == paid {
		return nil
	}
	inst.IsPaid = paid
	inst.Normalize(l.now())
	if err := tx.Save(inst).Error; err != nil {
		return fmt.Errorf("保存月供失败: %w", err)
	}
	delta := inst.TotalInstallmentAmount.Neg()
	note := fmt.Sprintf("月供 %s 已付", inst.DueDate.Format(models.DateLayout))
	if !paid {
		delta = inst.TotalInstallmentAmount
		note = fmt.Sprintf("月供 %s 撤销已付", inst.DueDate.Format(models.DateLayout))
	}
	return l.capital.Adjust(tx, delta, models.SourceLoanInstallment, inst.ID, note)
}

// UpdateInstallmentCharges 修改月供附加费用并重算总额；
// 已付月供按新旧总额之差调整现金余额，撤销已付时退回的正是新总额。
func (l *Ledger) UpdateInstallmentCharges(ctx context.Context, id uint, charges string) (*models.LoanInstallment, error) {
	amount, err := ParseOptionalAmount("extra_charges", charges)
	if err != nil {
		return nil, err
	}
	var out models.LoanInstallment
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&out, id).Error; err != nil {
			return notFound(err, "月供", id)
		}
		before := out.TotalInstallmentAmount
		out.ExtraCharges = amount
		out.Normalize(l.now())
		if err := tx.Save(&out).Error; err != nil {
			return fmt.Errorf("保存月供失败: %w", err)
		}
		if !out.IsPaid {
			return nil
		}
		note := fmt.Sprintf("月供 %s 附加费用调整", out.DueDate.Format(models.DateLayout))
		return l.capital.Adjust(tx, before.Sub(out.TotalInstallmentAmount), models.SourceLoanInstallment, out.ID, note)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
