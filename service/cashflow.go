package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ledger/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CashFlowInput 收入、家庭支出与联系人费用共用的参数
type CashFlowInput struct {
	Amount      string
	Date        time.Time
	Description string
	ContactID   uint
	PayerType   models.PayerType
}

func (l *Ledger) flowDate(t time.Time) time.Time {
	if t.IsZero() {
		t = l.now()
	}
	return models.DateOf(t)
}

// CreateIncome 登记其他收入，现金余额增加
func (l *Ledger) CreateIncome(ctx context.Context, in CashFlowInput) (*models.IncomeRecord, error) {
	amount, err := ParseAmount("amount", in.Amount)
	if err != nil {
		return nil, err
	}
	rec := &models.IncomeRecord{Amount: amount, Date: l.flowDate(in.Date), Description: in.Description}
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return fmt.Errorf("登记收入失败: %w", err)
		}
		return l.capital.Adjust(tx, amount, models.SourceIncome, rec.ID, rec.Description)
	})
	if err != nil {
		return nil, err
	}
	slog.Info("收入已登记", "income_id", rec.ID, "amount", amount.String())
	return rec, nil
}

// DeleteIncome 删除收入，现金余额减少
func (l *Ledger) DeleteIncome(ctx context.Context, id uint) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.IncomeRecord
		if err := tx.First(&rec, id).Error; err != nil {
			return notFound(err, "收入", id)
		}
		if err := tx.Delete(&rec).Error; err != nil {
			return fmt.Errorf("删除收入失败: %w", err)
		}
		return l.capital.Adjust(tx, rec.Amount.Neg(), models.SourceIncome, rec.ID, "删除收入")
	})
}

// ListIncomes 收入列表
func (l *Ledger) ListIncomes(ctx context.Context, r DateRange) ([]models.IncomeRecord, error) {
	var list []models.IncomeRecord
	if err := r.apply(l.db.WithContext(ctx), "date").Order("date DESC, id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("查询收入失败: %w", err)
	}
	return list, nil
}

// CreateHomeExpense 登记家庭支出，现金余额减少
func (l *Ledger) CreateHomeExpense(ctx context.Context, in CashFlowInput) (*models.HomeExpense, error) {
	amount, err := ParseAmount("amount", in.Amount)
	if err != nil {
		return nil, err
	}
	rec := &models.HomeExpense{Amount: amount, Date: l.flowDate(in.Date), Description: in.Description}
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return fmt.Errorf("登记家庭支出失败: %w", err)
		}
		return l.capital.Adjust(tx, amount.Neg(), models.SourceHomeExpense, rec.ID, rec.Description)
	})
	if err != nil {
		return nil, err
	}
	slog.Info("家庭支出已登记", "expense_id", rec.ID, "amount", amount.String())
	return rec, nil
}

// DeleteHomeExpense 删除家庭支出，现金余额增加
func (l *Ledger) DeleteHomeExpense(ctx context.Context, id uint) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.HomeExpense
		if err := tx.First(&rec, id).Error; err != nil {
			return notFound(err, "家庭支出", id)
		}
		if err := tx.Delete(&rec).Error; err != nil {
			return fmt.Errorf("删除家庭支出失败: %w", err)
		}
		return l.capital.Adjust(tx, rec.Amount, models.SourceHomeExpense, rec.ID, "删除家庭支出")
	})
}

// ListHomeExpenses 家庭支出列表
func (l *Ledger) ListHomeExpenses(ctx context.Context, r DateRange) ([]models.HomeExpense, error) {
	var list []models.HomeExpense
	if err := r.apply(l.db.WithContext(ctx), "date").Order("date DESC, id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("查询家庭支出失败: %w", err)
	}
	return list, nil
}

// contactExpenseDelta 我方垫付减少现金；对方代付是否计入现金由配置决定
func (l *Ledger) contactExpenseDelta(payer models.PayerType, amount decimal.Decimal) decimal.Decimal {
	if payer == models.PayerUs {
		return amount.Neg()
	}
	if l.opts.ThemExpenseAdjustsCapital {
		return amount
	}
	return decimal.Zero
}

// CreateContactExpense 登记与联系人相关的费用。
// 实际调整的现金金额记录在 CapitalDelta 上，删除时按原值冲回。
func (l *Ledger) CreateContactExpense(ctx context.Context, in CashFlowInput) (*models.ContactExpense, error) {
	amount, err := ParseAmount("amount", in.Amount)
	if err != nil {
		return nil, err
	}
	if !in.PayerType.Valid() {
		return nil, invalid("payer_type", "必须为 us 或 them")
	}
	if in.ContactID == 0 {
		return nil, invalid("contact_id", "不能为空")
	}
	rec := &models.ContactExpense{
		ContactID:    in.ContactID,
		Amount:       amount,
		PayerType:    in.PayerType,
		Date:         l.flowDate(in.Date),
		Description:  in.Description,
		CapitalDelta: l.contactExpenseDelta(in.PayerType, amount),
	}
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Contact
		if err := tx.First(&c, in.ContactID).Error; err != nil {
			return notFound(err, "联系人", in.ContactID)
		}
		if err := tx.Create(rec).Error; err != nil {
			return fmt.Errorf("登记联系人费用失败: %w", err)
		}
		return l.capital.Adjust(tx, rec.CapitalDelta, models.SourceContactExpense, rec.ID, rec.Description)
	})
	if err != nil {
		return nil, err
	}
	slog.Info("联系人费用已登记", "expense_id", rec.ID, "payer", rec.PayerType, "amount", amount.String(), "delta", rec.CapitalDelta.String())
	return rec, nil
}

// DeleteContactExpense 删除联系人费用并冲回当初的现金调整
func (l *Ledger) DeleteContactExpense(ctx context.Context, id uint) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.ContactExpense
		if err := tx.First(&rec, id).Error; err != nil {
			return notFound(err, "联系人费用", id)
		}
		if err := tx.Delete(&rec).Error; err != nil {
			return fmt.Errorf("删除联系人费用失败: %w", err)
		}
		return l.capital.Adjust(tx, rec.CapitalDelta.Neg(), models.SourceContactExpense, rec.ID, "删除联系人费用")
	})
}

// ListContactExpenses 联系人费用列表，contactID 为 0 时不过滤
func (l *Ledger) ListContactExpenses(ctx context.Context, contactID uint, r DateRange) ([]models.ContactExpense, error) {
	q := r.apply(l.db.WithContext(ctx), "date").Preload("Contact")
	if contactID != 0 {
		q = q.Where("contact_id = ?", contactID)
	}
	var list []models.ContactExpense
	if err := q.Order("date DESC, id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("查询联系人费用失败: %w", err)
	}
	return list, nil
}
