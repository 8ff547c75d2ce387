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

const (
	noteCashReceived = "现金收款（客户付款）"
	noteCashPaid     = "现金付款（支付供应商）"
)

// PaymentInput 一次收/付款
type PaymentInput struct {
	Amount   string
	DatePaid time.Time
	Notes    string
}

// PaymentNote 按交易方向为备注加上收款/付款前缀
func PaymentNote(dir models.Direction, notes string) string {
	label := noteCashPaid
	if dir == models.DirectionOut {
		label = noteCashReceived
	}
	if notes == "" {
		return label
	}
	return label + " - " + notes
}

// recordContext 读取财务记录及其所属交易
func recordContext(tx *gorm.DB, recordID uint) (*models.FinancialRecord, *models.Transaction, error) {
	var rec models.FinancialRecord
	if err := tx.First(&rec, recordID).Error; err != nil {
		return nil, nil, notFound(err, "财务记录", recordID)
	}
	var t models.Transaction
	if err := tx.First(&t, rec.TransactionID).Error; err != nil {
		return nil, nil, notFound(err, "交易", rec.TransactionID)
	}
	return &rec, &t, nil
}

// recomputeAmountPaid 用全部分期金额重算 amount_paid
func recomputeAmountPaid(tx *gorm.DB, recordID uint) (decimal.Decimal, error) {
	var items []models.PaymentInstallment
	if err := tx.Where("financial_record_id = ?", recordID).Find(&items).Error; err != nil {
		return decimal.Zero, fmt.Errorf("查询分期失败: %w", err)
	}
	total := models.SumInstallments(items)
	if err := tx.Model(&models.FinancialRecord{}).Where("id = ?", recordID).Update("amount_paid", total).Error; err != nil {
		return decimal.Zero, fmt.Errorf("更新已付金额失败: %w", err)
	}
	return total, nil
}

// RecordPayment 在财务记录下登记一笔收/付款：
// 持久化分期，重算 amount_paid，按交易方向调整现金余额，全部在一个事务内完成。
func (l *Ledger) RecordPayment(ctx context.Context, recordID uint, in PaymentInput) (*models.PaymentInstallment, error) {
	amount, err := ParseAmount("amount", in.Amount)
	if err != nil {
		return nil, err
	}
	var p *models.PaymentInstallment
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, t, err := recordContext(tx, recordID)
		if err != nil {
			return err
		}
		p, err = l.recordPayment(tx, recordID, t.Direction, amount, in.DatePaid, in.Notes)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (l *Ledger) recordPayment(tx *gorm.DB, recordID uint, dir models.Direction, amount decimal.Decimal, date time.Time, notes string) (*models.PaymentInstallment, error) {
	if date.IsZero() {
		date = l.now()
	}
	p := &models.PaymentInstallment{
		FinancialRecordID: recordID,
		Amount:            amount,
		DatePaid:          models.DateOf(date),
		Notes:             PaymentNote(dir, notes),
	}
	if err := tx.Create(p).Error; err != nil {
		return nil, fmt.Errorf("登记付款失败: %w", err)
	}
	paid, err := recomputeAmountPaid(tx, recordID)
	if err != nil {
		return nil, err
	}
	if err := l.capital.Adjust(tx, dir.CashSign().Mul(amount), models.SourcePayment, p.ID, p.Notes); err != nil {
		return nil, err
	}
	slog.Info("付款已登记", "record_id", recordID, "payment_id", p.ID, "amount", amount.String(), "amount_paid", paid.String())
	return p, nil
}

// UpdatePayment 修改付款金额/日期/备注，现金余额按差额调整
func (l *Ledger) UpdatePayment(ctx context.Context, id uint, in PaymentInput) (*models.PaymentInstallment, error) {
	amount, err := ParseAmount("amount", in.Amount)
	if err != nil {
		return nil, err
	}
	var p models.PaymentInstallment
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, id).Error; err != nil {
			return notFound(err, "付款", id)
		}
		_, t, err := recordContext(tx, p.FinancialRecordID)
		if err != nil {
			return err
		}
		delta := amount.Sub(p.Amount)
		updates := map[string]interface{}{"amount": amount}
		if !in.DatePaid.IsZero() {
			updates["date_paid"] = models.DateOf(in.DatePaid)
		}
		if in.Notes != "" {
			updates["notes"] = in.Notes
		}
		if err := tx.Model(&p).Updates(updates).Error; err != nil {
			return fmt.Errorf("修改付款失败: %w", err)
		}
		if _, err := recomputeAmountPaid(tx, p.FinancialRecordID); err != nil {
			return err
		}
		return l.capital.Adjust(tx, t.Direction.CashSign().Mul(delta), models.SourcePayment, p.ID, "修改付款")
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePayment 删除付款并冲回其现金影响
func (l *Ledger) DeletePayment(ctx context.Context, id uint) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.PaymentInstallment
		if err := tx.First(&p, id).Error; err != nil {
			return notFound(err, "付款", id)
		}
		_, t, err := recordContext(tx, p.FinancialRecordID)
		if err != nil {
			return err
		}
		if err := tx.Delete(&p).Error; err != nil {
			return fmt.Errorf("删除付款失败: %w", err)
		}
		if _, err := recomputeAmountPaid(tx, p.FinancialRecordID); err != nil {
			return err
		}
		return l.capital.Adjust(tx, t.Direction.CashSign().Mul(p.Amount).Neg(), models.SourcePayment, p.ID, "删除付款")
	})
}

// ListPayments 财务记录下的全部付款，按日期倒序
func (l *Ledger) ListPayments(ctx context.Context, recordID uint) ([]models.PaymentInstallment, error) {
	db := l.db.WithContext(ctx)
	var rec models.FinancialRecord
	if err := db.First(&rec, recordID).Error; err != nil {
		return nil, notFound(err, "财务记录", recordID)
	}
	var list []models.PaymentInstallment
	if err := db.Where("financial_record_id = ?", recordID).Order("date_paid DESC, id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("查询付款失败: %w", err)
	}
	return list, nil
}
