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

// TransactionInput 一笔进/出货
type TransactionInput struct {
	Date          time.Time
	Direction     models.Direction
	ProductID     uint
	ContactID     uint
	Weight        string
	PricePerKg    string
	PaidAmountNow string
	Notes         string
}

// CreateTransaction 登记进/出货：
// 调整库存，创建唯一的财务记录，paid_amount_now 大于零时登记首笔付款。
func (l *Ledger) CreateTransaction(ctx context.Context, in TransactionInput) (*models.Transaction, error) {
	if !in.Direction.Valid() {
		return nil, invalid("direction", "必须为 in 或 out")
	}
	weight, err := ParseAmount("weight", in.Weight)
	if err != nil {
		return nil, err
	}
	price, err := ParseAmount("price_per_kg", in.PricePerKg)
	if err != nil {
		return nil, err
	}
	paidNow, err := ParseOptionalAmount("paid_amount_now", in.PaidAmountNow)
	if err != nil {
		return nil, err
	}
	if in.ProductID == 0 {
		return nil, invalid("product_id", "不能为空")
	}
	if in.ContactID == 0 {
		return nil, invalid("contact_id", "不能为空")
	}
	date := in.Date
	if date.IsZero() {
		date = l.now()
	}

	t := &models.Transaction{
		Date:       models.DateOf(date),
		Direction:  in.Direction,
		ProductID:  in.ProductID,
		ContactID:  in.ContactID,
		Weight:     weight,
		PricePerKg: price,
		Notes:      in.Notes,
	}
	t.ComputeTotal()

	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := lockRow(tx).First(&product, in.ProductID).Error; err != nil {
			return notFound(err, "商品", in.ProductID)
		}
		var contact models.Contact
		if err := tx.First(&contact, in.ContactID).Error; err != nil {
			return notFound(err, "联系人", in.ContactID)
		}
		if in.Direction == models.DirectionOut && !l.opts.AllowNegativeStock && product.QuantityAvailable.LessThan(weight) {
			return fmt.Errorf("%w: %s 可用 %s，需要 %s", ErrInsufficientStock, product.Name, product.QuantityAvailable.String(), weight.String())
		}

		if err := tx.Omit("FinancialRecord").Create(t).Error; err != nil {
			return fmt.Errorf("创建交易失败: %w", err)
		}
		if err := moveStock(tx, product.ID, stockDelta(in.Direction, weight)); err != nil {
			return err
		}
		rec := &models.FinancialRecord{TransactionID: t.ID}
		if err := tx.Create(rec).Error; err != nil {
			return fmt.Errorf("创建财务记录失败: %w", err)
		}
		if paidNow.IsPositive() {
			if _, err := l.recordPayment(tx, rec.ID, t.Direction, paidNow, t.Date, ""); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("交易已登记", "transaction_id", t.ID, "direction", t.Direction, "total", t.TotalPrice.String(), "paid_now", paidNow.String())
	return l.GetTransaction(ctx, t.ID)
}

// stockDelta 进货增加库存，出货减少库存
func stockDelta(dir models.Direction, weight decimal.Decimal) decimal.Decimal {
	if dir == models.DirectionOut {
		return weight.Neg()
	}
	return weight
}

// moveStock 读出库存后用 decimal 相加再写回
func moveStock(tx *gorm.DB, productID uint, delta decimal.Decimal) error {
	var p models.Product
	if err := lockRow(tx).First(&p, productID).Error; err != nil {
		return notFound(err, "商品", productID)
	}
	err := tx.Model(&models.Product{}).Where("id = ?", productID).
		Update("quantity_available", p.QuantityAvailable.Add(delta)).Error
	if err != nil {
		return fmt.Errorf("更新库存失败: %w", err)
	}
	return nil
}

// GetTransaction 交易及其商品、联系人、财务记录与分期
func (l *Ledger) GetTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	var t models.Transaction
	err := l.db.WithContext(ctx).
		Preload("Product").Preload("Contact").
		Preload("FinancialRecord").
		Preload("FinancialRecord.Installments", func(db *gorm.DB) *gorm.DB { return db.Order("date_paid ASC, id ASC") }).
		First(&t, id).Error
	if err != nil {
		return nil, notFound(err, "交易", id)
	}
	return &t, nil
}

// TransactionFilter 交易列表过滤条件
type TransactionFilter struct {
	Range     DateRange
	Direction models.Direction
	ContactID uint
	ProductID uint
	Limit     int
}

// ListTransactions 按日期倒序列出交易
func (l *Ledger) ListTransactions(ctx context.Context, f TransactionFilter) ([]models.Transaction, error) {
	q := f.Range.apply(l.db.WithContext(ctx), "date").
		Preload("Product").Preload("Contact").Preload("FinancialRecord")
	if f.Direction != "" {
		q = q.Where("direction = ?", f.Direction)
	}
	if f.ContactID != 0 {
		q = q.Where("contact_id = ?", f.ContactID)
	}
	if f.ProductID != 0 {
		q = q.Where("product_id = ?", f.ProductID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var list []models.Transaction
	if err := q.Order("date DESC, id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("查询交易失败: %w", err)
	}
	return list, nil
}

// DeleteTransaction 删除交易：冲回库存与每笔付款的现金影响，级联删除财务记录和分期
func (l *Ledger) DeleteTransaction(ctx context.Context, id uint) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t models.Transaction
		if err := tx.First(&t, id).Error; err != nil {
			return notFound(err, "交易", id)
		}
		var rec models.FinancialRecord
		found := tx.Where("transaction_id = ?", t.ID).Limit(1).Find(&rec)
		if found.Error != nil {
			return fmt.Errorf("查询财务记录失败: %w", found.Error)
		}
		if found.RowsAffected > 0 {
			var items []models.PaymentInstallment
			if err := tx.Where("financial_record_id = ?", rec.ID).Find(&items).Error; err != nil {
				return fmt.Errorf("查询分期失败: %w", err)
			}
			for _, p := range items {
				note := fmt.Sprintf("删除交易 %d", t.ID)
				if err := l.capital.Adjust(tx, t.Direction.CashSign().Mul(p.Amount).Neg(), models.SourcePayment, p.ID, note); err != nil {
					return err
				}
			}
			if err := tx.Where("financial_record_id = ?", rec.ID).Delete(&models.PaymentInstallment{}).Error; err != nil {
				return fmt.Errorf("删除分期失败: %w", err)
			}
			if err := tx.Delete(&rec).Error; err != nil {
				return fmt.Errorf("删除财务记录失败: %w", err)
			}
		}
		if err := moveStock(tx, t.ProductID, stockDelta(t.Direction, t.Weight).Neg()); err != nil {
			return err
		}
		if err := tx.Delete(&t).Error; err != nil {
			return fmt.Errorf("删除交易失败: %w", err)
		}
		slog.Info("交易已删除", "transaction_id", t.ID, "direction", t.Direction, "total", t.TotalPrice.String())
		return nil
	})
}
