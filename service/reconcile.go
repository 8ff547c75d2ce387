package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ledger/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecordDrift amount_paid 与分期合计不一致的财务记录
type RecordDrift struct {
	RecordID uint            `json:"record_id"`
	Stored   decimal.Decimal `json:"stored"`
	Computed decimal.Decimal `json:"computed"`
}

// ReconcileReport 对账结果
type ReconcileReport struct {
	Checked int           `json:"checked"`
	Drifted []RecordDrift `json:"drifted"`
	Fixed   bool          `json:"fixed"`
	Capital *CapitalAudit `json:"capital,omitempty"`
}

// Reconcile 用分期重算每条财务记录的 amount_paid，fix 为 true 时写回；
// 同时核对现金余额与资金流水合计。
func (l *Ledger) Reconcile(ctx context.Context, fix bool) (*ReconcileReport, error) {
	report := &ReconcileReport{Drifted: []RecordDrift{}, Fixed: fix}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var records []models.FinancialRecord
		if err := tx.Preload("Installments").Order("id ASC").Find(&records).Error; err != nil {
			return fmt.Errorf("查询财务记录失败: %w", err)
		}
		report.Checked = len(records)
		for _, r := range records {
			computed := models.SumInstallments(r.Installments)
			if computed.Equal(r.AmountPaid) {
				continue
			}
			report.Drifted = append(report.Drifted, RecordDrift{RecordID: r.ID, Stored: r.AmountPaid, Computed: computed})
			slog.Warn("已付金额与分期合计不一致", "record_id", r.ID, "stored", r.AmountPaid.String(), "computed", computed.String())
			if fix {
				if _, err := recomputeAmountPaid(tx, r.ID); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	audit, err := l.capital.Audit(ctx)
	switch {
	case errors.Is(err, ErrCapitalMissing):
	case err != nil:
		return nil, err
	default:
		report.Capital = audit
		if !audit.Consistent {
			slog.Warn("现金余额与资金流水合计不一致", "balance", audit.Balance.String(), "journal", audit.JournalTotal.String())
		}
	}
	return report, nil
}
