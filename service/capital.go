package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ledger/config"
	"ledger/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CapitalRepository 现金余额单行记录及其流水的存取
type CapitalRepository interface {
	Find(tx *gorm.DB) (*models.Capital, error)
	Create(tx *gorm.DB, amount decimal.Decimal, at time.Time) (*models.Capital, error)
	FindForUpdate(tx *gorm.DB) (*models.Capital, error)
	SetBalance(tx *gorm.DB, amount decimal.Decimal, at time.Time) error
	AppendMovement(tx *gorm.DB, m *models.CapitalMovement) error
	Movements(tx *gorm.DB, limit int) ([]models.CapitalMovement, error)
	JournalTotal(tx *gorm.DB) (decimal.Decimal, error)
}

// GormCapitalRepository 基于 gorm 的实现；固定主键保证全表最多一行
type GormCapitalRepository struct{}

func (GormCapitalRepository) Find(tx *gorm.DB) (*models.Capital, error) {
	var c models.Capital
	if err := tx.First(&c, models.CapitalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCapitalMissing
		}
		return nil, fmt.Errorf("查询现金余额失败: %w", err)
	}
	return &c, nil
}

func (GormCapitalRepository) Create(tx *gorm.DB, amount decimal.Decimal, at time.Time) (*models.Capital, error) {
	c := models.Capital{ID: models.CapitalID, InitialAmount: amount, LastUpdated: at}
	if err := tx.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("创建现金余额失败: %w", err)
	}
	return &c, nil
}

// FindForUpdate 在事务内读取并锁定余额行；sqlite 整库串行写，不加行锁
func (r GormCapitalRepository) FindForUpdate(tx *gorm.DB) (*models.Capital, error) {
	return r.Find(lockRow(tx))
}

// SetBalance 写入在 Go 侧用 decimal 算好的余额，不在 SQL 里做加法
func (GormCapitalRepository) SetBalance(tx *gorm.DB, amount decimal.Decimal, at time.Time) error {
	res := tx.Model(&models.Capital{}).Where("id = ?", models.CapitalID).Updates(map[string]interface{}{
		"initial_amount": amount,
		"last_updated":   at,
	})
	if res.Error != nil {
		return fmt.Errorf("更新现金余额失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrCapitalMissing
	}
	return nil
}

// lockRow 对 mysql/postgres 加 SELECT ... FOR UPDATE
func lockRow(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (GormCapitalRepository) AppendMovement(tx *gorm.DB, m *models.CapitalMovement) error {
	if err := tx.Create(m).Error; err != nil {
		return fmt.Errorf("写入资金流水失败: %w", err)
	}
	return nil
}

func (GormCapitalRepository) Movements(tx *gorm.DB, limit int) ([]models.CapitalMovement, error) {
	var list []models.CapitalMovement
	q := tx.Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("查询资金流水失败: %w", err)
	}
	return list, nil
}

func (GormCapitalRepository) JournalTotal(tx *gorm.DB) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	if err := tx.Model(&models.CapitalMovement{}).Pluck("amount", &amounts).Error; err != nil {
		return decimal.Zero, fmt.Errorf("汇总资金流水失败: %w", err)
	}
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total, nil
}

// CapitalService 现金余额服务
type CapitalService struct {
	db      *gorm.DB
	repo    CapitalRepository
	missing string
	now     func() time.Time
}

// NewCapitalService missing 取值见 config.CapitalMissing*
func NewCapitalService(db *gorm.DB, repo CapitalRepository, missing string) *CapitalService {
	if repo == nil {
		repo = GormCapitalRepository{}
	}
	return &CapitalService{db: db, repo: repo, missing: missing, now: time.Now}
}

// Balance 当前余额；不存在时返回 ErrCapitalMissing
func (s *CapitalService) Balance(ctx context.Context) (*models.Capital, error) {
	return s.repo.Find(s.db.WithContext(ctx))
}

// Adjust 在调用方事务内调整余额并记流水。delta 为零时不做任何事。
func (s *CapitalService) Adjust(tx *gorm.DB, delta decimal.Decimal, source models.MovementSource, sourceID uint, note string) error {
	if delta.IsZero() {
		return nil
	}
	at := s.now()
	c, err := s.repo.FindForUpdate(tx)
	if err != nil {
		if !errors.Is(err, ErrCapitalMissing) || s.missing != config.CapitalMissingCreate {
			return err
		}
		if c, err = s.repo.Create(tx, decimal.Zero, at); err != nil {
			return err
		}
		slog.Warn("现金余额记录不存在，已自动创建", "source", source, "source_id", sourceID)
	}
	balance := c.InitialAmount.Add(delta)
	if err := s.repo.SetBalance(tx, balance, at); err != nil {
		return err
	}
	m := &models.CapitalMovement{
		Amount:       delta,
		BalanceAfter: balance,
		Source:       source,
		SourceID:     sourceID,
		Note:         note,
	}
	if err := s.repo.AppendMovement(tx, m); err != nil {
		return err
	}
	slog.Info("现金余额已调整", "source", source, "source_id", sourceID, "delta", delta.String(), "balance", balance.String())
	return nil
}

// Set 设定余额（不存在则创建），差额记为手工调整
func (s *CapitalService) Set(ctx context.Context, amount decimal.Decimal, note string) (*models.Capital, error) {
	var out *models.Capital
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current := decimal.Zero
		c, err := s.repo.Find(tx)
		switch {
		case errors.Is(err, ErrCapitalMissing):
			if _, err := s.repo.Create(tx, decimal.Zero, s.now()); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			current = c.InitialAmount
		}
		if note == "" {
			note = "手工设定余额"
		}
		if err := s.Adjust(tx, amount.Sub(current), models.SourceManual, 0, note); err != nil {
			return err
		}
		out, err = s.repo.Find(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Movements 最近的资金流水
func (s *CapitalService) Movements(ctx context.Context, limit int) ([]models.CapitalMovement, error) {
	return s.repo.Movements(s.db.WithContext(ctx), limit)
}

// CapitalAudit 余额与流水合计的核对结果
type CapitalAudit struct {
	Balance      decimal.Decimal `json:"balance"`
	JournalTotal decimal.Decimal `json:"journal_total"`
	Consistent   bool            `json:"consistent"`
}

// Audit 核对余额是否等于流水合计
func (s *CapitalService) Audit(ctx context.Context) (*CapitalAudit, error) {
	db := s.db.WithContext(ctx)
	c, err := s.repo.Find(db)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.JournalTotal(db)
	if err != nil {
		return nil, err
	}
	return &CapitalAudit{
		Balance:      c.InitialAmount,
		JournalTotal: total,
		Consistent:   c.InitialAmount.Equal(total),
	}, nil
}
