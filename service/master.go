package service

import (
	"context"
	"fmt"
	"strings"

	"ledger/models"

	"gorm.io/gorm"
)

// ContactInput 联系人参数
type ContactInput struct {
	Name  string
	Phone string
	Notes string
}

// CreateContact 新建联系人
func (l *Ledger) CreateContact(ctx context.Context, in ContactInput) (*models.Contact, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "不能为空")
	}
	c := &models.Contact{Name: name, Phone: strings.TrimSpace(in.Phone), Notes: in.Notes}
	if err := l.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, fmt.Errorf("创建联系人失败: %w", err)
	}
	return c, nil
}

// UpdateContact 修改联系人
func (l *Ledger) UpdateContact(ctx context.Context, id uint, in ContactInput) (*models.Contact, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "不能为空")
	}
	c, err := l.GetContact(ctx, id)
	if err != nil {
		return nil, err
	}
	err = l.db.WithContext(ctx).Model(c).Updates(map[string]interface{}{
		"name":  name,
		"phone": strings.TrimSpace(in.Phone),
		"notes": in.Notes,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("修改联系人失败: %w", err)
	}
	return l.GetContact(ctx, id)
}

// GetContact 查询联系人
func (l *Ledger) GetContact(ctx context.Context, id uint) (*models.Contact, error) {
	var c models.Contact
	if err := l.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err, "联系人", id)
	}
	return &c, nil
}

// ListContacts 联系人列表，按名称排序
func (l *Ledger) ListContacts(ctx context.Context) ([]models.Contact, error) {
	var list []models.Contact
	if err := l.db.WithContext(ctx).Order("name ASC, id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("查询联系人失败: %w", err)
	}
	return list, nil
}

// DeleteContact 删除联系人；仍有交易或费用引用时拒绝
func (l *Ledger) DeleteContact(ctx context.Context, id uint) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Contact
		if err := tx.First(&c, id).Error; err != nil {
			return notFound(err, "联系人", id)
		}
		var refs int64
		if err := tx.Model(&models.Transaction{}).Where("contact_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs == 0 {
			if err := tx.Model(&models.ContactExpense{}).Where("contact_id = ?", id).Count(&refs).Error; err != nil {
				return err
			}
		}
		if refs > 0 {
			return invalid("contact_id", "联系人仍有关联的交易或费用")
		}
		return tx.Delete(&c).Error
	})
}

// ProductInput 商品参数；库存只在创建时设定，之后只随交易变化
type ProductInput struct {
	Name               string
	QuantityAvailable  string
	PurchasePricePerKg string
	SellingPricePerKg  string
}

// CreateProduct 新建商品
func (l *Ledger) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "不能为空")
	}
	qty, err := ParseOptionalAmount("quantity_available", in.QuantityAvailable)
	if err != nil {
		return nil, err
	}
	buy, err := ParseOptionalAmount("purchase_price_per_kg", in.PurchasePricePerKg)
	if err != nil {
		return nil, err
	}
	sell, err := ParseOptionalAmount("selling_price_per_kg", in.SellingPricePerKg)
	if err != nil {
		return nil, err
	}
	p := &models.Product{Name: name, QuantityAvailable: qty, PurchasePricePerKg: buy, SellingPricePerKg: sell}
	if err := l.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, fmt.Errorf("创建商品失败: %w", err)
	}
	return p, nil
}

// UpdateProduct 修改商品名称和单价
func (l *Ledger) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "不能为空")
	}
	buy, err := ParseOptionalAmount("purchase_price_per_kg", in.PurchasePricePerKg)
	if err != nil {
		return nil, err
	}
	sell, err := ParseOptionalAmount("selling_price_per_kg", in.SellingPricePerKg)
	if err != nil {
		return nil, err
	}
	p, err := l.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	err = l.db.WithContext(ctx).Model(p).Updates(map[string]interface{}{
		"name":                  name,
		"purchase_price_per_kg": buy,
		"selling_price_per_kg":  sell,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("修改商品失败: %w", err)
	}
	return l.GetProduct(ctx, id)
}

// GetProduct 查询商品
func (l *Ledger) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := l.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err, "商品", id)
	}
	return &p, nil
}

// ListProducts 商品列表
func (l *Ledger) ListProducts(ctx context.Context) ([]models.Product, error) {
	var list []models.Product
	if err := l.db.WithContext(ctx).Order("name ASC, id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("查询商品失败: %w", err)
	}
	return list, nil
}

// DeleteProduct 删除商品；仍有交易引用时拒绝
func (l *Ledger) DeleteProduct(ctx context.Context, id uint) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, id).Error; err != nil {
			return notFound(err, "商品", id)
		}
		var refs int64
		if err := tx.Model(&models.Transaction{}).Where("product_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return invalid("product_id", "商品仍有关联的交易")
		}
		return tx.Delete(&p).Error
	})
}
