package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contact 交易伙伴（客户/供应商）
type Contact struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:200;not null;index"`
	Phone     string    `json:"phone" gorm:"size:20"`
	Notes     string    `json:"notes" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Contact) TableName() string {
	return "contacts"
}

// Product 库存商品，数量以公斤计
type Product struct {
	ID                 uint            `json:"id" gorm:"primaryKey"`
	Name               string          `json:"name" gorm:"size:100;not null"`
	QuantityAvailable  decimal.Decimal `json:"quantity_available" gorm:"type:decimal(12,2);not null;default:0"`
	PurchasePricePerKg decimal.Decimal `json:"purchase_price_per_kg" gorm:"type:decimal(12,2);not null"`
	SellingPricePerKg  decimal.Decimal `json:"selling_price_per_kg" gorm:"type:decimal(12,2);not null"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}
