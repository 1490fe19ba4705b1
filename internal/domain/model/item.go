package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 在庫アイテム。
// quantityはLedgerUsecase経由でしか変更しない（直接更新は禁止）。
type Item struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name"`
	Description     string          `gorm:"type:text" json:"description"`
	SKU             string          `gorm:"column:sku;type:varchar(100);not null;uniqueIndex" json:"sku"`
	Quantity        int64           `gorm:"not null;default:0" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	CostPrice       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"cost_price"`
	ReorderLevel    int64           `gorm:"not null;default:0" json:"reorder_level"`
	ReorderQuantity int64           `gorm:"not null;default:0" json:"reorder_quantity"`
	CategoryID      *int64          `gorm:"index" json:"category_id"`
	SupplierID      *int64          `gorm:"index" json:"supplier_id"`
	Location        string          `gorm:"type:varchar(255)" json:"location"`
	ImageURL        string          `gorm:"type:text" json:"image_url"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
