package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 入出庫の種別
type TransactionType string

const (
	TransactionTypeStockIn    TransactionType = "in"
	TransactionTypeStockOut   TransactionType = "out"
	TransactionTypePurchase   TransactionType = "purchase"
	TransactionTypeSale       TransactionType = "sale"
	TransactionTypeAdjustment TransactionType = "adjustment"
	TransactionTypeReturn     TransactionType = "return"
)

// 在庫を増やす種別か
func (t TransactionType) Increases() bool {
	switch t {
	case TransactionTypeStockIn, TransactionTypePurchase, TransactionTypeReturn:
		return true
	}
	return false
}

// 在庫を減らす種別か
func (t TransactionType) Decreases() bool {
	switch t {
	case TransactionTypeStockOut, TransactionTypeSale:
		return true
	}
	return false
}

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeStockIn, TransactionTypeStockOut,
		TransactionTypePurchase, TransactionTypeSale,
		TransactionTypeAdjustment, TransactionTypeReturn:
		return true
	}
	return false
}

// 在庫移動の記録。作成後は更新・削除しない（追記専用）。
// TotalPriceは作成時点のQuantity×UnitPriceを保存し、後から再計算しない。
// QuantityDeltaは在庫への符号付き効果（adjustmentは符号付きdeltaを持つ）。
type Transaction struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Type            TransactionType `gorm:"column:transaction_type;type:varchar(20);not null;index" json:"transaction_type"`
	ItemID          int64           `gorm:"not null;index" json:"item_id"`
	Quantity        int64           `gorm:"not null" json:"quantity"`
	QuantityDelta   int64           `gorm:"not null" json:"quantity_delta"`
	UnitPrice       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	TotalPrice      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	SupplierID      *int64          `gorm:"index" json:"supplier_id"`
	UserID          int64           `gorm:"not null;index" json:"user_id"`
	ReferenceNumber string          `gorm:"type:varchar(100)" json:"reference_number"`
	Notes           string          `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime;index" json:"created_at"`
}
