package repository

import (
	"context"
	"time"

	"app/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 取引履歴の絞り込み条件。
type TransactionListQuery struct {
	Page   int
	Limit  int
	ItemID *int64
	Type   *model.TransactionType
	From   *time.Time
	To     *time.Time
}

// 種別ごとの集計1行。
type TypeSummaryRow struct {
	Type  model.TransactionType
	Count int64
	Total decimal.Decimal
}

// 取引ログの永続化。追記専用（UpdateもDeleteも無い）。
type TransactionRepository interface {
	// IDとcreated_atを採番して保存する
	Append(ctx context.Context, tx *model.Transaction) error

	FindByID(ctx context.Context, id int64) (model.Transaction, error)

	// created_at降順（新しい順）でページング
	List(ctx context.Context, q TransactionListQuery) ([]model.Transaction, int64, error)

	// アイテムを参照する取引の件数（削除ガード用）
	CountByItemID(ctx context.Context, itemID int64) (int64, error)
	CountBySupplierID(ctx context.Context, supplierID int64) (int64, error)

	// 期間内の種別ごとの件数と金額合計
	SummarizeByPeriod(ctx context.Context, from, to time.Time) ([]TypeSummaryRow, error)
}
