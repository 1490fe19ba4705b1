package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("not found")

// SKUが既に存在する
var ErrDuplicateSKU = errors.New("sku already exists")

// 取引が参照しているアイテムは削除できない
var ErrItemInUse = errors.New("item in use")

// 在庫が足りない（quantityを負にする更新は拒否）
var ErrInsufficientStock = errors.New("insufficient stock")

// 一覧検索
type ItemListQuery struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	SupplierID *int64
}

// カテゴリ別在庫金額の1行。CategoryIDがnilなら未分類。
type CategoryValueRow struct {
	CategoryID   *int64
	CategoryName string
	ItemCount    int64
	TotalValue   decimal.Decimal
}

// アイテムの永続化だけを約束。
// quantityの変更はIncreaseQuantity/DecreaseQuantityIfEnoughのみ。
// Updateはquantity以外のカラムだけを書く。
type ItemRepository interface {
	List(ctx context.Context, q ItemListQuery) ([]model.Item, int64, error)
	FindByID(ctx context.Context, id int64) (model.Item, error)
	FindBySKU(ctx context.Context, sku string) (model.Item, error)

	Create(ctx context.Context, item model.Item) (model.Item, error)
	Update(ctx context.Context, item model.Item) error
	Delete(ctx context.Context, id int64) error

	// 在庫加算（条件なし）。更新後のquantityを返す。
	IncreaseQuantity(ctx context.Context, id int64, qty int64) (int64, error)
	// 在庫が足りるときだけ減算。足りなければfalse。
	// 成功時は更新後のquantityを返す（UPDATE ... RETURNINGの値）。
	DecreaseQuantityIfEnough(ctx context.Context, id int64, qty int64) (int64, bool, error)

	// 発注点割れ（quantity < reorder_level）をquantity昇順で返す
	ListBelowReorderLevel(ctx context.Context) ([]model.Item, error)

	// カテゴリ別のΣ(quantity × unit_price)。未分類も1行で返す。
	ValueByCategory(ctx context.Context) ([]CategoryValueRow, error)

	// 参照チェック（カテゴリ/仕入先の削除ガード用）
	CountByCategoryID(ctx context.Context, categoryID int64) (int64, error)
	CountBySupplierID(ctx context.Context, supplierID int64) (int64, error)
}
