package repository

import (
	"context"
	"errors"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewItemGormRepository(db *gorm.DB) *ItemGormRepository {
	return &ItemGormRepository{db: db}
}

// 検索/カテゴリ/仕入先/ページング付きでアイテムを返す。
func (r *ItemGormRepository) List(ctx context.Context, q repo.ItemListQuery) ([]model.Item, int64, error) {
	var items []model.Item
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Item{})

	// q はnameとskuを対象
	if strings.TrimSpace(q.Q) != "" {
		like := "%" + strings.TrimSpace(q.Q) + "%"
		tx = tx.Where("name ILIKE ? OR sku ILIKE ?", like, like)
	}

	if q.CategoryID != nil {
		tx = tx.Where("category_id = ?", *q.CategoryID)
	}
	if q.SupplierID != nil {
		tx = tx.Where("supplier_id = ?", *q.SupplierID)
	}

	//total（件数）
	if err := tx.Count(&total).Error; err != nil {
		return []model.Item{}, 0, err
	}

	tx = tx.Order("name asc").Order("id asc")

	offset := (q.Page - 1) * q.Limit
	if err := tx.Offset(offset).Limit(q.Limit).Find(&items).Error; err != nil {
		return []model.Item{}, 0, err
	}

	return items, total, nil
}

// IDでアイテムを取得
func (r *ItemGormRepository) FindByID(ctx context.Context, id int64) (model.Item, error) {
	var item model.Item
	err := r.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Item{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Item{}, err
	}
	return item, nil
}

// SKUでアイテムを取得
func (r *ItemGormRepository) FindBySKU(ctx context.Context, sku string) (model.Item, error) {
	var item model.Item
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Item{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Item{}, err
	}
	return item, nil
}

// アイテムの作成。SKU重複はErrDuplicateSKU。
func (r *ItemGormRepository) Create(ctx context.Context, item model.Item) (model.Item, error) {
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		if isUniqueViolation(err) {
			return model.Item{}, repo.ErrDuplicateSKU
		}
		return model.Item{}, err
	}
	return item, nil
}

// マスタ情報の更新。quantityはここでは絶対に書かない（台帳経由のみ）。
func (r *ItemGormRepository) Update(ctx context.Context, item model.Item) error {
	res := r.db.WithContext(ctx).Model(&model.Item{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
		"name":             item.Name,
		"description":      item.Description,
		"sku":              item.SKU,
		"unit_price":       item.UnitPrice,
		"cost_price":       item.CostPrice,
		"reorder_level":    item.ReorderLevel,
		"reorder_quantity": item.ReorderQuantity,
		"category_id":      item.CategoryID,
		"supplier_id":      item.SupplierID,
		"location":         item.Location,
		"image_url":        item.ImageURL,
	})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return repo.ErrDuplicateSKU
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// アイテム削除
func (r *ItemGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Item{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 在庫加算。更新後のquantityはRETURNINGで受け取る。
// 事前SELECTの値から足し算すると、並走コミットをまたいだときに
// 実際の在庫とズレるため、DBが返した値だけを信用する。
func (r *ItemGormRepository) IncreaseQuantity(ctx context.Context, id int64, qty int64) (int64, error) {
	var updated model.Item
	res := r.db.WithContext(ctx).
		Model(&updated).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "quantity"}}}).
		Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", qty))

	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, repo.ErrNotFound
	}
	return updated.Quantity, nil
}

// 在庫が足りるときだけ減らす。
// WHEREのquantity >= ?が不変条件の本体：同時実行でもDBの行更新が
// 直列化するので、負の在庫は絶対に作れない。
// 更新後のquantityもRETURNINGで同じUPDATEから受け取る。
func (r *ItemGormRepository) DecreaseQuantityIfEnough(ctx context.Context, id int64, qty int64) (int64, bool, error) {
	var updated model.Item
	res := r.db.WithContext(ctx).
		Model(&updated).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "quantity"}}}).
		Where("id = ? AND quantity >= ?", id, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))

	if res.Error != nil {
		return 0, false, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, false, nil
	}
	return updated.Quantity, true, nil
}

// 発注点割れをquantity昇順で返す
func (r *ItemGormRepository) ListBelowReorderLevel(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	err := r.db.WithContext(ctx).
		Where("quantity < reorder_level").
		Order("quantity asc").Order("id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

type categoryValueScan struct {
	CategoryID   *int64
	CategoryName string
	ItemCount    int64
	TotalValue   decimal.Decimal
}

// カテゴリ別のΣ(quantity × unit_price)。未分類はCategoryID=nilの1行。
func (r *ItemGormRepository) ValueByCategory(ctx context.Context) ([]repo.CategoryValueRow, error) {
	var rows []categoryValueScan

	err := r.db.WithContext(ctx).
		Model(&model.Item{}).
		Select("items.category_id AS category_id, " +
			"COALESCE(categories.name, '') AS category_name, " +
			"COUNT(items.id) AS item_count, " +
			"COALESCE(SUM(items.quantity * items.unit_price), 0) AS total_value").
		Joins("LEFT JOIN categories ON categories.id = items.category_id").
		Group("items.category_id, categories.name").
		Order("category_name asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]repo.CategoryValueRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, repo.CategoryValueRow{
			CategoryID:   row.CategoryID,
			CategoryName: row.CategoryName,
			ItemCount:    row.ItemCount,
			TotalValue:   row.TotalValue,
		})
	}
	return out, nil
}

// カテゴリを参照するアイテム数
func (r *ItemGormRepository) CountByCategoryID(ctx context.Context, categoryID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Item{}).Where("category_id = ?", categoryID).Count(&n).Error
	return n, err
}

// 仕入先を参照するアイテム数
func (r *ItemGormRepository) CountBySupplierID(ctx context.Context, supplierID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Item{}).Where("supplier_id = ?", supplierID).Count(&n).Error
	return n, err
}

// postgresのunique violation（23505）か
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
