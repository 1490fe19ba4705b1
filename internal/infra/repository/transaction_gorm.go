package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionGormRepository struct {
	db *gorm.DB
}

// DI
func NewTransactionGormRepository(db *gorm.DB) *TransactionGormRepository {
	return &TransactionGormRepository{db: db}
}

// 取引を追記する。IDとcreated_atはDBが採番。
func (r *TransactionGormRepository) Append(ctx context.Context, tx *model.Transaction) error {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return err
	}
	return nil
}

// IDで取引を取得
func (r *TransactionGormRepository) FindByID(ctx context.Context, id int64) (model.Transaction, error) {
	var t model.Transaction
	err := r.db.WithContext(ctx).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Transaction{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Transaction{}, err
	}
	return t, nil
}

// 絞り込み＋新しい順ページング
func (r *TransactionGormRepository) List(ctx context.Context, q repo.TransactionListQuery) ([]model.Transaction, int64, error) {
	var txs []model.Transaction
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Transaction{})

	if q.ItemID != nil {
		tx = tx.Where("item_id = ?", *q.ItemID)
	}
	if q.Type != nil {
		tx = tx.Where("transaction_type = ?", *q.Type)
	}
	if q.From != nil {
		tx = tx.Where("created_at >= ?", *q.From)
	}
	if q.To != nil {
		tx = tx.Where("created_at <= ?", *q.To)
	}

	//total（件数）
	if err := tx.Count(&total).Error; err != nil {
		return []model.Transaction{}, 0, err
	}

	//新しい順
	tx = tx.Order("created_at desc").Order("id desc")

	offset := (q.Page - 1) * q.Limit
	if err := tx.Offset(offset).Limit(q.Limit).Find(&txs).Error; err != nil {
		return []model.Transaction{}, 0, err
	}

	return txs, total, nil
}

// アイテムを参照する取引の件数
func (r *TransactionGormRepository) CountByItemID(ctx context.Context, itemID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).Where("item_id = ?", itemID).Count(&n).Error
	return n, err
}

// 仕入先を参照する取引の件数
func (r *TransactionGormRepository) CountBySupplierID(ctx context.Context, supplierID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).Where("supplier_id = ?", supplierID).Count(&n).Error
	return n, err
}

type typeSummaryScan struct {
	TransactionType model.TransactionType
	Count           int64
	Total           decimal.Decimal
}

// 期間内の種別ごとの件数と金額合計
func (r *TransactionGormRepository) SummarizeByPeriod(ctx context.Context, from, to time.Time) ([]repo.TypeSummaryRow, error) {
	var rows []typeSummaryScan

	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Select("transaction_type, COUNT(id) AS count, COALESCE(SUM(total_price), 0) AS total").
		Where("created_at >= ? AND created_at <= ?", from, to).
		Group("transaction_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]repo.TypeSummaryRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, repo.TypeSummaryRow{
			Type:  row.TransactionType,
			Count: row.Count,
			Total: row.Total,
		})
	}
	return out, nil
}
