package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// 集計レポート。ItemStoreと取引ログから毎回計算する（キャッシュなし）。
// 何も書き換えない。
type ReportUsecase struct {
	itemRepo repo.ItemRepository
	txRepo   repo.TransactionRepository
}

// DI
func NewReportUsecase(itemRepo repo.ItemRepository, txRepo repo.TransactionRepository) *ReportUsecase {
	return &ReportUsecase{itemRepo: itemRepo, txRepo: txRepo}
}

type CategoryValueOutput struct {
	CategoryID   *int64          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	ItemCount    int64           `json:"item_count"`
	TotalValue   decimal.Decimal `json:"total_value"`
}

type InventoryValueOutput struct {
	Categories []CategoryValueOutput `json:"categories"`
	TotalValue decimal.Decimal       `json:"total_value"`
}

// カテゴリ別のΣ(quantity × unit_price)と全体合計。
// カテゴリ未設定のアイテムはUncategorizedにまとめる。
func (u *ReportUsecase) InventoryValue(ctx context.Context) (InventoryValueOutput, error) {
	rows, err := u.itemRepo.ValueByCategory(ctx)
	if err != nil {
		return InventoryValueOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := InventoryValueOutput{
		Categories: make([]CategoryValueOutput, 0, len(rows)),
		TotalValue: decimal.Zero,
	}

	for _, row := range rows {
		name := row.CategoryName
		if row.CategoryID == nil {
			name = "Uncategorized"
		}
		out.Categories = append(out.Categories, CategoryValueOutput{
			CategoryID:   row.CategoryID,
			CategoryName: name,
			ItemCount:    row.ItemCount,
			TotalValue:   row.TotalValue,
		})
		out.TotalValue = out.TotalValue.Add(row.TotalValue)
	}

	return out, nil
}

type TransactionSummaryInput struct {
	From *time.Time
	To   *time.Time
}

type TransactionSummaryOutput struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	//売上系（sale/out）のtotal_price合計
	TotalValue decimal.Decimal `json:"total_value"`

	//種別ごとの件数
	Counts map[string]int64 `json:"counts"`
}

// 期間内の取引集計。期間未指定なら直近30日。
func (u *ReportUsecase) TransactionSummary(ctx context.Context, in TransactionSummaryInput) (TransactionSummaryOutput, error) {
	to := time.Now()
	if in.To != nil {
		to = *in.To
	}
	from := to.AddDate(0, 0, -30)
	if in.From != nil {
		from = *in.From
	}
	if from.After(to) {
		return TransactionSummaryOutput{}, NewHTTPError(http.StatusBadRequest, "from must be <= to")
	}

	rows, err := u.txRepo.SummarizeByPeriod(ctx, from, to)
	if err != nil {
		return TransactionSummaryOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := TransactionSummaryOutput{
		From:       from,
		To:         to,
		TotalValue: decimal.Zero,
		Counts:     map[string]int64{},
	}

	for _, row := range rows {
		out.Counts[string(row.Type)] = row.Count

		//金額合計に数えるのは出庫系だけ
		if row.Type == model.TransactionTypeSale || row.Type == model.TransactionTypeStockOut {
			out.TotalValue = out.TotalValue.Add(row.Total)
		}
	}

	return out, nil
}
