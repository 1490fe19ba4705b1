package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 発注点割れの読み取り専用ビュー。状態は持たない。
type ReorderUsecase struct {
	itemRepo repo.ItemRepository
}

// DI
func NewReorderUsecase(itemRepo repo.ItemRepository) *ReorderUsecase {
	return &ReorderUsecase{itemRepo: itemRepo}
}

type ReorderAlertsOutput struct {
	Items []model.Item `json:"items"`
	Count int          `json:"count"`
}

// quantity < reorder_level のアイテムをquantity昇順で返す
func (u *ReorderUsecase) ListBelowReorderLevel(ctx context.Context) (ReorderAlertsOutput, error) {
	items, err := u.itemRepo.ListBelowReorderLevel(ctx)
	if err != nil {
		return ReorderAlertsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ReorderAlertsOutput{
		Items: items,
		Count: len(items),
	}, nil
}
