package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 取引履歴の読み取り専用usecase。追記はLedgerUsecaseだけが行う。
type TransactionUsecase struct {
	txRepo repo.TransactionRepository
}

// DI
func NewTransactionUsecase(txRepo repo.TransactionRepository) *TransactionUsecase {
	return &TransactionUsecase{txRepo: txRepo}
}

// GET /transactionsの入力DTO
type ListTransactionsInput struct {
	Page   int
	Limit  int
	ItemID *int64
	Type   *model.TransactionType
	From   *time.Time
	To     *time.Time
}

type TransactionListOutput struct {
	Items []model.Transaction `json:"items"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

func (u *TransactionUsecase) List(ctx context.Context, in ListTransactionsInput) (TransactionListOutput, error) {
	if in.Page < 1 {
		return TransactionListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return TransactionListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if in.Type != nil && !in.Type.Valid() {
		return TransactionListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid type")
	}
	if in.From != nil && in.To != nil && in.From.After(*in.To) {
		return TransactionListOutput{}, NewHTTPError(http.StatusBadRequest, "from must be <= to")
	}

	items, total, err := u.txRepo.List(ctx, repo.TransactionListQuery{
		Page:   in.Page,
		Limit:  in.Limit,
		ItemID: in.ItemID,
		Type:   in.Type,
		From:   in.From,
		To:     in.To,
	})
	if err != nil {
		return TransactionListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return TransactionListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *TransactionUsecase) Get(ctx context.Context, id int64) (model.Transaction, error) {
	if id <= 0 {
		return model.Transaction{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	t, err := u.txRepo.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return model.Transaction{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Transaction{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return t, nil
}
