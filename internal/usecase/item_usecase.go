package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

type ItemUsecase struct {
	tx        repo.TransactionManager
	itemRepo  repo.ItemRepository
	auditRepo repo.AuditLogRepository
}

// DI
func NewItemUsecase(
	tx repo.TransactionManager,
	itemRepo repo.ItemRepository,
	auditRepo repo.AuditLogRepository,
) *ItemUsecase {
	return &ItemUsecase{
		tx:        tx,
		itemRepo:  itemRepo,
		auditRepo: auditRepo,
	}
}

// GET /itemsの入力DTO
type ListItemsInput struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	SupplierID *int64
}

type ItemListOutput struct {
	Items []model.Item `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

// 作成・更新の入力。Quantityは作成時の初期在庫にだけ使い、
// 更新では一切触らない（在庫は台帳経由のみ）。
type ItemDraftInput struct {
	Name            string
	Description     string
	SKU             string
	Quantity        int64
	UnitPrice       decimal.Decimal
	CostPrice       decimal.Decimal
	ReorderLevel    int64
	ReorderQuantity int64
	CategoryID      *int64
	SupplierID      *int64
	Location        string
	ImageURL        string
}

func (u *ItemUsecase) List(ctx context.Context, in ListItemsInput) (ItemListOutput, error) {
	if in.Page < 1 {
		return ItemListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ItemListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ItemListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}

	items, total, err := u.itemRepo.List(ctx, repo.ItemListQuery{
		Page:       in.Page,
		Limit:      in.Limit,
		Q:          strings.TrimSpace(in.Q),
		CategoryID: in.CategoryID,
		SupplierID: in.SupplierID,
	})
	if err != nil {
		return ItemListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ItemListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ItemUsecase) Get(ctx context.Context, itemID int64) (model.Item, error) {
	if itemID <= 0 {
		return model.Item{}, NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	item, err := u.itemRepo.FindByID(ctx, itemID)
	if err == repo.ErrNotFound {
		return model.Item{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Item{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return item, nil
}

// 現在の在庫数だけを返す。書き込みが無ければ何回読んでも同じ値。
func (u *ItemUsecase) CurrentQuantity(ctx context.Context, itemID int64) (int64, error) {
	item, err := u.Get(ctx, itemID)
	if err != nil {
		return 0, err
	}
	return item.Quantity, nil
}

func (u *ItemUsecase) Create(ctx context.Context, userID int64, in ItemDraftInput) (model.Item, error) {
	if userID <= 0 {
		return model.Item{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validateItemDraft(in); err != nil {
		return model.Item{}, err
	}
	if in.Quantity < 0 {
		return model.Item{}, NewHTTPError(http.StatusBadRequest, "quantity must be >= 0")
	}

	//SKU重複の事前チェック。同時作成の競合はユニーク制約側で拾う。
	if _, err := u.itemRepo.FindBySKU(ctx, strings.TrimSpace(in.SKU)); err == nil {
		return model.Item{}, NewHTTPError(http.StatusConflict, "sku already exists")
	} else if err != repo.ErrNotFound {
		return model.Item{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	item, err := u.itemRepo.Create(ctx, model.Item{
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		SKU:             strings.TrimSpace(in.SKU),
		Quantity:        in.Quantity,
		UnitPrice:       in.UnitPrice,
		CostPrice:       in.CostPrice,
		ReorderLevel:    in.ReorderLevel,
		ReorderQuantity: in.ReorderQuantity,
		CategoryID:      in.CategoryID,
		SupplierID:      in.SupplierID,
		Location:        in.Location,
		ImageURL:        in.ImageURL,
	})
	if err == repo.ErrDuplicateSKU {
		return model.Item{}, NewHTTPError(http.StatusConflict, "sku already exists")
	}
	if err != nil {
		return model.Item{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return item, nil
}

// マスタ情報の更新。quantityはリクエストに含まれていても無視する。
func (u *ItemUsecase) Update(ctx context.Context, userID int64, itemID int64, in ItemDraftInput) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if itemID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid item id")
	}
	if err := validateItemDraft(in); err != nil {
		return err
	}

	//変更前（before）を監査ログ用に取得
	before, err := u.itemRepo.FindByID(ctx, itemID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	err = u.itemRepo.Update(ctx, model.Item{
		ID:              itemID,
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		SKU:             strings.TrimSpace(in.SKU),
		UnitPrice:       in.UnitPrice,
		CostPrice:       in.CostPrice,
		ReorderLevel:    in.ReorderLevel,
		ReorderQuantity: in.ReorderQuantity,
		CategoryID:      in.CategoryID,
		SupplierID:      in.SupplierID,
		Location:        in.Location,
		ImageURL:        in.ImageURL,
	})
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err == repo.ErrDuplicateSKU {
		return NewHTTPError(http.StatusConflict, "sku already exists")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//監査ログ（マスタ更新）
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  userID,
		Action:       model.AuditActionUpdateItem,
		ResourceType: model.AuditResourceItem,
		ResourceID:   itemID,
		BeforeJSON:   fmt.Sprintf(`{"name":%q,"sku":%q,"unit_price":%q}`, before.Name, before.SKU, before.UnitPrice.String()),
		AfterJSON:    fmt.Sprintf(`{"name":%q,"sku":%q,"unit_price":%q}`, strings.TrimSpace(in.Name), strings.TrimSpace(in.SKU), in.UnitPrice.String()),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}

// 取引が1件でも参照しているアイテムは消せない。
func (u *ItemUsecase) Delete(ctx context.Context, userID int64, itemID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if itemID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	//件数チェックと削除は同じトランザクションで行う
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		n, err := r.Transactions().CountByItemID(ctx, itemID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if n > 0 {
			return NewHTTPError(http.StatusConflict, "item in use")
		}

		err = r.Items().Delete(ctx, itemID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}

func validateItemDraft(in ItemDraftInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if strings.TrimSpace(in.SKU) == "" {
		return NewHTTPError(http.StatusBadRequest, "sku required")
	}
	if in.UnitPrice.IsNegative() {
		return NewHTTPError(http.StatusBadRequest, "unit_price must be >= 0")
	}
	if in.CostPrice.IsNegative() {
		return NewHTTPError(http.StatusBadRequest, "cost_price must be >= 0")
	}
	if in.ReorderLevel < 0 {
		return NewHTTPError(http.StatusBadRequest, "reorder_level must be >= 0")
	}
	if in.ReorderQuantity < 0 {
		return NewHTTPError(http.StatusBadRequest, "reorder_quantity must be >= 0")
	}
	return nil
}
