package usecase

import (
	"context"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type SupplierUsecase struct {
	supplierRepo repo.SupplierRepository
	itemRepo     repo.ItemRepository
	txRepo       repo.TransactionRepository
}

// DI
func NewSupplierUsecase(
	supplierRepo repo.SupplierRepository,
	itemRepo repo.ItemRepository,
	txRepo repo.TransactionRepository,
) *SupplierUsecase {
	return &SupplierUsecase{
		supplierRepo: supplierRepo,
		itemRepo:     itemRepo,
		txRepo:       txRepo,
	}
}

type SupplierDraftInput struct {
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
	Notes         string
}

func (u *SupplierUsecase) List(ctx context.Context) ([]model.Supplier, error) {
	ss, err := u.supplierRepo.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return ss, nil
}

func (u *SupplierUsecase) Get(ctx context.Context, id int64) (model.Supplier, error) {
	if id <= 0 {
		return model.Supplier{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	s, err := u.supplierRepo.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return model.Supplier{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Supplier{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return s, nil
}

func (u *SupplierUsecase) Create(ctx context.Context, userID int64, in SupplierDraftInput) (model.Supplier, error) {
	if userID <= 0 {
		return model.Supplier{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.Supplier{}, NewHTTPError(http.StatusBadRequest, "name required")
	}

	s, err := u.supplierRepo.Create(ctx, model.Supplier{
		Name:          strings.TrimSpace(in.Name),
		ContactPerson: in.ContactPerson,
		Email:         in.Email,
		Phone:         in.Phone,
		Address:       in.Address,
		Notes:         in.Notes,
	})
	if err != nil {
		return model.Supplier{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return s, nil
}

func (u *SupplierUsecase) Update(ctx context.Context, userID int64, id int64, in SupplierDraftInput) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}

	err := u.supplierRepo.Update(ctx, model.Supplier{
		ID:            id,
		Name:          strings.TrimSpace(in.Name),
		ContactPerson: in.ContactPerson,
		Email:         in.Email,
		Phone:         in.Phone,
		Address:       in.Address,
		Notes:         in.Notes,
	})
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// アイテムか取引が参照している仕入先は消せない。
func (u *SupplierUsecase) Delete(ctx context.Context, userID int64, id int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	nItems, err := u.itemRepo.CountBySupplierID(ctx, id)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	nTxs, err := u.txRepo.CountBySupplierID(ctx, id)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if nItems > 0 || nTxs > 0 {
		return NewHTTPError(http.StatusConflict, "supplier in use")
	}

	err = u.supplierRepo.Delete(ctx, id)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
