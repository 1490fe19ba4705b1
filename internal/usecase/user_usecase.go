package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 管理者向けのユーザー管理。
type UserUsecase struct {
	userRepo  repo.UserRepository
	rtRepo    repo.RefreshTokenRepository
	auditRepo repo.AuditLogRepository
}

// DI
func NewUserUsecase(
	userRepo repo.UserRepository,
	rtRepo repo.RefreshTokenRepository,
	auditRepo repo.AuditLogRepository,
) *UserUsecase {
	return &UserUsecase{
		userRepo:  userRepo,
		rtRepo:    rtRepo,
		auditRepo: auditRepo,
	}
}

type AdminUpdateUserInput struct {
	Role     model.Role
	IsActive bool
}

type AdminListAuditLogsInput struct {
	ActorUserID *int64
	Action      *model.AuditAction
	ResourceID  *int64
	Limit       int
}

// 監査ログの参照（管理者のみ）。新しい順。
func (u *UserUsecase) AdminListAuditLogs(ctx context.Context, adminUserID int64, in AdminListAuditLogsInput) ([]model.AuditLog, error) {
	if adminUserID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Limit < 1 || in.Limit > 200 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	logs, err := u.auditRepo.List(ctx, repo.AuditLogFilter{
		ActorUserID: in.ActorUserID,
		Action:      in.Action,
		ResourceID:  in.ResourceID,
		Limit:       in.Limit,
	})
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return logs, nil
}

func (u *UserUsecase) AdminListUsers(ctx context.Context, adminUserID int64) ([]model.User, error) {
	if adminUserID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	users, err := u.userRepo.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return users, nil
}

// ロール/アクティブ状態の変更。
// 無効化したらrefresh tokenを全部消して締め出す。
func (u *UserUsecase) AdminUpdateUser(ctx context.Context, adminUserID int64, targetUserID int64, in AdminUpdateUserInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if targetUserID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	if in.Role != model.RoleUser && in.Role != model.RoleAdmin {
		return NewHTTPError(http.StatusBadRequest, "invalid role")
	}

	user, err := u.userRepo.FindByID(ctx, targetUserID)
	if errors.Is(err, repo.ErrUserNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	beforeJSON := fmt.Sprintf(`{"role":%q,"is_active":%t}`, user.Role, user.IsActive)
	afterJSON := fmt.Sprintf(`{"role":%q,"is_active":%t}`, in.Role, in.IsActive)

	deactivated := user.IsActive && !in.IsActive

	user.Role = in.Role
	user.IsActive = in.IsActive
	if err := u.userRepo.Update(ctx, user); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if deactivated {
		//既存トークンを失効させる
		if err := u.userRepo.IncrementTokenVersion(ctx, targetUserID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := u.rtRepo.DeleteAllByUserID(ctx, targetUserID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionUpdateUser,
		ResourceType: model.AuditResourceUser,
		ResourceID:   targetUserID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}
