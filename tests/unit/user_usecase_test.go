package unit

import (
	"context"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newUserFixture() (*UserRepoMock, *RefreshTokenRepoMock, *AuditRepoMock, *usecase.UserUsecase) {
	userRepo := new(UserRepoMock)
	rtRepo := new(RefreshTokenRepoMock)
	aRepo := new(AuditRepoMock)
	uc := usecase.NewUserUsecase(userRepo, rtRepo, aRepo)
	return userRepo, rtRepo, aRepo, uc
}

func TestUserUsecase_AdminUpdateUser_InvalidRole(t *testing.T) {
	_, _, _, uc := newUserFixture()

	err := uc.AdminUpdateUser(context.Background(), 1, 2, usecase.AdminUpdateUserInput{Role: "SUPERUSER"})
	assertErrContains(t, err, "invalid role")
}

func TestUserUsecase_AdminUpdateUser_NotFound(t *testing.T) {
	userRepo, _, _, uc := newUserFixture()

	userRepo.On("FindByID", mock.Anything, int64(99)).Return(nil, repo.ErrUserNotFound)

	err := uc.AdminUpdateUser(context.Background(), 1, 99, usecase.AdminUpdateUserInput{Role: model.RoleUser, IsActive: true})
	assertErrContains(t, err, "not found")
}

// 無効化したらtoken_versionが上がってrefresh tokenが全部消える
func TestUserUsecase_AdminUpdateUser_DeactivationLockout(t *testing.T) {
	userRepo, rtRepo, aRepo, uc := newUserFixture()

	target := &model.User{ID: 2, Role: model.RoleUser, IsActive: true}
	userRepo.On("FindByID", mock.Anything, int64(2)).Return(target, nil)
	userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.ID == 2 && !u.IsActive
	})).Return(nil)
	userRepo.On("IncrementTokenVersion", mock.Anything, int64(2)).Return(nil)
	rtRepo.On("DeleteAllByUserID", mock.Anything, int64(2)).Return(nil)
	aRepo.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateUser && l.ResourceID == 2 && l.ActorUserID == 1
	})).Return(nil)

	err := uc.AdminUpdateUser(context.Background(), 1, 2, usecase.AdminUpdateUserInput{
		Role:     model.RoleUser,
		IsActive: false,
	})
	assert.NoError(t, err)

	userRepo.AssertExpectations(t)
	rtRepo.AssertExpectations(t)
	aRepo.AssertExpectations(t)
}

// 有効のままのロール変更ではトークンは失効しない
func TestUserUsecase_AdminUpdateUser_RoleChangeKeepsTokens(t *testing.T) {
	userRepo, rtRepo, aRepo, uc := newUserFixture()

	target := &model.User{ID: 2, Role: model.RoleUser, IsActive: true}
	userRepo.On("FindByID", mock.Anything, int64(2)).Return(target, nil)
	userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.ID == 2 && u.Role == model.RoleAdmin && u.IsActive
	})).Return(nil)
	aRepo.On("Create", mock.Anything, mock.AnythingOfType("model.AuditLog")).Return(nil)

	err := uc.AdminUpdateUser(context.Background(), 1, 2, usecase.AdminUpdateUserInput{
		Role:     model.RoleAdmin,
		IsActive: true,
	})
	assert.NoError(t, err)

	userRepo.AssertNotCalled(t, "IncrementTokenVersion", mock.Anything, int64(2))
	rtRepo.AssertNotCalled(t, "DeleteAllByUserID", mock.Anything, int64(2))
}

func TestUserUsecase_AdminListAuditLogs_InvalidLimit(t *testing.T) {
	_, _, _, uc := newUserFixture()

	_, err := uc.AdminListAuditLogs(context.Background(), 1, usecase.AdminListAuditLogsInput{Limit: 0})
	assertErrContains(t, err, "invalid limit")

	_, err = uc.AdminListAuditLogs(context.Background(), 1, usecase.AdminListAuditLogsInput{Limit: 201})
	assertErrContains(t, err, "invalid limit")
}

func TestUserUsecase_AdminListAuditLogs_Success(t *testing.T) {
	_, _, aRepo, uc := newUserFixture()

	actorID := int64(7)
	aRepo.On("List", mock.Anything, mock.MatchedBy(func(f repo.AuditLogFilter) bool {
		return f.ActorUserID != nil && *f.ActorUserID == 7 && f.Limit == 50
	})).Return([]model.AuditLog{{ID: 1, ActorUserID: 7}}, nil)

	logs, err := uc.AdminListAuditLogs(context.Background(), 1, usecase.AdminListAuditLogsInput{
		ActorUserID: &actorID,
		Limit:       50,
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(logs))

	aRepo.AssertExpectations(t)
}
