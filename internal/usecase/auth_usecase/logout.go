package auth

import (
	"context"
	"errors"

	"app/internal/repository"
)

// ログアウト。提示されたrefresh tokenを失効させる。
type LogoutUsecase struct {
	rtRepo repository.RefreshTokenRepository
	clock  Clock
}

// DI
func NewLogoutUsecase(rtRepo repository.RefreshTokenRepository, clock Clock) *LogoutUsecase {
	return &LogoutUsecase{rtRepo: rtRepo, clock: clock}
}

func (u *LogoutUsecase) Execute(ctx context.Context, plainRefresh string) error {
	if plainRefresh == "" {
		return ErrInvalidRefreshToken
	}

	rt, err := u.rtRepo.FindByTokenHash(ctx, hashRefreshToken(plainRefresh))
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return ErrInvalidRefreshToken
		}
		return err
	}

	//既に失効済みなら何もしない（冪等）
	if rt.RevokedAt != nil {
		return nil
	}

	return u.rtRepo.Revoke(ctx, rt.ID, u.clock.Now())
}
