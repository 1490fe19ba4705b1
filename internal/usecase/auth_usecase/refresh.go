package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"
)

// 提示されたrefresh tokenが使えない（未登録・期限切れ・失効済み）
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// 使用済みtokenの再提示（盗難の疑い）。該当ユーザーのtokenは全部消す。
var ErrRefreshTokenReuse = errors.New("refresh token reuse detected")

type RefreshOutput struct {
	Token JwtAccessToken `json:"token"`
}

// refresh tokenのローテーション。
// 1回使ったtokenは必ずusedになり、新しいtokenに置き換わる。
type RefreshUsecase struct {
	userRepo   repository.UserRepository
	rtRepo     repository.RefreshTokenRepository
	issuer     AccessTokenIssuer
	idGen      IDGenerator
	clock      Clock
	refreshTTL time.Duration
}

// DI
func NewRefreshUsecase(
	userRepo repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	issuer AccessTokenIssuer,
	idGen IDGenerator,
	clock Clock,
	refreshTTL time.Duration,
) *RefreshUsecase {
	return &RefreshUsecase{
		userRepo:   userRepo,
		rtRepo:     rtRepo,
		issuer:     issuer,
		idGen:      idGen,
		clock:      clock,
		refreshTTL: refreshTTL,
	}
}

func (u *RefreshUsecase) Execute(ctx context.Context, plainRefresh string, userAgent string) (RefreshOutput, LoginSideEffect, error) {
	var out RefreshOutput
	var side LoginSideEffect

	if plainRefresh == "" {
		return out, side, ErrInvalidRefreshToken
	}

	//DB照合（保存しているのはhashだけ）
	rt, err := u.rtRepo.FindByTokenHash(ctx, hashRefreshToken(plainRefresh))
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return out, side, ErrInvalidRefreshToken
		}
		return out, side, err
	}

	now := u.clock.Now()

	//期限切れは失効させて終わり
	if rt.ExpiresAt.Before(now) {
		_ = u.rtRepo.Revoke(ctx, rt.ID, now)
		return out, side, ErrInvalidRefreshToken
	}

	//失効済み
	if rt.RevokedAt != nil {
		return out, side, ErrInvalidRefreshToken
	}

	//used済みの再提示はreplay。全tokenを削除して締め出す。
	if rt.UsedAt != nil {
		_ = u.rtRepo.DeleteAllByUserID(ctx, rt.UserID)
		return out, side, ErrRefreshTokenReuse
	}

	//User-Agent違いも再認証扱い
	if userAgent != "" && rt.UserAgent != "" && userAgent != rt.UserAgent {
		_ = u.rtRepo.DeleteAllByUserID(ctx, rt.UserID)
		return out, side, ErrRefreshTokenReuse
	}

	user, err := u.userRepo.FindByID(ctx, rt.UserID)
	if err != nil || user == nil {
		return out, side, ErrInvalidRefreshToken
	}
	if !user.IsActive {
		return out, side, ErrUserInactive
	}

	//旧tokenをusedにする
	if err := u.rtRepo.MarkUsed(ctx, rt.ID, now); err != nil {
		_ = u.rtRepo.DeleteAllByUserID(ctx, rt.UserID)
		return out, side, ErrRefreshTokenReuse
	}

	//新tokenを作って保存
	newPlain, err := generateSecureToken(32)
	if err != nil {
		return out, side, err
	}

	if err := u.rtRepo.Create(ctx, &model.RefreshToken{
		ID:        u.idGen.NewID(),
		UserID:    user.ID,
		TokenHash: hashRefreshToken(newPlain),
		UserAgent: userAgent,
		ExpiresAt: now.Add(u.refreshTTL),
	}); err != nil {
		return out, side, err
	}

	//access再発行
	accessToken, accessExp, err := u.issuer.Issue(user.ID, user.Role, user.TokenVersion, now)
	if err != nil {
		return out, side, err
	}

	out.Token = JwtAccessToken{
		AccessToken:  accessToken,
		ExpiresIn:    int(accessExp.Sub(now).Seconds()),
		TokenVersion: user.TokenVersion,
	}
	side.PlainRefreshToken = newPlain
	return out, side, nil
}

// 平文refresh tokenのsha256ハッシュ（hex）。DBにはこれだけ入る。
func hashRefreshToken(plain string) string {
	h := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(h[:])
}
