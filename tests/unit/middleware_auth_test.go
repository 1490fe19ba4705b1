package unit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	repo "app/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func validClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub":  "42",
		"role": "USER",
		"tv":   1,
		"iat":  now.Unix(),
		"exp":  now.Add(15 * time.Minute).Unix(),
	}
}

// AuthJWTを通した結果（status、contextの値）を返す
func runAuthJWT(t *testing.T, authz string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := middleware.AuthJWT(config.Config{JWTSecret: testSecret})
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	err := handler(c)
	assert.NoError(t, err)
	return rec, c
}

func TestAuthJWT_MissingHeader(t *testing.T) {
	rec, _ := runAuthJWT(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_NotBearer(t *testing.T) {
	rec, _ := runAuthJWT(t, "Basic abc123")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_BadSignature(t *testing.T) {
	token := signToken(t, "other-secret", validClaims())
	rec, _ := runAuthJWT(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_ExpiredToken(t *testing.T) {
	claims := validClaims()
	claims["exp"] = time.Now().Add(-time.Minute).Unix()

	token := signToken(t, testSecret, claims)
	rec, _ := runAuthJWT(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_ValidToken_SetsContext(t *testing.T) {
	token := signToken(t, testSecret, validClaims())
	rec, c := runAuthJWT(t, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, int64(42), c.Get(middleware.CtxUserIDKey))
	assert.Equal(t, "USER", c.Get(middleware.CtxUserRoleKey))
	assert.Equal(t, 1, c.Get(middleware.CtxTokenVersionKey))
}

// roleがUSER/ADMIN以外のtokenは弾く
func TestAuthJWT_UnknownRoleRejected(t *testing.T) {
	claims := validClaims()
	claims["role"] = "SUPERUSER"

	token := signToken(t, testSecret, claims)
	rec, _ := runAuthJWT(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =====================
// TokenVersionGuard
// =====================

func runTokenVersionGuard(t *testing.T, userRepo *UserRepoMock, userID int64, tv int) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxUserIDKey, userID)
	c.Set(middleware.CtxTokenVersionKey, tv)

	handler := middleware.TokenVersionGuard(userRepo)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	err := handler(c)
	assert.NoError(t, err)
	return rec
}

func TestTokenVersionGuard_MatchAllowed(t *testing.T) {
	userRepo := new(UserRepoMock)
	userRepo.On("FindByID", mock.Anything, int64(42)).Return(&model.User{
		ID: 42, TokenVersion: 1, IsActive: true,
	}, nil)

	rec := runTokenVersionGuard(t, userRepo, 42, 1)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// token_versionを上げられた後の旧tokenは有効期限内でも401
func TestTokenVersionGuard_StaleVersionRejected(t *testing.T) {
	userRepo := new(UserRepoMock)
	userRepo.On("FindByID", mock.Anything, int64(42)).Return(&model.User{
		ID: 42, TokenVersion: 2, IsActive: true,
	}, nil)

	rec := runTokenVersionGuard(t, userRepo, 42, 1)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// 無効化されたユーザーはtvが合っていても401
func TestTokenVersionGuard_InactiveUserRejected(t *testing.T) {
	userRepo := new(UserRepoMock)
	userRepo.On("FindByID", mock.Anything, int64(42)).Return(&model.User{
		ID: 42, TokenVersion: 1, IsActive: false,
	}, nil)

	rec := runTokenVersionGuard(t, userRepo, 42, 1)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenVersionGuard_UnknownUserRejected(t *testing.T) {
	userRepo := new(UserRepoMock)
	userRepo.On("FindByID", mock.Anything, int64(42)).Return(nil, repo.ErrUserNotFound)

	rec := runTokenVersionGuard(t, userRepo, 42, 1)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =====================
// AdminRoleGuard
// =====================

func runAdminGuard(t *testing.T, role interface{}) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != nil {
		c.Set(middleware.CtxUserRoleKey, role)
	}

	handler := middleware.AdminRoleGuard()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	err := handler(c)
	assert.NoError(t, err)
	return rec
}

func TestAdminRoleGuard_NoRole(t *testing.T) {
	rec := runAdminGuard(t, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoleGuard_UserForbidden(t *testing.T) {
	rec := runAdminGuard(t, "USER")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminRoleGuard_AdminAllowed(t *testing.T) {
	rec := runAdminGuard(t, "ADMIN")
	assert.Equal(t, http.StatusOK, rec.Code)
}
