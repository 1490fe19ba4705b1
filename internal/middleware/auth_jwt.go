package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"app/internal/config"
	"app/internal/domain/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey       = "user_id"       // int64
	CtxUserRoleKey     = "user_role"     // string
	CtxTokenVersionKey = "token_version" // int
)

// アクセストークンのclaims（sub/role/tv）をまとめたもの。
type accessClaims struct {
	UserID       int64
	Role         model.Role
	TokenVersion int
}

// bearerAuth用のJWT検証ミドルウェア。
// 検証が通ったらuser_id/role/tvをcontextに入れる。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawToken, ok := bearerToken(c.Request().Header.Get("Authorization"))
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			claims, err := parseAccessToken(rawToken, cfg.JWTSecret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//contextへ保存
			c.Set(CtxUserIDKey, claims.UserID)
			c.Set(CtxUserRoleKey, string(claims.Role))
			c.Set(CtxTokenVersionKey, claims.TokenVersion)

			return next(c)
		}
	}
}

// Authorizationヘッダから"Bearer <token>"のtokenを抜く。
func bearerToken(authz string) (string, bool) {
	if authz == "" {
		return "", false
	}
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

// HS256で署名検証してclaimsを取り出す。
// roleはUSER/ADMIN以外を弾く。
func parseAccessToken(rawToken string, secret string) (accessClaims, error) {
	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || token == nil || !token.Valid {
		return accessClaims{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return accessClaims{}, errors.New("invalid claims")
	}

	userID, err := parseUserID(claims["sub"])
	if err != nil || userID <= 0 {
		return accessClaims{}, errors.New("invalid sub")
	}

	roleStr, ok := claims["role"].(string)
	if !ok {
		return accessClaims{}, errors.New("invalid role")
	}
	role := model.Role(roleStr)
	if role != model.RoleUser && role != model.RoleAdmin {
		return accessClaims{}, errors.New("invalid role")
	}

	tv, err := parseInt(claims["tv"])
	if err != nil || tv < 0 {
		return accessClaims{}, errors.New("invalid tv")
	}

	return accessClaims{
		UserID:       userID,
		Role:         role,
		TokenVersion: tv,
	}, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

// user_idをint64に変換する
func parseUserID(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, errors.New("invalid sub")
	}
}

func parseInt(v interface{}) (int, error) {
	switch t := v.(type) {
	case float64:
		return int(t), nil
	case int:
		return t, nil
	case string:
		i64, err := strconv.ParseInt(t, 10, 32)
		if err != nil {
			return 0, err
		}
		return int(i64), nil
	default:
		return 0, errors.New("invalid int")
	}
}
