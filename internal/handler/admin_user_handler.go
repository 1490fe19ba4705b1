package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminUpdateUserRequest struct {
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// 管理者専用のユーザー管理
type AdminUserHandler struct {
	userUC *usecase.UserUsecase
}

// DI
func NewAdminUserHandler(userUC *usecase.UserUsecase) *AdminUserHandler {
	return &AdminUserHandler{userUC: userUC}
}

// /admin配下はJWT + ADMINロールの二段チェック
func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/admin/users")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	g.Use(middleware.AdminRoleGuard())

	g.GET("", h.list)
	g.PUT("/:id", h.update)

	logs := e.Group("/admin/audit-logs")
	logs.Use(middleware.AuthJWT(cfg))
	logs.Use(middleware.TokenVersionGuard(userRepo))
	logs.Use(middleware.AdminRoleGuard())
	logs.GET("", h.auditLogs)
}

func (h *AdminUserHandler) list(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	users, err := h.userUC.AdminListUsers(c.Request().Context(), adminID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, users)
}

func (h *AdminUserHandler) update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req AdminUpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.userUC.AdminUpdateUser(c.Request().Context(), adminID, id, usecase.AdminUpdateUserInput{
		Role:     model.Role(req.Role),
		IsActive: req.IsActive,
	}); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *AdminUserHandler) auditLogs(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	limit := 100
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	var actorID *int64
	if v := c.QueryParam("actor_user_id"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid actor_user_id"})
		}
		actorID = &x
	}

	var resourceID *int64
	if v := c.QueryParam("resource_id"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid resource_id"})
		}
		resourceID = &x
	}

	var action *model.AuditAction
	if v := c.QueryParam("action"); v != "" {
		a := model.AuditAction(v)
		action = &a
	}

	logs, err := h.userUC.AdminListAuditLogs(c.Request().Context(), adminID, usecase.AdminListAuditLogsInput{
		ActorUserID: actorID,
		Action:      action,
		ResourceID:  resourceID,
		Limit:       limit,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, logs)
}
