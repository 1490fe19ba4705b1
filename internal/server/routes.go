package server

import (
	"net/http"

	"app/internal/config"
	"app/internal/handler"
	"app/internal/repository"

	"github.com/labstack/echo/v4"
)

// Handlers はルート登録に必要なhandler一式。
type Handlers struct {
	Auth        *handler.AuthHandler
	Item        *handler.ItemHandler
	Transaction *handler.TransactionHandler
	Report      *handler.ReportHandler
	Category    *handler.CategoryHandler
	Supplier    *handler.SupplierHandler
	AdminUser   *handler.AdminUserHandler
}

// userRepoは保護ルートのTokenVersionGuardが使う。
func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers, userRepo repository.UserRepository) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	h.Auth.RegisterRoutes(e)
	h.Item.RegisterRoutes(e, cfg, userRepo)
	h.Transaction.RegisterRoutes(e, cfg, userRepo)
	h.Report.RegisterRoutes(e, cfg, userRepo)
	h.Category.RegisterRoutes(e, cfg, userRepo)
	h.Supplier.RegisterRoutes(e, cfg, userRepo)
	h.AdminUser.RegisterRoutes(e, cfg, userRepo)
}
