package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 集計レポート（読み取り専用）
type ReportHandler struct {
	reportUC *usecase.ReportUsecase
}

// DI
func NewReportHandler(reportUC *usecase.ReportUsecase) *ReportHandler {
	return &ReportHandler{reportUC: reportUC}
}

func (h *ReportHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/reports")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))

	g.GET("/inventory-value", h.inventoryValue)
	g.GET("/transactions", h.transactionSummary)
}

func (h *ReportHandler) inventoryValue(c echo.Context) error {
	out, err := h.reportUC.InventoryValue(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ReportHandler) transactionSummary(c echo.Context) error {
	from, err := parseTimeParam(c.QueryParam("from"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
	}
	to, err := parseTimeParam(c.QueryParam("to"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
	}

	out, err := h.reportUC.TransactionSummary(c.Request().Context(), usecase.TransactionSummaryInput{
		From: from,
		To:   to,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
