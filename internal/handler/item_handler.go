package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// item作成・更新のリクエストボディ。
// quantityは作成時の初期在庫にだけ意味がある。更新では無視する。
type ItemDraftRequest struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	SKU             string          `json:"sku"`
	Quantity        int64           `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	ReorderLevel    int64           `json:"reorder_level"`
	ReorderQuantity int64           `json:"reorder_quantity"`
	CategoryID      *int64          `json:"category_id"`
	SupplierID      *int64          `json:"supplier_id"`
	Location        string          `json:"location"`
	ImageURL        string          `json:"image_url"`
}

type QuantityResponse struct {
	ItemID   int64 `json:"item_id"`
	Quantity int64 `json:"quantity"`
}

type ItemHandler struct {
	itemUC    *usecase.ItemUsecase
	reorderUC *usecase.ReorderUsecase
}

// DI
func NewItemHandler(itemUC *usecase.ItemUsecase, reorderUC *usecase.ReorderUsecase) *ItemHandler {
	return &ItemHandler{itemUC: itemUC, reorderUC: reorderUC}
}

// アイテムのCRUDと発注点アラート（要ログイン）
func (h *ItemHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/items")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))

	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.GET("/:id/quantity", h.quantity)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)

	alerts := e.Group("/reorder-alerts")
	alerts.Use(middleware.AuthJWT(cfg))
	alerts.Use(middleware.TokenVersionGuard(userRepo))
	alerts.GET("", h.reorderAlerts)
}

func (h *ItemHandler) list(c echo.Context) error {
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}

	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	var categoryID *int64
	if v := c.QueryParam("category_id"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid category_id"})
		}
		categoryID = &x
	}

	var supplierID *int64
	if v := c.QueryParam("supplier_id"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid supplier_id"})
		}
		supplierID = &x
	}

	out, err := h.itemUC.List(c.Request().Context(), usecase.ListItemsInput{
		Page:       page,
		Limit:      limit,
		Q:          c.QueryParam("q"),
		CategoryID: categoryID,
		SupplierID: supplierID,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ItemHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	item, err := h.itemUC.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) quantity(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	qty, err := h.itemUC.CurrentQuantity(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, QuantityResponse{ItemID: id, Quantity: qty})
}

func (h *ItemHandler) create(c echo.Context) error {
	var req ItemDraftRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	item, err := h.itemUC.Create(c.Request().Context(), userID, itemDraftFromRequest(req))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, item)
}

func (h *ItemHandler) update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req ItemDraftRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.itemUC.Update(c.Request().Context(), userID, id, itemDraftFromRequest(req)); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *ItemHandler) delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.itemUC.Delete(c.Request().Context(), userID, id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *ItemHandler) reorderAlerts(c echo.Context) error {
	out, err := h.reorderUC.ListBelowReorderLevel(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func itemDraftFromRequest(req ItemDraftRequest) usecase.ItemDraftInput {
	return usecase.ItemDraftInput{
		Name:            req.Name,
		Description:     req.Description,
		SKU:             req.SKU,
		Quantity:        req.Quantity,
		UnitPrice:       req.UnitPrice,
		CostPrice:       req.CostPrice,
		ReorderLevel:    req.ReorderLevel,
		ReorderQuantity: req.ReorderQuantity,
		CategoryID:      req.CategoryID,
		SupplierID:      req.SupplierID,
		Location:        req.Location,
		ImageURL:        req.ImageURL,
	}
}
