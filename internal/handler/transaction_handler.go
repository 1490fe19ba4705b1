package handler

import (
	"net/http"
	"strconv"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse は { message: string } の形。
type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

//middleware.AuthJWT が c.Set("user_id", int64) した値を取り出す

func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	if v == nil {
		return 0, false
	}

	id, ok := v.(int64)
	if !ok {
		return 0, false
	}

	return id, true
}

// POST /transactionsのリクエストボディ。
// unit_priceは固定小数点の文字列（"2.50"）で受ける。
// adjustmentのときはquantityではなくdelta（符号付き）を使う。
type TransactionCreateRequest struct {
	Type            string          `json:"transaction_type"`
	ItemID          int64           `json:"item_id"`
	Quantity        int64           `json:"quantity"`
	Delta           int64           `json:"delta"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	SupplierID      *int64          `json:"supplier_id"`
	ReferenceNumber string          `json:"reference_number"`
	Notes           string          `json:"notes"`
}

// /transactions をまとめる
type TransactionHandler struct {
	ledgerUC *usecase.LedgerUsecase
	txUC     *usecase.TransactionUsecase
}

// DI
func NewTransactionHandler(ledgerUC *usecase.LedgerUsecase, txUC *usecase.TransactionUsecase) *TransactionHandler {
	return &TransactionHandler{ledgerUC: ledgerUC, txUC: txUC}
}

// 取引ルートを登録（要ログイン）
func (h *TransactionHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/transactions")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))

	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.detail)
}

func (h *TransactionHandler) create(c echo.Context) error {
	var req TransactionCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.ledgerUC.Apply(c.Request().Context(), userID, usecase.ApplyTransactionInput{
		Type:            model.TransactionType(req.Type),
		ItemID:          req.ItemID,
		Quantity:        req.Quantity,
		Delta:           req.Delta,
		UnitPrice:       req.UnitPrice,
		SupplierID:      req.SupplierID,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *TransactionHandler) list(c echo.Context) error {
	// page（default 1）
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}

	// limit（default 20）
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	var itemID *int64
	if v := c.QueryParam("item_id"); v != "" {
		x, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid item_id"})
		}
		itemID = &x
	}

	var txType *model.TransactionType
	if v := c.QueryParam("type"); v != "" {
		t := model.TransactionType(v)
		txType = &t
	}

	from, err := parseTimeParam(c.QueryParam("from"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid from"})
	}
	to, err := parseTimeParam(c.QueryParam("to"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid to"})
	}

	out, err := h.txUC.List(c.Request().Context(), usecase.ListTransactionsInput{
		Page:   page,
		Limit:  limit,
		ItemID: itemID,
		Type:   txType,
		From:   from,
		To:     to,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *TransactionHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	t, err := h.txUC.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, t)
}

// RFC3339か日付（2006-01-02）を受ける
func parseTimeParam(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
