package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

// 入庫→出庫→履歴の一連の流れ。
// 在庫はすべて/transactions経由で動く。
func Test_TransactionFlow_PurchaseThenSale(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	bearer := staffLogin(t, c, ctx)

	//初期在庫0のアイテムを作る
	item := createItem(t, c, ctx, bearer, 0, 0)

	//仕入れ20個 @2.50
	purchaseJSON := mustMarshal(t, map[string]interface{}{
		"transaction_type": "purchase",
		"item_id":          item.ID,
		"quantity":         20,
		"unit_price":       "2.50",
		"reference_number": "PO-1001",
	})
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/transactions", bearer, purchaseJSON)
	requireStatus(t, resp, http.StatusCreated, body)

	applied := mustDecodeApply(t, body)
	if applied.NewQuantity != 20 {
		t.Fatalf("new_quantity want=20 got=%d", applied.NewQuantity)
	}
	if applied.Transaction.QuantityDelta != 20 {
		t.Fatalf("quantity_delta want=20 got=%d", applied.Transaction.QuantityDelta)
	}

	//total_price = 20 × 2.50 = 50.00（作成時点のスナップショット）
	if !strings.HasPrefix(applied.Transaction.TotalPrice, "50") {
		t.Fatalf("total_price want=50.00 got=%s", applied.Transaction.TotalPrice)
	}

	//売り7個
	saleJSON := mustMarshal(t, map[string]interface{}{
		"transaction_type": "sale",
		"item_id":          item.ID,
		"quantity":         7,
		"unit_price":       "3.00",
	})
	resp, body = c.doJSON(ctx, t, http.MethodPost, "/transactions", bearer, saleJSON)
	requireStatus(t, resp, http.StatusCreated, body)

	applied = mustDecodeApply(t, body)
	if applied.NewQuantity != 13 {
		t.Fatalf("new_quantity want=13 got=%d", applied.NewQuantity)
	}

	//現在在庫の読み出しも13
	resp, body = c.doJSON(ctx, t, http.MethodGet, "/items/"+toStr(item.ID)+"/quantity", bearer, nil)
	requireStatus(t, resp, http.StatusOK, body)

	var qty QuantityDTO
	if err := json.Unmarshal(body, &qty); err != nil {
		t.Fatalf("json.Unmarshal(QuantityDTO) failed: %v body=%s", err, string(body))
	}
	if qty.Quantity != 13 {
		t.Fatalf("quantity want=13 got=%d", qty.Quantity)
	}

	//履歴は新しい順で2件
	resp, body = c.doJSON(ctx, t, http.MethodGet, "/transactions?item_id="+toStr(item.ID), bearer, nil)
	requireStatus(t, resp, http.StatusOK, body)

	var list TransactionListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("json.Unmarshal(TransactionListResponse) failed: %v body=%s", err, string(body))
	}
	if list.Total != 2 {
		t.Fatalf("total want=2 got=%d", list.Total)
	}
	if list.Items[0].Type != "sale" || list.Items[1].Type != "purchase" {
		t.Fatalf("order want=[sale purchase] got=[%s %s]", list.Items[0].Type, list.Items[1].Type)
	}
}

// adjustmentは符号付きdeltaで動く
func Test_TransactionFlow_Adjustment(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	bearer := staffLogin(t, c, ctx)
	item := createItem(t, c, ctx, bearer, 10, 0)

	adjJSON := mustMarshal(t, map[string]interface{}{
		"transaction_type": "adjustment",
		"item_id":          item.ID,
		"delta":            -4,
		"notes":            "stocktake correction",
	})
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/transactions", bearer, adjJSON)
	requireStatus(t, resp, http.StatusCreated, body)

	applied := mustDecodeApply(t, body)
	if applied.NewQuantity != 6 {
		t.Fatalf("new_quantity want=6 got=%d", applied.NewQuantity)
	}
	if applied.Transaction.QuantityDelta != -4 {
		t.Fatalf("quantity_delta want=-4 got=%d", applied.Transaction.QuantityDelta)
	}

	//deltaなしのadjustmentは400
	badJSON := mustMarshal(t, map[string]interface{}{
		"transaction_type": "adjustment",
		"item_id":          item.ID,
	})
	resp, body = c.doJSON(ctx, t, http.MethodPost, "/transactions", bearer, badJSON)
	requireStatus(t, resp, http.StatusBadRequest, body)
}

// 未認証では台帳に触れない
func Test_TransactionFlow_Unauthorized(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	saleJSON := mustMarshal(t, map[string]interface{}{
		"transaction_type": "sale",
		"item_id":          1,
		"quantity":         1,
	})
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/transactions", "", saleJSON)
	requireStatus(t, resp, http.StatusUnauthorized, body)
}
