package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"
)

type TestClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewTestClient(t *testing.T) *TestClient {
	t.Helper()

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New failed: %v", err)
	}

	return &TestClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
		},
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

type UserDTO struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	TokenVersion int64  `json:"token_version"`
	IsActive     bool   `json:"is_active"`
}

type JwtAccessToken struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenVersion int64  `json:"token_version"`
}

type AuthLoginResponse struct {
	User  UserDTO        `json:"user"`
	Token JwtAccessToken `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ItemDTO struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	SKU             string `json:"sku"`
	Quantity        int64  `json:"quantity"`
	UnitPrice       string `json:"unit_price"`
	ReorderLevel    int64  `json:"reorder_level"`
	ReorderQuantity int64  `json:"reorder_quantity"`
}

type QuantityDTO struct {
	ItemID   int64 `json:"item_id"`
	Quantity int64 `json:"quantity"`
}

type TransactionDTO struct {
	ID              int64  `json:"id"`
	Type            string `json:"transaction_type"`
	ItemID          int64  `json:"item_id"`
	Quantity        int64  `json:"quantity"`
	QuantityDelta   int64  `json:"quantity_delta"`
	UnitPrice       string `json:"unit_price"`
	TotalPrice      string `json:"total_price"`
	ReferenceNumber string `json:"reference_number"`
}

type ApplyTransactionResponse struct {
	Transaction TransactionDTO `json:"transaction"`
	NewQuantity int64          `json:"new_quantity"`
}

type TransactionListResponse struct {
	Items []TransactionDTO `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

type ReorderAlertsResponse struct {
	Items []ItemDTO `json:"items"`
	Count int       `json:"count"`
}

type CategoryValueDTO struct {
	CategoryID   *int64 `json:"category_id"`
	CategoryName string `json:"category_name"`
	ItemCount    int64  `json:"item_count"`
	TotalValue   string `json:"total_value"`
}

type InventoryValueResponse struct {
	Categories []CategoryValueDTO `json:"categories"`
	TotalValue string             `json:"total_value"`
}

func (c *TestClient) doJSON(
	ctx context.Context,
	t *testing.T,
	method string,
	path string,
	bearer string,
	bodyBytes []byte,
) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader
	if bodyBytes != nil {
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("http.NewRequest failed: %v", err)
	}

	if bodyBytes != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		t.Fatalf("HTTP.Do failed: %v", err)
	}

	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	return resp, data
}

func requireStatus(t *testing.T, resp *http.Response, want int, body []byte) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status=%d want=%d body=%s", resp.StatusCode, want, string(body))
	}
}

func mustMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	return b
}

func mustDecodeError(t *testing.T, body []byte) ErrorResponse {
	t.Helper()
	var v ErrorResponse
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(ErrorResponse) failed: %v body=%s", err, string(body))
	}
	return v
}

func mustDecodeItem(t *testing.T, body []byte) ItemDTO {
	t.Helper()
	var v ItemDTO
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(ItemDTO) failed: %v body=%s", err, string(body))
	}
	return v
}

func mustDecodeApply(t *testing.T, body []byte) ApplyTransactionResponse {
	t.Helper()
	var v ApplyTransactionResponse
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(ApplyTransactionResponse) failed: %v body=%s", err, string(body))
	}
	return v
}

func toStr(v int64) string {
	return strconv.FormatInt(v, 10)
}

// ユニークなスタッフを登録してログインし、access_tokenを返す
func staffLogin(t *testing.T, c *TestClient, ctx context.Context) string {
	t.Helper()

	email := "e2e-" + time.Now().Format("20060102-150405.000000000") + "@example.com"
	password := "ledger-e2e-secret-1"

	registerJSON := mustMarshal(t, map[string]string{
		"email":     email,
		"full_name": "E2E Staff",
		"password":  password,
	})
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/auth/register", "", registerJSON)
	requireStatus(t, resp, http.StatusCreated, body)

	loginJSON := mustMarshal(t, LoginRequest{Email: email, Password: password})
	resp, body = c.doJSON(ctx, t, http.MethodPost, "/auth/login", "", loginJSON)
	requireStatus(t, resp, http.StatusOK, body)

	var login AuthLoginResponse
	if err := json.Unmarshal(body, &login); err != nil {
		t.Fatalf("json.Unmarshal(AuthLoginResponse) failed: %v body=%s", err, string(body))
	}
	if strings.TrimSpace(login.Token.AccessToken) == "" {
		t.Fatalf("access token is empty: body=%s", string(body))
	}

	return login.Token.AccessToken
}

// ユニークなSKUでアイテムを作る
func createItem(t *testing.T, c *TestClient, ctx context.Context, bearer string, quantity int64, reorderLevel int64) ItemDTO {
	t.Helper()

	suffix := time.Now().Format("20060102-150405.000000000")
	itemJSON := mustMarshal(t, map[string]interface{}{
		"name":             "E2E-Widget-" + suffix,
		"sku":              "E2E-SKU-" + suffix,
		"quantity":         quantity,
		"unit_price":       "3.00",
		"cost_price":       "1.50",
		"reorder_level":    reorderLevel,
		"reorder_quantity": 20,
	})

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/items", bearer, itemJSON)
	requireStatus(t, resp, http.StatusCreated, body)

	return mustDecodeItem(t, body)
}
