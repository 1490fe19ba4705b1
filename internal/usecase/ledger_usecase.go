package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 在庫移動の入力。
// adjustment だけは Quantity ではなく符号付きの Delta を使う
// （増減の向きを呼び出し側に明示させる）。
type ApplyTransactionInput struct {
	Type            model.TransactionType
	ItemID          int64
	Quantity        int64
	Delta           int64
	UnitPrice       decimal.Decimal
	SupplierID      *int64
	ReferenceNumber string
	Notes           string
}

type ApplyTransactionOutput struct {
	Transaction model.Transaction `json:"transaction"`
	NewQuantity int64             `json:"new_quantity"`
}

// 台帳エンジン。
// 取引の追記と在庫数の更新を1トランザクションで行い、
// 在庫を負にする移動は拒否する。quantityを書くのはここだけ。
type LedgerUsecase struct {
	tx repo.TransactionManager
}

// DI
func NewLedgerUsecase(tx repo.TransactionManager) *LedgerUsecase {
	return &LedgerUsecase{tx: tx}
}

// 在庫移動を適用する。
// 成功時：取引1件の追記＋在庫1回の更新＋監査ログ。
// 失敗時：どれも残らない（全部ロールバック）。
func (u *LedgerUsecase) Apply(ctx context.Context, userID int64, in ApplyTransactionInput) (ApplyTransactionOutput, error) {
	if userID <= 0 {
		return ApplyTransactionOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if !in.Type.Valid() {
		return ApplyTransactionOutput{}, NewHTTPError(http.StatusBadRequest, "invalid transaction_type")
	}
	if in.ItemID <= 0 {
		return ApplyTransactionOutput{}, NewHTTPError(http.StatusBadRequest, "invalid item_id")
	}
	if in.UnitPrice.IsNegative() {
		return ApplyTransactionOutput{}, NewHTTPError(http.StatusBadRequest, "unit_price must be >= 0")
	}

	//符号付きの在庫効果を決める
	var delta int64
	var qty int64

	if in.Type == model.TransactionTypeAdjustment {
		if in.Delta == 0 {
			return ApplyTransactionOutput{}, NewHTTPError(http.StatusBadRequest, "delta required for adjustment")
		}
		delta = in.Delta
		qty = delta
		if qty < 0 {
			qty = -qty
		}
	} else {
		if in.Quantity <= 0 {
			return ApplyTransactionOutput{}, NewHTTPError(http.StatusBadRequest, "quantity must be > 0")
		}
		qty = in.Quantity
		if in.Type.Increases() {
			delta = qty
		} else {
			delta = -qty
		}
	}

	//total_priceは適用時点のスナップショット。後から再計算しない。
	total := in.UnitPrice.Mul(decimal.NewFromInt(qty))

	var out ApplyTransactionOutput

	//追記と在庫更新は必ず同じトランザクション
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//存在チェック（在庫不足と404を区別するため）
		if _, err := r.Items().FindByID(ctx, in.ItemID); err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "item not found")
		} else if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//更新後の在庫はUPDATEが返した値だけを使う。
		//事前SELECTからの足し算は、並走コミットが間に入ると
		//実在庫とズレた値を返してしまう。
		var newQuantity int64

		if delta < 0 {
			//在庫減算（足りないなら false）。
			//WHERE句のガードがDB側で直列化するので、同時実行でも
			//合計が在庫を超える減算は片方しか通らない。
			after, ok, err := r.Items().DecreaseQuantityIfEnough(ctx, in.ItemID, -delta)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusConflict, "insufficient stock")
			}
			newQuantity = after
		} else {
			after, err := r.Items().IncreaseQuantity(ctx, in.ItemID, delta)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			newQuantity = after
		}

		t := model.Transaction{
			Type:            in.Type,
			ItemID:          in.ItemID,
			Quantity:        qty,
			QuantityDelta:   delta,
			UnitPrice:       in.UnitPrice,
			TotalPrice:      total,
			SupplierID:      in.SupplierID,
			UserID:          userID,
			ReferenceNumber: strings.TrimSpace(in.ReferenceNumber),
			Notes:           in.Notes,
		}
		if err := r.Transactions().Append(ctx, &t); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//監査ログ（在庫がどう動いたか）。
		//beforeも更新後の値から逆算する（同一UPDATE由来なので一貫する）。
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  userID,
			Action:       model.AuditActionApplyTransaction,
			ResourceType: model.AuditResourceItem,
			ResourceID:   in.ItemID,
			BeforeJSON:   fmt.Sprintf(`{"quantity":%d}`, newQuantity-delta),
			AfterJSON:    fmt.Sprintf(`{"quantity":%d}`, newQuantity),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = ApplyTransactionOutput{
			Transaction: t,
			NewQuantity: newQuantity,
		}
		return nil
	})

	if err != nil {
		return ApplyTransactionOutput{}, err
	}
	return out, nil
}
