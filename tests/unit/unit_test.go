package unit

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
)

// =====================
// Helper: error contains（HTTPErrorの実装詳細に依存しない）
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

// =====================
// LedgerUsecase用のインメモリ台帳。
// WithinTxはmutexで直列化し、fnがerrorを返したら変更を捨てる
// （DBのトランザクションと同じ見え方にする）。
// =====================

type memLedger struct {
	mu     sync.Mutex
	items  map[int64]model.Item
	txs    []model.Transaction
	audits []model.AuditLog

	nextTxID int64

	// Appendを失敗させたいテスト用
	appendErr error
}

func newMemLedger(items ...model.Item) *memLedger {
	m := &memLedger{
		items:    map[int64]model.Item{},
		nextTxID: 1,
	}
	for _, it := range items {
		m.items[it.ID] = it
	}
	return m
}

func (m *memLedger) itemQuantity(id int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id].Quantity
}

func (m *memLedger) txCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.txs)
}

func (m *memLedger) auditCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.audits)
}

func (m *memLedger) lastAudit() model.AuditLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.audits) == 0 {
		return model.AuditLog{}
	}
	return m.audits[len(m.audits)-1]
}

// WithinTxはstaging上でfnを実行して、成功時だけ反映する。
func (m *memLedger) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	staged := &stagedLedger{
		base:  m,
		items: map[int64]model.Item{},
	}
	for id, it := range m.items {
		staged.items[id] = it
	}

	if err := fn(staged); err != nil {
		return err
	}

	//commit
	m.items = staged.items
	m.txs = append(m.txs, staged.txs...)
	m.audits = append(m.audits, staged.audits...)
	return nil
}

type stagedLedger struct {
	base   *memLedger
	items  map[int64]model.Item
	txs    []model.Transaction
	audits []model.AuditLog
}

func (s *stagedLedger) Items() repo.ItemRepository             { return &stagedItemRepo{s} }
func (s *stagedLedger) Transactions() repo.TransactionRepository { return &stagedTxRepo{s} }
func (s *stagedLedger) AuditLogs() repo.AuditLogRepository     { return &stagedAuditRepo{s} }

type stagedItemRepo struct{ s *stagedLedger }

func (r *stagedItemRepo) FindByID(ctx context.Context, id int64) (model.Item, error) {
	it, ok := r.s.items[id]
	if !ok {
		return model.Item{}, repo.ErrNotFound
	}
	return it, nil
}

func (r *stagedItemRepo) IncreaseQuantity(ctx context.Context, id int64, qty int64) (int64, error) {
	it := r.s.items[id]
	it.Quantity += qty
	r.s.items[id] = it
	return it.Quantity, nil
}

func (r *stagedItemRepo) DecreaseQuantityIfEnough(ctx context.Context, id int64, qty int64) (int64, bool, error) {
	it := r.s.items[id]
	if it.Quantity < qty {
		return 0, false, nil
	}
	it.Quantity -= qty
	r.s.items[id] = it
	return it.Quantity, true, nil
}

func (r *stagedItemRepo) List(ctx context.Context, q repo.ItemListQuery) ([]model.Item, int64, error) {
	panic("not used in ledger tests")
}
func (r *stagedItemRepo) FindBySKU(ctx context.Context, sku string) (model.Item, error) {
	panic("not used in ledger tests")
}
func (r *stagedItemRepo) Create(ctx context.Context, item model.Item) (model.Item, error) {
	panic("not used in ledger tests")
}
func (r *stagedItemRepo) Update(ctx context.Context, item model.Item) error {
	panic("not used in ledger tests")
}
func (r *stagedItemRepo) Delete(ctx context.Context, id int64) error {
	panic("not used in ledger tests")
}
func (r *stagedItemRepo) ListBelowReorderLevel(ctx context.Context) ([]model.Item, error) {
	panic("not used in ledger tests")
}
func (r *stagedItemRepo) ValueByCategory(ctx context.Context) ([]repo.CategoryValueRow, error) {
	panic("not used in ledger tests")
}
func (r *stagedItemRepo) CountByCategoryID(ctx context.Context, categoryID int64) (int64, error) {
	panic("not used in ledger tests")
}
func (r *stagedItemRepo) CountBySupplierID(ctx context.Context, supplierID int64) (int64, error) {
	panic("not used in ledger tests")
}

type stagedTxRepo struct{ s *stagedLedger }

func (r *stagedTxRepo) Append(ctx context.Context, tx *model.Transaction) error {
	if r.s.base.appendErr != nil {
		return r.s.base.appendErr
	}
	tx.ID = r.s.base.nextTxID
	r.s.base.nextTxID++
	r.s.txs = append(r.s.txs, *tx)
	return nil
}

func (r *stagedTxRepo) FindByID(ctx context.Context, id int64) (model.Transaction, error) {
	panic("not used in ledger tests")
}
func (r *stagedTxRepo) List(ctx context.Context, q repo.TransactionListQuery) ([]model.Transaction, int64, error) {
	panic("not used in ledger tests")
}
func (r *stagedTxRepo) CountByItemID(ctx context.Context, itemID int64) (int64, error) {
	panic("not used in ledger tests")
}
func (r *stagedTxRepo) CountBySupplierID(ctx context.Context, supplierID int64) (int64, error) {
	panic("not used in ledger tests")
}
func (r *stagedTxRepo) SummarizeByPeriod(ctx context.Context, from, to time.Time) ([]repo.TypeSummaryRow, error) {
	panic("not used in ledger tests")
}

// =====================
// read-committed相当の見え方を作るTxManager。
// FindByIDにはトランザクション開始前の古いスナップショットを返し、
// 在庫更新だけは実際の値に対して行う（SELECTとUPDATEの間に
// 並走コミットが挟まった状況の再現）。
// =====================

type staleSnapshotTx struct {
	inner    *memLedger
	snapshot model.Item
}

func (m staleSnapshotTx) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return m.inner.WithinTx(ctx, func(r repo.TxRepos) error {
		return fn(staleSnapshotRepos{TxRepos: r, snapshot: m.snapshot})
	})
}

type staleSnapshotRepos struct {
	repo.TxRepos
	snapshot model.Item
}

func (s staleSnapshotRepos) Items() repo.ItemRepository {
	return staleSnapshotItems{ItemRepository: s.TxRepos.Items(), snapshot: s.snapshot}
}

type staleSnapshotItems struct {
	repo.ItemRepository
	snapshot model.Item
}

func (s staleSnapshotItems) FindByID(ctx context.Context, id int64) (model.Item, error) {
	return s.snapshot, nil
}

type stagedAuditRepo struct{ s *stagedLedger }

func (r *stagedAuditRepo) Create(ctx context.Context, log model.AuditLog) error {
	r.s.audits = append(r.s.audits, log)
	return nil
}

func (r *stagedAuditRepo) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	panic("not used in ledger tests")
}
