package repository

import (
	"context"

	repo "app/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	items        repo.ItemRepository
	transactions repo.TransactionRepository
	auditLogs    repo.AuditLogRepository
}

func (r *txReposGorm) Items() repo.ItemRepository               { return r.items }
func (r *txReposGorm) Transactions() repo.TransactionRepository { return r.transactions }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository       { return r.auditLogs }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

// fnがerrorを返したらgormがロールバックする。
// 台帳のappendと在庫更新はこの境界の中でだけ行う。
func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			items:        NewItemGormRepository(tx),
			transactions: NewTransactionGormRepository(tx),
			auditLogs:    NewAuditLogGormRepository(tx),
		}
		return fn(r)
	})
}
