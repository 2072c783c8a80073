package repository

import (
	"context"

	"gorm.io/gorm"
)

type txCtxKey struct{}

// TxManager runs a function inside a single database transaction. The
// visit services use it so a visit and its order lines commit together.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type txManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) TxManager {
	return &txManager{db: db}
}

// RunInTx begins a transaction and threads it through the context given
// to fn. Repository calls made with that context join the transaction;
// fn returning an error rolls everything back.
func (t *txManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txCtxKey{}, tx))
	})
}

// GetDB returns the transaction carried by ctx, or rootDB when the call
// is not part of one.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txCtxKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return rootDB.WithContext(ctx)
}
