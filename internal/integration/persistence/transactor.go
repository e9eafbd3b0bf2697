// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/zakat-tracker/backend/internal/application/adapter"
	domainerror "github.com/zakat-tracker/backend/internal/domain/error"
)

type txKey struct{}

// gormTransactor implements the adapter.Transactor interface.
type gormTransactor struct {
	db *gorm.DB
}

// NewTransactor creates a transactor over db. A nil db yields
// domainerror.ErrStorageUnconfigured from every call.
func NewTransactor(db *gorm.DB) adapter.Transactor {
	return &gormTransactor{
		db: db,
	}
}

// WithinTransaction runs fn in a transaction. Nested calls join the
// transaction already in ctx.
func (t *gormTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	if t.db == nil {
		return domainerror.ErrStorageUnconfigured
	}

	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction carried by ctx, or db.
func conn(ctx context.Context, db *gorm.DB) (*gorm.DB, error) {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx, nil
	}
	if db == nil {
		return nil, domainerror.ErrStorageUnconfigured
	}
	return db.WithContext(ctx), nil
}

// isUniqueViolation matches unique constraint errors from postgres and sqlite.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
