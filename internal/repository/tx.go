package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// TxHelper runs functions inside a transaction with automatic rollback
// on error or panic.
type TxHelper struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewTxHelper creates a transaction helper.
func NewTxHelper(db *pgxpool.Pool, logger *zap.Logger) *TxHelper {
	return &TxHelper{db: db, logger: logger.Named("TxHelper")}
}

// WithTransaction executes fn in a transaction. The transaction commits
// only when fn returns nil; any error or panic rolls back.
func (h *TxHelper) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := h.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				h.logger.Error("Failed to rollback transaction after panic",
					zap.Error(rollbackErr),
					zap.Any("panic", p))
			}
			panic(p) // re-throw panic after rollback
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			h.logger.Error("Failed to rollback transaction",
				zap.Error(rollbackErr),
				zap.NamedError("original_error", err))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
