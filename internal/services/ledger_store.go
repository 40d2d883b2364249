package services

import (
	"context"

	"github.com/bhavisyaji/backend/internal/models"
)

// MutateFunc receives the locked balance and returns the new one. Returning
// an error aborts the update without writing anything.
type MutateFunc func(balance int64) (int64, error)

// EntryBuilder produces the log entry for a committed mutation. The store
// fills in ID, UserID, BalanceAfter and CreatedAt.
type EntryBuilder func(newBalance int64) *models.CreditTransaction

// LedgerStore persists credit balances and the append-only transaction log.
type LedgerStore interface {
	// ReadBalance returns 0 for users that have never been credited.
	ReadBalance(ctx context.Context, userID string) (int64, error)
	// AtomicUpdate reads, mutates and logs one user's balance as a single unit.
	AtomicUpdate(ctx context.Context, userID string, fn MutateFunc, build EntryBuilder) (*models.CreditTransaction, error)
	FindTransactionByPaymentID(ctx context.Context, paymentID string) (*models.CreditTransaction, error)
	FindTransactionByIdempotencyKey(ctx context.Context, key string) (*models.CreditTransaction, error)
	ListTransactions(ctx context.Context, userID string, limit int) ([]models.CreditTransaction, error)
}

// checkEntry enforces that every persisted row accounts for exactly the
// balance change it claims.
func checkEntry(entry *models.CreditTransaction, before, after int64) error {
	if entry == nil {
		return errNilEntry
	}
	if entry.Amount != after-before {
		return errEntryMismatch
	}
	return nil
}
