package models

import (
	"time"
)

// TransactionType is the business reason recorded on a credit transaction.
type TransactionType string

const (
	TransactionPurchase TransactionType = "purchase"
	TransactionDeduct   TransactionType = "deduct"
	TransactionRefund   TransactionType = "refund"
)

// CreditAccount is the per-user balance row. Balance is never negative.
type CreditAccount struct {
	UserID    string    `json:"user_id" db:"user_id"`
	Balance   int64     `json:"balance" db:"balance"` // in credits
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreditTransaction is one append-only entry of the credit log.
type CreditTransaction struct {
	ID             string          `json:"id" db:"id"`
	UserID         string          `json:"userId" db:"user_id"`
	Type           TransactionType `json:"type" db:"type"`
	Amount         int64           `json:"amount" db:"amount"` // positive for credit, negative for debit
	BalanceAfter   int64           `json:"balanceAfter" db:"balance_after"`
	Description    string          `json:"description" db:"description"`
	PaymentID      string          `json:"paymentId,omitempty" db:"payment_id"`
	OrderID        string          `json:"orderId,omitempty" db:"order_id"`
	IdempotencyKey string          `json:"-" db:"idempotency_key"`
	CreatedAt      time.Time       `json:"timestamp" db:"created_at"`
}

// LedgerEvent is published after a credit transaction commits.
type LedgerEvent struct {
	TransactionID string          `json:"transaction_id"`
	UserID        string          `json:"user_id"`
	Type          TransactionType `json:"type"`
	Amount        int64           `json:"amount"`
	BalanceAfter  int64           `json:"balance_after"`
	PaymentID     string          `json:"payment_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewLedgerEvent builds the event for a committed transaction.
func NewLedgerEvent(tx *CreditTransaction) LedgerEvent {
	return LedgerEvent{
		TransactionID: tx.ID,
		UserID:        tx.UserID,
		Type:          tx.Type,
		Amount:        tx.Amount,
		BalanceAfter:  tx.BalanceAfter,
		PaymentID:     tx.PaymentID,
		CreatedAt:     tx.CreatedAt,
	}
}
