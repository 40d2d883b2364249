package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/bhavisyaji/backend/internal/models"
)

const transactionColumns = `id, user_id, type, amount, balance_after, description, payment_id, order_id, idempotency_key, created_at`

// PostgresLedgerStore keeps balances in credit_accounts and the log in
// credit_transactions. Mutations serialize on the account row lock.
type PostgresLedgerStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresLedgerStore(db *sql.DB) *PostgresLedgerStore {
	return &PostgresLedgerStore{db: db, now: time.Now}
}

func (s *PostgresLedgerStore) ReadBalance(ctx context.Context, userID string) (int64, error) {
	var balance int64
	err := s.db.QueryRowContext(ctx, `
		SELECT balance
		FROM credit_accounts
		WHERE user_id = $1`, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, classifyStoreError(err)
	}
	return balance, nil
}

func (s *PostgresLedgerStore) AtomicUpdate(ctx context.Context, userID string, fn MutateFunc, build EntryBuilder) (*models.CreditTransaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classifyStoreError(err)
	}
	defer tx.Rollback()

	now := s.now().UTC()
	if err := s.ensureAccount(ctx, tx, userID, now); err != nil {
		return nil, classifyStoreError(err)
	}

	balance, err := s.lockAccount(ctx, tx, userID)
	if err != nil {
		return nil, classifyStoreError(err)
	}

	newBalance, err := fn(balance)
	if err != nil {
		return nil, err
	}
	if newBalance < 0 {
		return nil, ErrInsufficientBalance
	}

	entry := build(newBalance)
	if err := checkEntry(entry, balance, newBalance); err != nil {
		return nil, err
	}
	entry.ID = uuid.NewString()
	entry.UserID = userID
	entry.BalanceAfter = newBalance
	entry.CreatedAt = now

	if err := s.updateBalance(ctx, tx, userID, newBalance, now); err != nil {
		return nil, classifyStoreError(err)
	}
	if err := s.insertTransaction(ctx, tx, entry); err != nil {
		return nil, classifyStoreError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, classifyStoreError(err)
	}
	return entry, nil
}

func (s *PostgresLedgerStore) FindTransactionByPaymentID(ctx context.Context, paymentID string) (*models.CreditTransaction, error) {
	return s.findOne(ctx, `SELECT `+transactionColumns+`
		FROM credit_transactions
		WHERE payment_id = $1
		LIMIT 1`, paymentID)
}

func (s *PostgresLedgerStore) FindTransactionByIdempotencyKey(ctx context.Context, key string) (*models.CreditTransaction, error) {
	return s.findOne(ctx, `SELECT `+transactionColumns+`
		FROM credit_transactions
		WHERE idempotency_key = $1
		LIMIT 1`, key)
}

func (s *PostgresLedgerStore) ListTransactions(ctx context.Context, userID string, limit int) ([]models.CreditTransaction, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+transactionColumns+`
		FROM credit_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, classifyStoreError(err)
	}
	defer rows.Close()

	transactions := []models.CreditTransaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyStoreError(err)
	}
	return transactions, nil
}

func (s *PostgresLedgerStore) ensureAccount(ctx context.Context, tx *sql.Tx, userID string, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO credit_accounts (user_id, balance, updated_at)
		VALUES ($1, 0, $2)
		ON CONFLICT (user_id) DO NOTHING`,
		userID, now)
	return err
}

func (s *PostgresLedgerStore) lockAccount(ctx context.Context, tx *sql.Tx, userID string) (int64, error) {
	var balance int64
	err := tx.QueryRowContext(ctx, `
		SELECT balance
		FROM credit_accounts
		WHERE user_id = $1
		FOR UPDATE`, userID).Scan(&balance)
	return balance, err
}

func (s *PostgresLedgerStore) updateBalance(ctx context.Context, tx *sql.Tx, userID string, balance int64, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE credit_accounts
		SET balance = $1, updated_at = $2
		WHERE user_id = $3`,
		balance, now, userID)
	return err
}

func (s *PostgresLedgerStore) insertTransaction(ctx context.Context, tx *sql.Tx, t *models.CreditTransaction) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO credit_transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.UserID, string(t.Type), t.Amount, t.BalanceAfter, t.Description,
		nullString(t.PaymentID), nullString(t.OrderID), nullString(t.IdempotencyKey), t.CreatedAt)
	return err
}

func (s *PostgresLedgerStore) findOne(ctx context.Context, query string, arg string) (*models.CreditTransaction, error) {
	t, err := scanTransaction(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.CreditTransaction, error) {
	var (
		t                                 models.CreditTransaction
		txType                            string
		paymentID, orderID, idempotencyKey sql.NullString
	)
	err := row.Scan(&t.ID, &t.UserID, &txType, &t.Amount, &t.BalanceAfter, &t.Description,
		&paymentID, &orderID, &idempotencyKey, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, classifyStoreError(err)
	}
	t.Type = models.TransactionType(txType)
	t.PaymentID = paymentID.String
	t.OrderID = orderID.String
	t.IdempotencyKey = idempotencyKey.String
	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// classifyStoreError maps Postgres error codes onto ledger sentinels.
func classifyStoreError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "40001", "40P01":
		return fmt.Errorf("%w: %s", ErrConcurrentModification, pqErr.Message)
	case "23505":
		return fmt.Errorf("%w: %s", ErrDuplicateTransaction, pqErr.Constraint)
	default:
		return err
	}
}
