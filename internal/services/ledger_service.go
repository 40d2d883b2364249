package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/bhavisyaji/backend/internal/audit"
	"github.com/bhavisyaji/backend/internal/models"
)

type CreditRequest struct {
	UserID         string
	Amount         int64
	Description    string
	IdempotencyKey string
	PaymentID      string
	OrderID        string
}

type DebitRequest struct {
	UserID      string
	Amount      int64
	Description string
}

// CreditResult carries the persisted record. Duplicate is set when the
// request matched an earlier transaction and nothing was written.
type CreditResult struct {
	Transaction *models.CreditTransaction
	Duplicate   bool
}

type LedgerOptions struct {
	MaxAttempts int
	RetryBase   time.Duration
	RetryJitter time.Duration
}

// CreditLedgerService is the single entry point for balance mutations.
type CreditLedgerService struct {
	store  LedgerStore
	events EventPublisher
	audit  *audit.Logger
	logger *zap.Logger
	opts   LedgerOptions
}

func NewCreditLedgerService(store LedgerStore, opts LedgerOptions, events EventPublisher, auditLog *audit.Logger, logger *zap.Logger) *CreditLedgerService {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = 25 * time.Millisecond
	}
	if events == nil {
		events = NoopEventPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(logger)
	}
	return &CreditLedgerService{
		store:  store,
		events: events,
		audit:  auditLog,
		logger: logger.Named("ledger"),
		opts:   opts,
	}
}

func (s *CreditLedgerService) GetBalance(ctx context.Context, userID string) (int64, error) {
	balance, err := s.store.ReadBalance(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: read balance: %w", ErrLedgerUnavailable, err)
	}
	return balance, nil
}

func (s *CreditLedgerService) Credit(ctx context.Context, req CreditRequest) (*CreditResult, error) {
	return s.credit(ctx, req, models.TransactionPurchase)
}

func (s *CreditLedgerService) Refund(ctx context.Context, req CreditRequest) (*CreditResult, error) {
	return s.credit(ctx, req, models.TransactionRefund)
}

func (s *CreditLedgerService) Debit(ctx context.Context, req DebitRequest) (*models.CreditTransaction, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var record *models.CreditTransaction
	err := s.withRetry(ctx, "debit", func(ctx context.Context) error {
		t, err := s.store.AtomicUpdate(ctx, req.UserID,
			func(balance int64) (int64, error) {
				if balance < req.Amount {
					return 0, ErrInsufficientBalance
				}
				return balance - req.Amount, nil
			},
			func(int64) *models.CreditTransaction {
				return &models.CreditTransaction{
					Type:        models.TransactionDeduct,
					Amount:      -req.Amount,
					Description: req.Description,
				}
			})
		record = t
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrInsufficientBalance) {
			s.audit.LogError("", req.UserID, err)
		}
		return nil, err
	}

	s.audit.LogDebit(record.ID, record.UserID, req.Amount, record.BalanceAfter, record.Description)
	s.publish(ctx, record)
	return record, nil
}

func (s *CreditLedgerService) ListTransactions(ctx context.Context, userID string, limit int) ([]models.CreditTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	transactions, err := s.store.ListTransactions(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list transactions: %w", ErrLedgerUnavailable, err)
	}
	return transactions, nil
}

func (s *CreditLedgerService) FindByPaymentID(ctx context.Context, paymentID string) (*models.CreditTransaction, error) {
	t, err := s.store.FindTransactionByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("%w: find by payment id: %w", ErrLedgerUnavailable, err)
	}
	return t, nil
}

func (s *CreditLedgerService) credit(ctx context.Context, req CreditRequest, txType models.TransactionType) (*CreditResult, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = req.PaymentID
	}

	existing, err := s.findExisting(ctx, req)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Info("duplicate credit suppressed",
			zap.String("user_id", req.UserID),
			zap.String("idempotency_key", req.IdempotencyKey),
			zap.String("transaction_id", existing.ID))
		return &CreditResult{Transaction: existing, Duplicate: true}, nil
	}

	var record *models.CreditTransaction
	err = s.withRetry(ctx, string(txType), func(ctx context.Context) error {
		t, err := s.store.AtomicUpdate(ctx, req.UserID,
			func(balance int64) (int64, error) {
				if balance > math.MaxInt64-req.Amount {
					return 0, fmt.Errorf("%w: balance would overflow", ErrInvalidAmount)
				}
				return balance + req.Amount, nil
			},
			func(int64) *models.CreditTransaction {
				return &models.CreditTransaction{
					Type:           txType,
					Amount:         req.Amount,
					Description:    req.Description,
					PaymentID:      req.PaymentID,
					OrderID:        req.OrderID,
					IdempotencyKey: req.IdempotencyKey,
				}
			})
		record = t
		return err
	})
	if errors.Is(err, ErrDuplicateTransaction) {
		// Lost the race against a concurrent delivery of the same key.
		existing, findErr := s.findExisting(ctx, req)
		if findErr != nil {
			return nil, findErr
		}
		if existing != nil {
			return &CreditResult{Transaction: existing, Duplicate: true}, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrLedgerUnavailable, err)
	}
	if err != nil {
		s.audit.LogError(req.PaymentID, req.UserID, err)
		return nil, err
	}

	s.audit.LogCredit(record.ID, record.UserID, record.Amount, record.BalanceAfter, record.PaymentID)
	s.publish(ctx, record)
	return &CreditResult{Transaction: record}, nil
}

func (s *CreditLedgerService) findExisting(ctx context.Context, req CreditRequest) (*models.CreditTransaction, error) {
	if req.PaymentID != "" {
		t, err := s.store.FindTransactionByPaymentID(ctx, req.PaymentID)
		if err != nil {
			return nil, fmt.Errorf("%w: find by payment id: %w", ErrLedgerUnavailable, err)
		}
		if t != nil {
			return t, nil
		}
	}
	if req.IdempotencyKey != "" {
		t, err := s.store.FindTransactionByIdempotencyKey(ctx, req.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("%w: find by idempotency key: %w", ErrLedgerUnavailable, err)
		}
		return t, nil
	}
	return nil, nil
}

// withRetry retries fn while the store reports contention. Domain errors
// pass through; every other failure is reported as ErrLedgerUnavailable.
func (s *CreditLedgerService) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	b := retry.NewExponential(s.opts.RetryBase)
	if s.opts.RetryJitter > 0 {
		b = retry.WithJitter(s.opts.RetryJitter, b)
	}
	b = retry.WithMaxRetries(uint64(s.opts.MaxAttempts-1), b)

	attempts := 0
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempts++
		err := fn(ctx)
		if errors.Is(err, ErrConcurrentModification) {
			s.logger.Debug("ledger contention, retrying",
				zap.String("op", op),
				zap.Int("attempt", attempts),
				zap.Error(err))
			return retry.RetryableError(err)
		}
		return err
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInsufficientBalance),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrDuplicateTransaction):
		return err
	case errors.Is(err, ErrConcurrentModification):
		s.logger.Warn("ledger retries exhausted", zap.String("op", op), zap.Int("attempts", attempts))
		return fmt.Errorf("%w: %s gave up after %d attempts: %w", ErrLedgerUnavailable, op, attempts, err)
	default:
		return fmt.Errorf("%w: %s: %w", ErrLedgerUnavailable, op, err)
	}
}

func (s *CreditLedgerService) publish(ctx context.Context, t *models.CreditTransaction) {
	if err := s.events.Publish(ctx, models.NewLedgerEvent(t)); err != nil {
		s.logger.Warn("ledger event not published",
			zap.String("transaction_id", t.ID),
			zap.Error(err))
	}
}
