package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bhavisyaji/backend/internal/models"
)

// MemoryLedgerStore is an in-process LedgerStore for tests and local runs.
// Updates for one user serialize on that user's mutex; different users
// proceed in parallel.
type MemoryLedgerStore struct {
	mu           sync.Mutex
	userLocks    map[string]*sync.Mutex
	balances     map[string]int64
	transactions []models.CreditTransaction
	byPaymentID  map[string]int
	byKey        map[string]int
	now          func() time.Time
}

func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{
		userLocks:   make(map[string]*sync.Mutex),
		balances:    make(map[string]int64),
		byPaymentID: make(map[string]int),
		byKey:       make(map[string]int),
		now:         time.Now,
	}
}

func (s *MemoryLedgerStore) ReadBalance(ctx context.Context, userID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[userID], nil
}

func (s *MemoryLedgerStore) AtomicUpdate(ctx context.Context, userID string, fn MutateFunc, build EntryBuilder) (*models.CreditTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	balance := s.balances[userID]
	s.mu.Unlock()

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
	entry.CreatedAt = s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.PaymentID != "" {
		if _, ok := s.byPaymentID[entry.PaymentID]; ok {
			return nil, ErrDuplicateTransaction
		}
	}
	if entry.IdempotencyKey != "" {
		if _, ok := s.byKey[entry.IdempotencyKey]; ok {
			return nil, ErrDuplicateTransaction
		}
	}

	idx := len(s.transactions)
	s.transactions = append(s.transactions, *entry)
	if entry.PaymentID != "" {
		s.byPaymentID[entry.PaymentID] = idx
	}
	if entry.IdempotencyKey != "" {
		s.byKey[entry.IdempotencyKey] = idx
	}
	s.balances[userID] = newBalance

	out := *entry
	return &out, nil
}

func (s *MemoryLedgerStore) FindTransactionByPaymentID(ctx context.Context, paymentID string) (*models.CreditTransaction, error) {
	return s.lookup(ctx, s.byPaymentID, paymentID)
}

func (s *MemoryLedgerStore) FindTransactionByIdempotencyKey(ctx context.Context, key string) (*models.CreditTransaction, error) {
	return s.lookup(ctx, s.byKey, key)
}

func (s *MemoryLedgerStore) ListTransactions(ctx context.Context, userID string, limit int) ([]models.CreditTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.CreditTransaction{}
	for i := len(s.transactions) - 1; i >= 0; i-- {
		if t := s.transactions[i]; t.UserID == userID {
			out = append(out, t)
		}
	}
	// Walked newest-appended first, so equal timestamps keep that order.
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryLedgerStore) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}

func (s *MemoryLedgerStore) lookup(ctx context.Context, index map[string]int, key string) (*models.CreditTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := index[key]
	if !ok {
		return nil, nil
	}
	out := s.transactions[idx]
	return &out, nil
}
