package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bhavisyaji/backend/internal/models"
)

type MockLedgerStore struct {
	mock.Mock
}

func (m *MockLedgerStore) ReadBalance(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerStore) AtomicUpdate(ctx context.Context, userID string, fn MutateFunc, build EntryBuilder) (*models.CreditTransaction, error) {
	args := m.Called(ctx, userID, fn, build)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CreditTransaction), args.Error(1)
}

func (m *MockLedgerStore) FindTransactionByPaymentID(ctx context.Context, paymentID string) (*models.CreditTransaction, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CreditTransaction), args.Error(1)
}

func (m *MockLedgerStore) FindTransactionByIdempotencyKey(ctx context.Context, key string) (*models.CreditTransaction, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CreditTransaction), args.Error(1)
}

func (m *MockLedgerStore) ListTransactions(ctx context.Context, userID string, limit int) ([]models.CreditTransaction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CreditTransaction), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event models.LedgerEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type fakeNatsConn struct {
	subject string
	data    []byte
	err     error
}

func (f *fakeNatsConn) Publish(subject string, data []byte) error {
	f.subject = subject
	f.data = data
	return f.err
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) KeyID() string {
	return m.Called().String(0)
}

func (m *MockPaymentGateway) WebhookSecret() string {
	return m.Called().String(0)
}

func (m *MockPaymentGateway) CreateOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*OrderResponse), args.Error(1)
}

func (m *MockPaymentGateway) FetchOrderPayments(ctx context.Context, orderID string) ([]GatewayPayment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]GatewayPayment), args.Error(1)
}

func (m *MockPaymentGateway) VerifyCheckoutSignature(orderID, paymentID, signature string) bool {
	return m.Called(orderID, paymentID, signature).Bool(0)
}
