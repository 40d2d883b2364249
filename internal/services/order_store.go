package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/bhavisyaji/backend/internal/models"
)

// OrderStore persists payment orders created through the gateway.
type OrderStore interface {
	SaveOrder(ctx context.Context, order *models.PaymentOrder) error
	GetOrder(ctx context.Context, orderID string) (*models.PaymentOrder, error)
	// MarkOrder moves an order to status. A paid order never changes again;
	// unknown order ids are ignored.
	MarkOrder(ctx context.Context, orderID string, status models.OrderStatus) error
	ListPendingOrders(ctx context.Context, createdBefore time.Time, limit int) ([]models.PaymentOrder, error)
}

const orderColumns = `order_id, user_id, package_id, amount, currency, credits_requested, receipt, status, created_at, updated_at`

type PostgresOrderStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db, now: time.Now}
}

func (s *PostgresOrderStore) SaveOrder(ctx context.Context, o *models.PaymentOrder) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payment_orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.OrderID, o.UserID, nullString(o.PackageID), o.Amount, o.Currency, o.CreditsRequested,
		o.Receipt, string(o.Status), o.CreatedAt, o.UpdatedAt)
	return err
}

func (s *PostgresOrderStore) GetOrder(ctx context.Context, orderID string) (*models.PaymentOrder, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx, `SELECT `+orderColumns+`
		FROM payment_orders
		WHERE order_id = $1`, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

func (s *PostgresOrderStore) MarkOrder(ctx context.Context, orderID string, status models.OrderStatus) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE payment_orders
		SET status = $1, updated_at = $2
		WHERE order_id = $3 AND status <> 'paid'`,
		string(status), s.now().UTC(), orderID)
	return err
}

func (s *PostgresOrderStore) ListPendingOrders(ctx context.Context, createdBefore time.Time, limit int) ([]models.PaymentOrder, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+orderColumns+`
		FROM payment_orders
		WHERE status = 'created' AND created_at < $1
		ORDER BY created_at
		LIMIT $2`, createdBefore, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.PaymentOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func scanOrder(row rowScanner) (*models.PaymentOrder, error) {
	var (
		o         models.PaymentOrder
		packageID sql.NullString
		status    string
	)
	err := row.Scan(&o.OrderID, &o.UserID, &packageID, &o.Amount, &o.Currency, &o.CreditsRequested,
		&o.Receipt, &status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.PackageID = packageID.String
	o.Status = models.OrderStatus(status)
	return &o, nil
}

type MemoryOrderStore struct {
	mu     sync.Mutex
	orders map[string]models.PaymentOrder
	now    func() time.Time
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: make(map[string]models.PaymentOrder), now: time.Now}
}

func (s *MemoryOrderStore) SaveOrder(_ context.Context, o *models.PaymentOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.OrderID] = *o
	return nil
}

func (s *MemoryOrderStore) GetOrder(_ context.Context, orderID string) (*models.PaymentOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return &o, nil
}

func (s *MemoryOrderStore) MarkOrder(_ context.Context, orderID string, status models.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.Status == models.OrderPaid {
		return nil
	}
	o.Status = status
	o.UpdatedAt = s.now().UTC()
	s.orders[orderID] = o
	return nil
}

func (s *MemoryOrderStore) ListPendingOrders(_ context.Context, createdBefore time.Time, limit int) ([]models.PaymentOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []models.PaymentOrder
	for _, o := range s.orders {
		if o.Status == models.OrderCreated && o.CreatedAt.Before(createdBefore) {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.Before(orders[j].CreatedAt) })
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}
