package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhavisyaji/backend/internal/models"
)

var timeFarFuture = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)

var orderRowColumns = []string{"order_id", "user_id", "package_id", "amount", "currency", "credits_requested", "receipt", "status", "created_at", "updated_at"}

func TestPostgresOrderStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	store := NewPostgresOrderStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("save order", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO payment_orders").
			WithArgs("order_1", "u1", "micro-pack", int64(9900), "INR", int64(10), "rcpt_1", "created", now, now).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := store.SaveOrder(ctx, &models.PaymentOrder{
			OrderID: "order_1", UserID: "u1", PackageID: "micro-pack", Amount: 9900, Currency: "INR",
			CreditsRequested: 10, Receipt: "rcpt_1", Status: models.OrderCreated, CreatedAt: now, UpdatedAt: now,
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("mark order never touches paid rows", func(t *testing.T) {
		mock.ExpectExec("UPDATE payment_orders SET status = \\$1, updated_at = \\$2 WHERE order_id = \\$3 AND status <> 'paid'").
			WithArgs("failed", sqlmock.AnyArg(), "order_1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, store.MarkOrder(ctx, "order_1", models.OrderFailed))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get missing order", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM payment_orders WHERE order_id = \\$1").
			WithArgs("order_x").
			WillReturnRows(sqlmock.NewRows(orderRowColumns))

		_, err := store.GetOrder(ctx, "order_x")
		assert.ErrorIs(t, err, ErrOrderNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list pending", func(t *testing.T) {
		cutoff := now.Add(-10 * time.Minute)
		mock.ExpectQuery("SELECT (.+) FROM payment_orders WHERE status = 'created' AND created_at < \\$1 ORDER BY created_at LIMIT \\$2").
			WithArgs(cutoff, int64(50)).
			WillReturnRows(sqlmock.NewRows(orderRowColumns).
				AddRow("order_1", "u1", nil, 9900, "INR", 10, "rcpt_1", "created", now.Add(-time.Hour), now.Add(-time.Hour)))

		orders, err := store.ListPendingOrders(ctx, cutoff, 50)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Empty(t, orders[0].PackageID)
		assert.Equal(t, models.OrderCreated, orders[0].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMemoryOrderStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryOrderStore()
	require.NoError(t, store.SaveOrder(ctx, &models.PaymentOrder{OrderID: "o1", Status: models.OrderCreated}))

	require.NoError(t, store.MarkOrder(ctx, "o1", models.OrderPaid))
	require.NoError(t, store.MarkOrder(ctx, "o1", models.OrderFailed))
	order, err := store.GetOrder(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaid, order.Status)

	assert.NoError(t, store.MarkOrder(ctx, "unknown", models.OrderPaid))
	_, err = store.GetOrder(ctx, "unknown")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
