package services

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bhavisyaji/backend/internal/models"
)

type ReconciliationOptions struct {
	Interval    time.Duration
	BatchSize   int
	MinAge      time.Duration
	Workers     int
	OrderExpiry time.Duration
}

// ReconciliationWorker polls the gateway for orders whose webhook never
// arrived and credits their captured payments through the webhook path.
type ReconciliationWorker struct {
	orders     OrderStore
	gateway    PaymentGateway
	reconciler *WebhookReconciler
	opts       ReconciliationOptions
	logger     *zap.Logger
	now        func() time.Time
}

func NewReconciliationWorker(orders OrderStore, gateway PaymentGateway, reconciler *WebhookReconciler, opts ReconciliationOptions, logger *zap.Logger) *ReconciliationWorker {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Minute
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.MinAge <= 0 {
		opts.MinAge = 10 * time.Minute
	}
	if opts.Workers <= 0 {
		opts.Workers = 5
	}
	if opts.OrderExpiry <= 0 {
		opts.OrderExpiry = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconciliationWorker{
		orders:     orders,
		gateway:    gateway,
		reconciler: reconciler,
		opts:       opts,
		logger:     logger.Named("reconciler"),
		now:        time.Now,
	}
}

// Start blocks until ctx is cancelled.
func (w *ReconciliationWorker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()
	w.logger.Info("reconciliation worker started", zap.Duration("interval", w.opts.Interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("reconciliation worker stopped")
			return nil
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce sweeps one batch of stale orders and returns how many were credited.
func (w *ReconciliationWorker) RunOnce(ctx context.Context) int {
	orders, err := w.orders.ListPendingOrders(ctx, w.now().Add(-w.opts.MinAge), w.opts.BatchSize)
	if err != nil {
		w.logger.Error("list pending orders", zap.Error(err))
		return 0
	}
	if len(orders) == 0 {
		return 0
	}
	w.logger.Info("reconciling stale orders", zap.Int("count", len(orders)))

	jobs := make(chan models.PaymentOrder, len(orders))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		credited int
	)
	for i := 0; i < w.opts.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for order := range jobs {
				n, err := w.syncOrder(ctx, order)
				if err != nil {
					w.logger.Warn("order reconciliation failed",
						zap.Int("worker", id),
						zap.String("order_id", order.OrderID),
						zap.Error(err))
				}
				mu.Lock()
				credited += n
				mu.Unlock()
			}
		}(i)
	}
	for _, order := range orders {
		jobs <- order
	}
	close(jobs)
	wg.Wait()

	return credited
}

func (w *ReconciliationWorker) syncOrder(ctx context.Context, order models.PaymentOrder) (int, error) {
	payments, err := w.gateway.FetchOrderPayments(ctx, order.OrderID)
	if err != nil {
		return 0, fmt.Errorf("fetch payments: %w", err)
	}

	credited := 0
	settled := false
	for i := range payments {
		p := payments[i]
		if !w.reconciler.IsCreditable(models.ParsePaymentStatus(p.Status)) {
			continue
		}
		if p.OrderID == "" {
			p.OrderID = order.OrderID
		}
		if p.Notes.UserID == "" {
			p.Notes.UserID = order.UserID
		}
		if p.Notes.Credits == "" {
			p.Notes.Credits = models.NoteValue(strconv.FormatInt(order.CreditsRequested, 10))
		}

		res := w.reconciler.CreditPayment(ctx, &p)
		switch {
		case res.State == StateCredited:
			credited++
			settled = true
		case res.State == StateIgnored:
			settled = true
		case res.Status == http.StatusInternalServerError:
			return credited, res.Err
		default:
			w.logger.Warn("captured payment not creditable",
				zap.String("order_id", order.OrderID),
				zap.String("payment_id", p.ID),
				zap.Error(res.Err))
		}
	}

	if !settled && w.now().Sub(order.CreatedAt) > w.opts.OrderExpiry {
		if err := w.orders.MarkOrder(ctx, order.OrderID, models.OrderFailed); err != nil {
			return credited, fmt.Errorf("expire order: %w", err)
		}
		w.logger.Info("order expired without capture", zap.String("order_id", order.OrderID))
	}
	return credited, nil
}
