package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bhavisyaji/backend/internal/models"
)

// PaymentGateway is the part of RazorpayClient the order and webhook flows use.
type PaymentGateway interface {
	KeyID() string
	WebhookSecret() string
	CreateOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error)
	FetchOrderPayments(ctx context.Context, orderID string) ([]GatewayPayment, error)
	VerifyCheckoutSignature(orderID, paymentID, signature string) bool
}

type OrderService struct {
	gateway  PaymentGateway
	orders   OrderStore
	catalog  *PackageCatalog
	currency string
	logger   *zap.Logger
	now      func() time.Time
}

func NewOrderService(gateway PaymentGateway, orders OrderStore, catalog *PackageCatalog, currency string, logger *zap.Logger) *OrderService {
	if currency == "" {
		currency = "INR"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		gateway:  gateway,
		orders:   orders,
		catalog:  catalog,
		currency: currency,
		logger:   logger.Named("orders"),
		now:      time.Now,
	}
}

func (s *OrderService) KeyID() string { return s.gateway.KeyID() }

// CreatePackageOrder registers an order for one catalog package. The notes
// carry everything the webhook needs to credit the buyer.
func (s *OrderService) CreatePackageOrder(ctx context.Context, userID, packageID string) (*models.PaymentOrder, error) {
	pkg, err := s.catalog.Get(packageID)
	if err != nil {
		return nil, err
	}

	req := OrderRequest{
		Amount:   pkg.AmountMinorUnits(),
		Currency: s.currency,
		Receipt:  newReceipt(),
		Notes: map[string]string{
			"userId":    userID,
			"credits":   strconv.FormatInt(pkg.Credits, 10),
			"packageId": pkg.ID,
		},
	}
	return s.create(ctx, userID, pkg.ID, pkg.Credits, req)
}

// CreateCustomOrder forwards a caller-built order. The amount must match a
// catalog package; userId, credits and packageId notes always come from the
// server side.
func (s *OrderService) CreateCustomOrder(ctx context.Context, userID string, req OrderRequest) (*models.PaymentOrder, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.Currency != "" && !strings.EqualFold(req.Currency, s.currency) {
		return nil, fmt.Errorf("%w: currency %s not accepted", ErrInvalidAmount, req.Currency)
	}
	pkg, err := s.catalog.ForAmount(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %d matches no credit package", ErrInvalidAmount, req.Amount)
	}

	req.Currency = s.currency
	if req.Receipt == "" {
		req.Receipt = newReceipt()
	}
	notes := make(map[string]string, len(req.Notes)+3)
	for k, v := range req.Notes {
		notes[k] = v
	}
	notes["userId"] = userID
	notes["credits"] = strconv.FormatInt(pkg.Credits, 10)
	notes["packageId"] = pkg.ID
	req.Notes = notes

	return s.create(ctx, userID, pkg.ID, pkg.Credits, req)
}

func (s *OrderService) VerifyPayment(orderID, paymentID, signature string) bool {
	return s.gateway.VerifyCheckoutSignature(orderID, paymentID, signature)
}

func (s *OrderService) create(ctx context.Context, userID, packageID string, credits int64, req OrderRequest) (*models.PaymentOrder, error) {
	resp, err := s.gateway.CreateOrder(ctx, req)
	if err != nil {
		s.logger.Error("gateway order creation failed",
			zap.String("user_id", userID),
			zap.String("receipt", req.Receipt),
			zap.Error(err))
		return nil, fmt.Errorf("create gateway order: %w", err)
	}

	now := s.now().UTC()
	order := &models.PaymentOrder{
		OrderID:          resp.ID,
		UserID:           userID,
		PackageID:        packageID,
		Amount:           req.Amount,
		Currency:         req.Currency,
		CreditsRequested: credits,
		Receipt:          req.Receipt,
		Status:           models.OrderCreated,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.orders.SaveOrder(ctx, order); err != nil {
		// The gateway order stands and the webhook credits from its notes,
		// so the caller still gets the order id.
		s.logger.Error("order not persisted",
			zap.String("order_id", order.OrderID),
			zap.Error(err))
	}

	s.logger.Info("order created",
		zap.String("order_id", order.OrderID),
		zap.String("user_id", userID),
		zap.Int64("amount", order.Amount),
		zap.Int64("credits", credits))
	return order, nil
}

// Receipts are capped at 40 characters by the gateway.
func newReceipt() string {
	return "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
