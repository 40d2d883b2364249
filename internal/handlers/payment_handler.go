package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/bhavisyaji/backend/internal/middleware"
	"github.com/bhavisyaji/backend/internal/models"
	"github.com/bhavisyaji/backend/internal/services"
)

type PaymentHandler struct {
	orders    *services.OrderService
	catalog   *services.PackageCatalog
	validator *services.ValidationHelper
	logger    *zap.Logger
}

func NewPaymentHandler(orders *services.OrderService, catalog *services.PackageCatalog, logger *zap.Logger) *PaymentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentHandler{
		orders:    orders,
		catalog:   catalog,
		validator: services.NewValidationHelper(),
		logger:    logger.Named("payments"),
	}
}

// CreateOrderRequest either names a catalog package or carries a raw order.
type CreateOrderRequest struct {
	PackageID string            `json:"packageId,omitempty" example:"standard-pack"`
	Amount    int64             `json:"amount,omitempty" validate:"omitempty,gt=0" example:"49900"`
	Currency  string            `json:"currency,omitempty" validate:"omitempty,len=3" example:"INR"`
	Receipt   string            `json:"receipt,omitempty" validate:"omitempty,max=40"`
	Notes     map[string]string `json:"notes,omitempty"`
}

type CreateOrderResponse struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"keyId"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"orderId" validate:"required"`
	PaymentID string `json:"paymentId" validate:"required"`
	Signature string `json:"signature" validate:"required,hexadecimal"`
}

type VerifyPaymentResponse struct {
	Verified bool `json:"verified"`
}

// ListPackages returns the purchasable credit packages
// @Summary List credit packages
// @Tags Payments
// @Produce json
// @Success 200 {array} models.CreditPackage
// @Router /credit-packages [get]
func (h *PaymentHandler) ListPackages(w http.ResponseWriter, r *http.Request) {
	services.SendJSON(w, http.StatusOK, h.catalog.List())
}

// CreateOrder registers a gateway order for the caller
// @Summary Create payment order
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateOrderRequest true "Package or raw order"
// @Success 200 {object} CreateOrderResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 502 {object} services.ErrorResponse
// @Router /orders [post]
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req CreateOrderRequest
	if !h.validator.DecodeAndValidate(w, r, &req) {
		return
	}

	var (
		order *models.PaymentOrder
		err   error
	)
	if req.PackageID != "" {
		order, err = h.orders.CreatePackageOrder(r.Context(), userID, req.PackageID)
	} else {
		order, err = h.orders.CreateCustomOrder(r.Context(), userID, services.OrderRequest{
			Amount:   req.Amount,
			Currency: req.Currency,
			Receipt:  req.Receipt,
			Notes:    req.Notes,
		})
	}
	if err != nil {
		sendServiceError(w, err)
		return
	}

	services.SendJSON(w, http.StatusOK, CreateOrderResponse{
		OrderID:  order.OrderID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    h.orders.KeyID(),
	})
}

// VerifyPayment checks the checkout signature returned to the browser.
// Credits are granted by the webhook only.
// @Summary Verify checkout signature
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body VerifyPaymentRequest true "Checkout result"
// @Success 200 {object} VerifyPaymentResponse
// @Failure 400 {object} services.ErrorResponse
// @Router /payments/verify [post]
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req VerifyPaymentRequest
	if !h.validator.DecodeAndValidate(w, r, &req) {
		return
	}

	verified := h.orders.VerifyPayment(req.OrderID, req.PaymentID, req.Signature)
	if !verified {
		h.logger.Warn("checkout signature mismatch", zap.String("order_id", req.OrderID), zap.String("payment_id", req.PaymentID))
	}
	services.SendJSON(w, http.StatusOK, VerifyPaymentResponse{Verified: verified})
}
