package handlers

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/bhavisyaji/backend/internal/services"
)

const maxWebhookBodyBytes = 1 << 20

type WebhookHandler struct {
	reconciler *services.WebhookReconciler
	logger     *zap.Logger
}

func NewWebhookHandler(reconciler *services.WebhookReconciler, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{reconciler: reconciler, logger: logger.Named("webhook")}
}

type WebhookResponse struct {
	Status        string `json:"status"`
	TransactionID string `json:"transactionId,omitempty"`
}

// HandlePayment reconciles one payment notification from the processor
// @Summary Payment webhook
// @Description Verifies the HMAC signature over the raw body and credits the payment exactly once
// @Tags Payments
// @Accept json
// @Produce json
// @Param X-Razorpay-Signature header string true "Hex HMAC-SHA256 of the raw body"
// @Success 200 {object} WebhookResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /payments/webhook [post]
func (h *WebhookHandler) HandlePayment(w http.ResponseWriter, r *http.Request) {
	// The signature covers these exact bytes; nothing may decode them first.
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	signature := r.Header.Get("X-Razorpay-Signature")
	if signature == "" {
		signature = r.Header.Get("X-Signature")
	}

	res := h.reconciler.Reconcile(r.Context(), body, signature)
	switch res.Status {
	case http.StatusOK:
		services.SendJSON(w, http.StatusOK, WebhookResponse{Status: string(res.State), TransactionID: res.TransactionID})
	case http.StatusBadRequest:
		services.SendErrorResponse(w, res.Err.Error(), http.StatusBadRequest, nil)
	default:
		h.logger.Error("webhook processing failed",
			zap.String("request_id", r.Header.Get("X-Request-Id")),
			zap.String("payment_id", res.PaymentID),
			zap.Error(res.Err))
		services.SendErrorResponse(w, "Temporary failure, retry later", res.Status, nil)
	}
}
