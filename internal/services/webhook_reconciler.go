package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bhavisyaji/backend/internal/audit"
	"github.com/bhavisyaji/backend/internal/models"
)

type WebhookState string

const (
	StateReceived          WebhookState = "RECEIVED"
	StateSignatureVerified WebhookState = "SIGNATURE_VERIFIED"
	StateStatusEvaluated   WebhookState = "STATUS_EVALUATED"
	StateCredited          WebhookState = "CREDITED"
	StateIgnored           WebhookState = "IGNORED"
	StateRejected          WebhookState = "REJECTED"
)

// Result is the outcome of one delivery. Status is the HTTP code to return
// to the processor. A 500 leaves State at STATUS_EVALUATED so that the
// redelivery runs the whole machine again.
type Result struct {
	State         WebhookState
	Status        int
	PaymentID     string
	TransactionID string
	Err           error
}

// PaymentLedger is what the reconciler needs from the credit ledger.
type PaymentLedger interface {
	Credit(ctx context.Context, req CreditRequest) (*CreditResult, error)
	FindByPaymentID(ctx context.Context, paymentID string) (*models.CreditTransaction, error)
}

type ReconcilerOptions struct {
	// CreditStatuses lists the payment statuses that grant credits.
	CreditStatuses []models.PaymentStatus
	LedgerTimeout  time.Duration
}

// WebhookReconciler turns verified payment notifications into exactly one
// credit per payment id.
type WebhookReconciler struct {
	secret         string
	ledger         PaymentLedger
	orders         OrderStore
	creditStatuses map[models.PaymentStatus]bool
	ledgerTimeout  time.Duration
	audit          *audit.Logger
	logger         *zap.Logger
}

func NewWebhookReconciler(secret string, ledger PaymentLedger, orders OrderStore, opts ReconcilerOptions, auditLog *audit.Logger, logger *zap.Logger) *WebhookReconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(logger)
	}
	if len(opts.CreditStatuses) == 0 {
		opts.CreditStatuses = []models.PaymentStatus{models.PaymentCaptured, models.PaymentPaid}
	}
	if opts.LedgerTimeout <= 0 {
		opts.LedgerTimeout = 10 * time.Second
	}
	statuses := make(map[models.PaymentStatus]bool, len(opts.CreditStatuses))
	for _, s := range opts.CreditStatuses {
		// An authorization can still be voided, so it never grants credits.
		if s == models.PaymentAuthorized || s == models.PaymentUnhandled {
			continue
		}
		statuses[s] = true
	}
	return &WebhookReconciler{
		secret:         secret,
		ledger:         ledger,
		orders:         orders,
		creditStatuses: statuses,
		ledgerTimeout:  opts.LedgerTimeout,
		audit:          auditLog,
		logger:         logger.Named("webhook"),
	}
}

// ParseCreditStatuses reads a comma separated status list.
func ParseCreditStatuses(raw string) []models.PaymentStatus {
	var out []models.PaymentStatus
	for _, part := range strings.Split(raw, ",") {
		if s := models.ParsePaymentStatus(part); s != models.PaymentUnhandled {
			out = append(out, s)
		}
	}
	return out
}

// Reconcile runs one delivery through the state machine. rawBody must be the
// exact bytes received on the wire.
func (r *WebhookReconciler) Reconcile(ctx context.Context, rawBody []byte, signature string) Result {
	if !VerifyHMACSHA256(rawBody, signature, r.secret) {
		r.logger.Warn("webhook signature rejected",
			zap.Int("body_bytes", len(rawBody)),
			zap.Bool("signature_present", signature != ""))
		r.audit.LogWebhook("", "", string(StateRejected), ErrInvalidSignature.Error())
		return Result{State: StateRejected, Status: http.StatusBadRequest, Err: ErrInvalidSignature}
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return r.reject("", "", fmt.Errorf("%w: %v", ErrMalformedPayload, err))
	}
	payment := event.PaymentEntity()
	if payment == nil {
		return r.reject("", "", fmt.Errorf("%w: missing payment entity", ErrMalformedPayload))
	}

	status := models.ParsePaymentStatus(payment.Status)
	if !r.IsCreditable(status) {
		r.logger.Info("webhook ignored",
			zap.String("event", event.Event),
			zap.String("payment_id", payment.ID),
			zap.String("status", payment.Status))
		r.audit.LogWebhook(payment.ID, payment.Notes.UserID, string(StateIgnored), "status "+string(status))
		return Result{State: StateIgnored, Status: http.StatusOK, PaymentID: payment.ID}
	}

	return r.CreditPayment(ctx, payment)
}

// IsCreditable reports whether payments in status grant credits.
func (r *WebhookReconciler) IsCreditable(status models.PaymentStatus) bool {
	return r.creditStatuses[status]
}

// CreditPayment validates payment metadata and grants the credits once.
// The caller has already decided that the payment status is creditable.
func (r *WebhookReconciler) CreditPayment(ctx context.Context, payment *models.PaymentEntity) Result {
	userID := strings.TrimSpace(payment.Notes.UserID)
	if payment.ID == "" {
		return r.reject("", userID, fmt.Errorf("%w: missing payment id", ErrMalformedPayload))
	}
	if userID == "" {
		return r.reject(payment.ID, "", fmt.Errorf("%w: missing notes.userId", ErrMalformedPayload))
	}
	credits, err := payment.Notes.Credits.Int()
	if err != nil || credits <= 0 {
		return r.reject(payment.ID, userID, fmt.Errorf("%w: notes.credits must be a positive integer", ErrMalformedPayload))
	}

	ctx, cancel := context.WithTimeout(ctx, r.ledgerTimeout)
	defer cancel()

	if payment.OrderID != "" && r.orders != nil {
		order, err := r.orders.GetOrder(ctx, payment.OrderID)
		switch {
		case errors.Is(err, ErrOrderNotFound):
		case err != nil:
			return r.fail(payment.ID, userID, err)
		default:
			if err := matchOrder(order, payment, userID, credits); err != nil {
				return r.reject(payment.ID, userID, err)
			}
		}
	}

	existing, err := r.ledger.FindByPaymentID(ctx, payment.ID)
	if err != nil {
		return r.fail(payment.ID, userID, err)
	}
	if existing != nil {
		return r.ignoreDuplicate(ctx, payment, existing)
	}

	res, err := r.ledger.Credit(ctx, CreditRequest{
		UserID:         userID,
		Amount:         credits,
		Description:    "purchase",
		IdempotencyKey: payment.ID,
		PaymentID:      payment.ID,
		OrderID:        payment.OrderID,
	})
	if err != nil {
		return r.fail(payment.ID, userID, err)
	}
	if res.Duplicate {
		return r.ignoreDuplicate(ctx, payment, res.Transaction)
	}

	if payment.OrderID != "" {
		r.markOrder(ctx, payment.OrderID, models.OrderPaid)
	}
	r.logger.Info("payment credited",
		zap.String("payment_id", payment.ID),
		zap.String("order_id", payment.OrderID),
		zap.String("user_id", userID),
		zap.Int64("credits", credits),
		zap.String("transaction_id", res.Transaction.ID))
	r.audit.LogWebhook(payment.ID, userID, string(StateCredited), "")
	return Result{State: StateCredited, Status: http.StatusOK, PaymentID: payment.ID, TransactionID: res.Transaction.ID}
}

// matchOrder checks the payment against the order the server registered.
func matchOrder(order *models.PaymentOrder, payment *models.PaymentEntity, userID string, credits int64) error {
	switch {
	case order.UserID != "" && order.UserID != userID:
		return fmt.Errorf("%w: notes.userId differs from order %s", ErrOrderMismatch, order.OrderID)
	case order.CreditsRequested > 0 && order.CreditsRequested != credits:
		return fmt.Errorf("%w: notes.credits %d, order %s requested %d", ErrOrderMismatch, credits, order.OrderID, order.CreditsRequested)
	case order.Amount > 0 && order.Amount != payment.Amount:
		return fmt.Errorf("%w: paid %d, order %s expects %d", ErrOrderMismatch, payment.Amount, order.OrderID, order.Amount)
	}
	return nil
}

func (r *WebhookReconciler) ignoreDuplicate(ctx context.Context, payment *models.PaymentEntity, existing *models.CreditTransaction) Result {
	if payment.OrderID != "" {
		r.markOrder(ctx, payment.OrderID, models.OrderPaid)
	}
	r.logger.Info("duplicate payment delivery",
		zap.String("payment_id", payment.ID),
		zap.String("transaction_id", existing.ID))
	r.audit.LogWebhook(payment.ID, existing.UserID, string(StateIgnored), ErrDuplicatePayment.Error())
	return Result{
		State:         StateIgnored,
		Status:        http.StatusOK,
		PaymentID:     payment.ID,
		TransactionID: existing.ID,
		Err:           ErrDuplicatePayment,
	}
}

func (r *WebhookReconciler) reject(paymentID, userID string, err error) Result {
	r.logger.Warn("webhook payload rejected",
		zap.String("payment_id", paymentID),
		zap.String("user_id", userID),
		zap.Error(err))
	r.audit.LogWebhook(paymentID, userID, string(StateRejected), err.Error())
	return Result{State: StateRejected, Status: http.StatusBadRequest, PaymentID: paymentID, Err: err}
}

func (r *WebhookReconciler) fail(paymentID, userID string, err error) Result {
	if !errors.Is(err, ErrLedgerUnavailable) {
		err = fmt.Errorf("%w: %w", ErrLedgerUnavailable, err)
	}
	r.logger.Error("payment credit failed, awaiting redelivery",
		zap.String("payment_id", paymentID),
		zap.String("user_id", userID),
		zap.Error(err))
	r.audit.LogError(paymentID, userID, err)
	return Result{State: StateStatusEvaluated, Status: http.StatusInternalServerError, PaymentID: paymentID, Err: err}
}

func (r *WebhookReconciler) markOrder(ctx context.Context, orderID string, status models.OrderStatus) {
	if r.orders == nil {
		return
	}
	if err := r.orders.MarkOrder(ctx, orderID, status); err != nil {
		r.logger.Warn("order status not updated",
			zap.String("order_id", orderID),
			zap.String("status", string(status)),
			zap.Error(err))
	}
}
