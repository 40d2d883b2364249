package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/bhavisyaji/backend/internal/services"
)

// statusForLedgerError maps service errors onto HTTP status codes and a
// client-facing message.
func statusForLedgerError(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInsufficientBalance):
		return http.StatusPaymentRequired, "Insufficient credits"
	case errors.Is(err, services.ErrInvalidAmount):
		return http.StatusBadRequest, "Invalid amount"
	case errors.Is(err, services.ErrPackageNotFound):
		return http.StatusNotFound, "Credit package not found"
	case errors.Is(err, services.ErrLLMUnavailable):
		return http.StatusBadGateway, "Chat provider unavailable, credits refunded"
	case errors.Is(err, services.ErrGatewayUnavailable):
		return http.StatusBadGateway, "Payment gateway unavailable"
	case errors.Is(err, services.ErrLedgerUnavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "Credit ledger temporarily unavailable"
	default:
		var gwErr *services.GatewayError
		if errors.As(err, &gwErr) {
			return http.StatusBadGateway, "Payment gateway rejected the request"
		}
		return http.StatusInternalServerError, "Internal server error"
	}
}

func sendServiceError(w http.ResponseWriter, err error) {
	status, message := statusForLedgerError(err)
	services.SendErrorResponse(w, message, status, nil)
}
