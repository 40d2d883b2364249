package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/bhavisyaji/backend/internal/middleware"
	"github.com/bhavisyaji/backend/internal/models"
	"github.com/bhavisyaji/backend/internal/services"
)

type CreditsHandler struct {
	ledger    *services.CreditLedgerService
	validator *services.ValidationHelper
	logger    *zap.Logger
}

func NewCreditsHandler(ledger *services.CreditLedgerService, logger *zap.Logger) *CreditsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreditsHandler{
		ledger:    ledger,
		validator: services.NewValidationHelper(),
		logger:    logger.Named("credits"),
	}
}

type BalanceResponse struct {
	UserID  string `json:"userId"`
	Balance int64  `json:"balance"`
}

type TransactionsResponse struct {
	Transactions []models.CreditTransaction `json:"transactions"`
}

type DebitRequest struct {
	Amount      int64  `json:"amount" validate:"required,gt=0" example:"1"`
	Description string `json:"description" validate:"required,max=200" example:"chat"`
}

// GetBalance returns the caller's credit balance
// @Summary Get credit balance
// @Tags Credits
// @Produce json
// @Security BearerAuth
// @Success 200 {object} BalanceResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /credits/balance [get]
func (h *CreditsHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	balance, err := h.ledger.GetBalance(r.Context(), userID)
	if err != nil {
		h.logger.Error("balance read failed", zap.String("user_id", userID), zap.Error(err))
		sendServiceError(w, err)
		return
	}
	services.SendJSON(w, http.StatusOK, BalanceResponse{UserID: userID, Balance: balance})
}

// ListTransactions returns the caller's credit history, newest first
// @Summary List credit transactions
// @Tags Credits
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum entries (1-100)"
// @Success 200 {object} TransactionsResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /credits/transactions [get]
func (h *CreditsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			services.SendErrorResponse(w, "limit must be between 1 and 100", http.StatusBadRequest, nil)
			return
		}
		limit = n
	}

	transactions, err := h.ledger.ListTransactions(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error("transaction list failed", zap.String("user_id", userID), zap.Error(err))
		sendServiceError(w, err)
		return
	}
	services.SendJSON(w, http.StatusOK, TransactionsResponse{Transactions: transactions})
}

// Debit spends credits on a consumer feature
// @Summary Debit credits
// @Tags Credits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body DebitRequest true "Debit request"
// @Success 200 {object} models.CreditTransaction
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 402 {object} services.ErrorResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /credits/debit [post]
func (h *CreditsHandler) Debit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req DebitRequest
	if !h.validator.DecodeAndValidate(w, r, &req) {
		return
	}

	record, err := h.ledger.Debit(r.Context(), services.DebitRequest{
		UserID:      userID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		sendServiceError(w, err)
		return
	}
	services.SendJSON(w, http.StatusOK, record)
}
