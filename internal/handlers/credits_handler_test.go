package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhavisyaji/backend/internal/models"
	"github.com/bhavisyaji/backend/internal/services"
)

func TestCreditsHandler_GetBalance(t *testing.T) {
	ledger := newTestLedger()
	seedCredits(t, ledger, "u1", 30)
	h := NewCreditsHandler(ledger, nil)

	t.Run("returns balance", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.GetBalance(rec, authedRequest(http.MethodGet, "/api/v1/credits/balance", "u1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[BalanceResponse](t, rec)
		assert.Equal(t, "u1", resp.UserID)
		assert.Equal(t, int64(30), resp.Balance)
	})

	t.Run("unknown user has zero", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.GetBalance(rec, authedRequest(http.MethodGet, "/api/v1/credits/balance", "nobody", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(0), decodeBody[BalanceResponse](t, rec).Balance)
	})

	t.Run("requires user", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.GetBalance(rec, authedRequest(http.MethodGet, "/api/v1/credits/balance", "", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCreditsHandler_Debit(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantAfter  int64
	}{
		{"spends credits", DebitRequest{Amount: 3, Description: "chat"}, http.StatusOK, 2},
		{"insufficient balance", DebitRequest{Amount: 6, Description: "chat"}, http.StatusPaymentRequired, 5},
		{"zero amount", DebitRequest{Amount: 0, Description: "chat"}, http.StatusBadRequest, 5},
		{"negative amount", DebitRequest{Amount: -1, Description: "chat"}, http.StatusBadRequest, 5},
		{"missing description", DebitRequest{Amount: 1}, http.StatusBadRequest, 5},
		{"unknown field", `{"amount":1,"description":"chat","userId":"u2"}`, http.StatusBadRequest, 5},
		{"malformed json", `{"amount":`, http.StatusBadRequest, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := newTestLedger()
			seedCredits(t, ledger, "u1", 5)
			h := NewCreditsHandler(ledger, nil)

			rec := httptest.NewRecorder()
			h.Debit(rec, authedRequest(http.MethodPost, "/api/v1/credits/debit", "u1", tt.body))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				tx := decodeBody[models.CreditTransaction](t, rec)
				assert.Equal(t, models.TransactionDeduct, tx.Type)
				assert.Equal(t, tt.wantAfter, tx.BalanceAfter)
			}
			if tt.wantStatus == http.StatusPaymentRequired {
				assert.Equal(t, "Insufficient credits", decodeBody[services.ErrorResponse](t, rec).Error)
			}

			rec = httptest.NewRecorder()
			h.GetBalance(rec, authedRequest(http.MethodGet, "/api/v1/credits/balance", "u1", nil))
			assert.Equal(t, tt.wantAfter, decodeBody[BalanceResponse](t, rec).Balance)
		})
	}
}

func TestCreditsHandler_ListTransactions(t *testing.T) {
	ledger := newTestLedger()
	seedCredits(t, ledger, "u1", 10)
	h := NewCreditsHandler(ledger, nil)

	rec := httptest.NewRecorder()
	h.Debit(rec, authedRequest(http.MethodPost, "/api/v1/credits/debit", "u1", DebitRequest{Amount: 4, Description: "chat"}))
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("newest first", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ListTransactions(rec, authedRequest(http.MethodGet, "/api/v1/credits/transactions", "u1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		list := decodeBody[TransactionsResponse](t, rec).Transactions
		require.Len(t, list, 2)
		assert.Equal(t, models.TransactionDeduct, list[0].Type)
		assert.Equal(t, models.TransactionPurchase, list[1].Type)
	})

	t.Run("limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ListTransactions(rec, authedRequest(http.MethodGet, "/api/v1/credits/transactions?limit=1", "u1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeBody[TransactionsResponse](t, rec).Transactions, 1)
	})

	for _, raw := range []string{"0", "101", "abc", "-5"} {
		t.Run("rejects limit "+raw, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ListTransactions(rec, authedRequest(http.MethodGet, "/api/v1/credits/transactions?limit="+raw, "u1", nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
