package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bhavisyaji/backend/internal/middleware"
	"github.com/bhavisyaji/backend/internal/services"
)

func newTestLedger() *services.CreditLedgerService {
	return services.NewCreditLedgerService(services.NewMemoryLedgerStore(), services.LedgerOptions{}, nil, nil, zap.NewNop())
}

func seedCredits(t *testing.T, ledger *services.CreditLedgerService, userID string, amount int64) {
	t.Helper()
	_, err := ledger.Credit(context.Background(), services.CreditRequest{
		UserID:      userID,
		Amount:      amount,
		Description: "purchase",
		PaymentID:   "pay_seed_" + userID,
	})
	require.NoError(t, err)
}

// authedRequest builds a request as if the auth middleware had admitted userID.
func authedRequest(method, target, userID string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	return req
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}
