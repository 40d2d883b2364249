package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRazorpayClient_CreateOrder(t *testing.T) {
	t.Run("posts order with basic auth", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/orders", r.URL.Path)
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "rzp_test_key", user)
			assert.Equal(t, "key_secret", pass)

			var req OrderRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, int64(9900), req.Amount)
			assert.Equal(t, "INR", req.Currency)
			assert.Equal(t, "u1", req.Notes["userId"])

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"id": "order_1", "amount": req.Amount, "currency": req.Currency, "receipt": req.Receipt, "status": "created",
			})
		}))
		defer server.Close()

		client := NewRazorpayClient(RazorpayConfig{KeyID: "rzp_test_key", KeySecret: "key_secret", BaseURL: server.URL})
		order, err := client.CreateOrder(context.Background(), OrderRequest{
			Amount: 9900, Currency: "INR", Receipt: "rcpt_1", Notes: map[string]string{"userId": "u1", "credits": "10"},
		})
		require.NoError(t, err)
		assert.Equal(t, "order_1", order.ID)
		assert.Equal(t, int64(9900), order.Amount)
	})

	t.Run("client errors are terminal", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount too small"}}`))
		}))
		defer server.Close()

		client := NewRazorpayClient(RazorpayConfig{KeyID: "k", KeySecret: "s", BaseURL: server.URL})
		_, err := client.CreateOrder(context.Background(), OrderRequest{Amount: 1, Currency: "INR"})
		require.Error(t, err)

		var gwErr *GatewayError
		require.True(t, errors.As(err, &gwErr))
		assert.Equal(t, "BAD_REQUEST_ERROR", gwErr.Code)
		assert.False(t, IsRetryableGatewayError(err))
		assert.NotErrorIs(t, err, ErrGatewayUnavailable)
	})

	t.Run("server errors are retryable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewRazorpayClient(RazorpayConfig{KeyID: "k", KeySecret: "s", BaseURL: server.URL})
		_, err := client.CreateOrder(context.Background(), OrderRequest{Amount: 100, Currency: "INR"})
		assert.ErrorIs(t, err, ErrGatewayUnavailable)
		assert.True(t, IsRetryableGatewayError(err))
	})
}

func TestRazorpayClient_FetchOrderPayments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/orders/order_1/payments", r.URL.Path)
		w.Write([]byte(`{"entity":"collection","count":2,"items":[
			{"id":"pay_1","order_id":"order_1","status":"failed","amount":9900,"currency":"INR","notes":{"userId":"u1","credits":"10"}},
			{"id":"pay_2","order_id":"order_1","status":"captured","amount":9900,"currency":"INR","notes":{"userId":"u1","credits":10}}
		]}`))
	}))
	defer server.Close()

	client := NewRazorpayClient(RazorpayConfig{KeyID: "k", KeySecret: "s", BaseURL: server.URL})
	payments, err := client.FetchOrderPayments(context.Background(), "order_1")
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, "captured", payments[1].Status)

	credits, err := payments[1].Notes.Credits.Int()
	require.NoError(t, err)
	assert.Equal(t, int64(10), credits)
}

func TestRazorpayClient_VerifyCheckoutSignature(t *testing.T) {
	client := NewRazorpayClient(RazorpayConfig{KeyID: "k", KeySecret: "key_secret"})
	valid := SignHMACSHA256([]byte("order_1|pay_1"), "key_secret")

	tests := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
		want      bool
	}{
		{"valid signature", "order_1", "pay_1", valid, true},
		{"swapped ids", "pay_1", "order_1", valid, false},
		{"not hex", "order_1", "pay_1", "zz-not-hex", false},
		{"empty signature", "order_1", "pay_1", "", false},
		{"missing order", "", "pay_1", valid, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, client.VerifyCheckoutSignature(tt.orderID, tt.paymentID, tt.signature))
		})
	}

	t.Run("no secret configured", func(t *testing.T) {
		empty := NewRazorpayClient(RazorpayConfig{})
		assert.False(t, empty.VerifyCheckoutSignature("order_1", "pay_1", valid))
	})
}

func TestIsRetryableGatewayError(t *testing.T) {
	assert.False(t, IsRetryableGatewayError(nil))
	assert.True(t, IsRetryableGatewayError(&GatewayError{StatusCode: http.StatusTooManyRequests}))
	assert.True(t, IsRetryableGatewayError(&GatewayError{StatusCode: http.StatusServiceUnavailable}))
	assert.False(t, IsRetryableGatewayError(&GatewayError{StatusCode: http.StatusUnauthorized}))
	assert.True(t, IsRetryableGatewayError(context.DeadlineExceeded))
	assert.False(t, IsRetryableGatewayError(errors.New("plain")))
}
