package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bhavisyaji/backend/internal/models"
)

type MockLLMClient struct {
	mock.Mock
}

func (m *MockLLMClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func chatRequest() models.ChatRequest {
	return models.ChatRequest{
		PersonaContext: "You are Acharya, a Vedic astrologer.",
		ChatHistory:    []models.ChatMessage{{Role: "assistant", Content: "Namaste"}},
		UserMessage:    "What does Saturn mean for me?",
	}
}

func TestChatService_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("debits then replies", func(t *testing.T) {
		ledger, _ := newMemoryLedger()
		_, err := ledger.Credit(ctx, CreditRequest{UserID: "u1", Amount: 3})
		require.NoError(t, err)

		llm := new(MockLLMClient)
		llm.On("Complete", mock.Anything, mock.MatchedBy(func(req CompletionRequest) bool {
			return req.Model == "gpt-3.5-turbo" &&
				req.MaxTokens == 512 &&
				req.Temperature == 0.7 &&
				len(req.Messages) == 3 &&
				req.Messages[0].Role == "system" &&
				req.Messages[2].Content == "What does Saturn mean for me?"
		})).Return("  Patience brings rewards.\n", nil)

		svc := NewChatService(ledger, llm, ChatOptions{}, zap.NewNop())
		reply, err := svc.Send(ctx, "u1", chatRequest())
		require.NoError(t, err)
		assert.Equal(t, "Patience brings rewards.", reply.Message)
		assert.Equal(t, int64(2), reply.Balance)

		balance, _ := ledger.GetBalance(ctx, "u1")
		assert.Equal(t, int64(2), balance)
		llm.AssertExpectations(t)
	})

	t.Run("insufficient balance never reaches the provider", func(t *testing.T) {
		ledger, _ := newMemoryLedger()
		llm := new(MockLLMClient)

		svc := NewChatService(ledger, llm, ChatOptions{MessageCost: 1}, nil)
		_, err := svc.Send(ctx, "u1", chatRequest())
		assert.ErrorIs(t, err, ErrInsufficientBalance)
		llm.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})

	t.Run("provider failure refunds the debit", func(t *testing.T) {
		ledger, store := newMemoryLedger()
		_, err := ledger.Credit(ctx, CreditRequest{UserID: "u1", Amount: 2})
		require.NoError(t, err)

		llm := new(MockLLMClient)
		llm.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("llm provider status 503"))

		svc := NewChatService(ledger, llm, ChatOptions{MessageCost: 2}, nil)
		_, err = svc.Send(ctx, "u1", chatRequest())
		assert.ErrorIs(t, err, ErrLLMUnavailable)

		balance, _ := ledger.GetBalance(ctx, "u1")
		assert.Equal(t, int64(2), balance)

		list, _ := store.ListTransactions(ctx, "u1", 0)
		require.Len(t, list, 3)
		assert.Equal(t, models.TransactionRefund, list[0].Type)
		assert.Equal(t, "chat-refund:"+list[1].ID, list[0].IdempotencyKey)
	})

	t.Run("request overrides defaults", func(t *testing.T) {
		ledger, _ := newMemoryLedger()
		_, err := ledger.Credit(ctx, CreditRequest{UserID: "u1", Amount: 1})
		require.NoError(t, err)

		llm := new(MockLLMClient)
		llm.On("Complete", mock.Anything, mock.MatchedBy(func(req CompletionRequest) bool {
			return req.Model == "gpt-4o-mini" && req.MaxTokens == 256 && req.Temperature == 0.2
		})).Return("ok", nil)

		req := chatRequest()
		req.Model, req.MaxTokens, req.Temperature = "gpt-4o-mini", 256, 0.2
		svc := NewChatService(ledger, llm, ChatOptions{}, nil)
		_, err = svc.Send(ctx, "u1", req)
		assert.NoError(t, err)
		llm.AssertExpectations(t)
	})
}
