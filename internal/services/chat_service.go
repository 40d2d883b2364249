package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bhavisyaji/backend/internal/models"
)

type ChatOptions struct {
	MessageCost        int64
	DefaultModel       string
	DefaultMaxTokens   int
	DefaultTemperature float64
}

// ChatLedger is the slice of the credit ledger the chat proxy spends from.
type ChatLedger interface {
	Debit(ctx context.Context, req DebitRequest) (*models.CreditTransaction, error)
	Refund(ctx context.Context, req CreditRequest) (*CreditResult, error)
}

// ChatService bills one credit-priced message and forwards it to the LLM.
// The provider is only called after the debit has committed.
type ChatService struct {
	ledger ChatLedger
	llm    LLMClient
	opts   ChatOptions
	logger *zap.Logger
}

func NewChatService(ledger ChatLedger, llm LLMClient, opts ChatOptions, logger *zap.Logger) *ChatService {
	if opts.MessageCost <= 0 {
		opts.MessageCost = 1
	}
	if opts.DefaultModel == "" {
		opts.DefaultModel = "gpt-3.5-turbo"
	}
	if opts.DefaultMaxTokens <= 0 {
		opts.DefaultMaxTokens = 512
	}
	if opts.DefaultTemperature <= 0 {
		opts.DefaultTemperature = 0.7
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{ledger: ledger, llm: llm, opts: opts, logger: logger.Named("chat")}
}

func (s *ChatService) Send(ctx context.Context, userID string, req models.ChatRequest) (*models.ChatReply, error) {
	debit, err := s.ledger.Debit(ctx, DebitRequest{
		UserID:      userID,
		Amount:      s.opts.MessageCost,
		Description: "chat",
	})
	if err != nil {
		return nil, err
	}

	reply, err := s.llm.Complete(ctx, s.completionRequest(req))
	if err != nil {
		s.logger.Error("llm call failed, refunding",
			zap.String("user_id", userID),
			zap.String("debit_id", debit.ID),
			zap.Error(err))
		return nil, s.refund(ctx, userID, debit, err)
	}

	return &models.ChatReply{
		Message:       strings.TrimSpace(reply),
		TransactionID: debit.ID,
		Balance:       debit.BalanceAfter,
	}, nil
}

func (s *ChatService) completionRequest(req models.ChatRequest) CompletionRequest {
	out := CompletionRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if out.Model == "" {
		out.Model = s.opts.DefaultModel
	}
	if out.MaxTokens <= 0 {
		out.MaxTokens = s.opts.DefaultMaxTokens
	}
	if out.Temperature <= 0 {
		out.Temperature = s.opts.DefaultTemperature
	}

	out.Messages = make([]models.ChatMessage, 0, len(req.ChatHistory)+2)
	out.Messages = append(out.Messages, models.ChatMessage{Role: "system", Content: req.PersonaContext})
	out.Messages = append(out.Messages, req.ChatHistory...)
	out.Messages = append(out.Messages, models.ChatMessage{Role: "user", Content: req.UserMessage})
	return out
}

func (s *ChatService) refund(ctx context.Context, userID string, debit *models.CreditTransaction, cause error) error {
	// The caller's context may be what failed; the refund must still land.
	refundCtx := context.WithoutCancel(ctx)
	_, err := s.ledger.Refund(refundCtx, CreditRequest{
		UserID:         userID,
		Amount:         -debit.Amount,
		Description:    "chat refund",
		IdempotencyKey: "chat-refund:" + debit.ID,
	})
	if err != nil {
		s.logger.Error("chat refund failed",
			zap.String("user_id", userID),
			zap.String("debit_id", debit.ID),
			zap.Error(err))
		return fmt.Errorf("%w: %w (refund failed: %v)", ErrLLMUnavailable, cause, err)
	}
	return fmt.Errorf("%w: %w", ErrLLMUnavailable, cause)
}
