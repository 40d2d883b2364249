package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/bhavisyaji/backend/internal/middleware"
	"github.com/bhavisyaji/backend/internal/models"
	"github.com/bhavisyaji/backend/internal/services"
)

type ChatHandler struct {
	chat      *services.ChatService
	validator *services.ValidationHelper
	logger    *zap.Logger
}

func NewChatHandler(chat *services.ChatService, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{
		chat:      chat,
		validator: services.NewValidationHelper(),
		logger:    logger.Named("chat"),
	}
}

// Send bills one message and returns the astrologer's reply
// @Summary Send chat message
// @Description Debits the message cost before calling the LLM; refunds if the provider fails
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ChatRequest true "Chat message"
// @Success 200 {object} models.ChatReply
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 402 {object} services.ErrorResponse
// @Failure 502 {object} services.ErrorResponse
// @Router /chat [post]
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req models.ChatRequest
	if !h.validator.DecodeAndValidate(w, r, &req) {
		return
	}

	reply, err := h.chat.Send(r.Context(), userID, req)
	if err != nil {
		if !errors.Is(err, services.ErrInsufficientBalance) {
			h.logger.Error("chat message failed", zap.String("user_id", userID), zap.Error(err))
		}
		sendServiceError(w, err)
		return
	}
	services.SendJSON(w, http.StatusOK, reply)
}
