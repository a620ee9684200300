package handlers

import (
	"log/slog"
	"net/http"

	"github.com/edureach360/leads-api/internal/infra/http/middleware"
	"github.com/edureach360/leads-api/internal/usecase"
)

type ChatHandler struct {
	ChatUC         *usecase.ChatUseCase
	ConversationUC *usecase.GetConversationUseCase
	Logger         *slog.Logger
}

func NewChatHandler(chat *usecase.ChatUseCase, conversation *usecase.GetConversationUseCase, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{ChatUC: chat, ConversationUC: conversation, Logger: logger}
}

// Chat (POST /api/ai/chat)
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var input usecase.ChatInput
	if !decodeJSON(w, r, &input) {
		return
	}

	output, err := h.ChatUC.Execute(r.Context(), input)
	if err != nil {
		if usecase.ErrorCode(err) == usecase.CodeIntegration {
			middleware.RecordIntegrationError("openai")
		}
		writeUseCaseError(w, h.Logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, output)
}

// Conversation (GET /api/ai/conversation?email=)
func (h *ChatHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	output, err := h.ConversationUC.Execute(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeUseCaseError(w, h.Logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, output)
}
