package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"mentorLinkAPI/internal/types/chat"
	"mentorLinkAPI/middleware"
	"mentorLinkAPI/services"
)

type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// POST /api/v1/chats/initialize
func (h *ChatHandler) InitializeChat(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	callerUID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req chat.InitializeChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	chatID, err := h.chatService.InitializeChat(ctx, callerUID, req.TargetUID)
	if err != nil {
		respondWithServiceError(w, "InitializeChat", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"chatId":  chatID,
	})
}
