package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/chatbot-api/internal/api/middleware"
	"github.com/Rrens/chatbot-api/internal/api/response"
	"github.com/Rrens/chatbot-api/internal/domain"
	"github.com/Rrens/chatbot-api/internal/service"
)

type chatMessageKey struct{}

// chatsResponse is the flat body of the chat endpoints
type chatsResponse struct {
	Message string        `json:"message"`
	Chats   []domain.Turn `json:"chats"`
}

// ChatHandler handles chat endpoints
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ValidateMessage decodes and validates the send body before the request
// is authenticated. The decoded message travels in the request context.
func (h *ChatHandler) ValidateMessage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var input domain.ChatMessage
		if err := decodeJSON(r, &input); err != nil {
			response.Message(w, decodeStatus(err), err.Error())
			return
		}
		if err := validate.Struct(input); err != nil {
			response.JSON(w, http.StatusBadRequest, map[string]any{
				"message": "Message is required",
				"errors":  fieldErrors(err),
			})
			return
		}

		ctx := context.WithValue(r.Context(), chatMessageKey{}, input.Message)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// New sends a message and returns the updated conversation
func (h *ChatHandler) New(w http.ResponseWriter, r *http.Request) {
	message, ok := r.Context().Value(chatMessageKey{}).(string)
	if !ok {
		response.Message(w, http.StatusBadRequest, "Message is required")
		return
	}
	userID, _ := middleware.GetUserID(r.Context())

	chats, err := h.chatService.SendMessage(r.Context(), userID, message)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, chatsResponse{Message: "OK", Chats: chats})
}

// AllChats returns the stored conversation
func (h *ChatHandler) AllChats(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	chats, err := h.chatService.GetAllChats(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, chatsResponse{Message: "OK", Chats: chats})
}

// DeleteAllChats clears the stored conversation
func (h *ChatHandler) DeleteAllChats(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	chats, err := h.chatService.DeleteAllChats(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, chatsResponse{Message: "OK", Chats: chats})
}

// Models lists the registered generation providers
func (h *ChatHandler) Models(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "", map[string]any{
		"providers": h.chatService.Providers(),
	})
}

// writeError exposes the raw error text on 500, which the web client shows
func (h *ChatHandler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrUnauthorized) {
		response.Message(w, http.StatusUnauthorized, msgStaleCredential)
		return
	}

	log.Error().Err(err).Bool("upstream", errors.Is(err, domain.ErrUpstream)).Msg("Chat request failed")
	response.Message(w, http.StatusInternalServerError, err.Error())
}
