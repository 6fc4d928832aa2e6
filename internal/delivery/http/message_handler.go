package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"konekt/internal/entity"
	"konekt/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type MessageHandler struct {
	messageUc usecase.MessageUsecase
	validate  *validator.Validate
}

func NewMessageHandler(messageUc usecase.MessageUsecase) *MessageHandler {
	return &MessageHandler{
		messageUc: messageUc,
		validate:  validator.New(),
	}
}

// Method Post /messages/{recipientId}
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	claims, ok := entity.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	recipientId := chi.URLParam(r, "recipientId")

	var req entity.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	message, err := h.messageUc.Send(r.Context(), claims.UserId, recipientId, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrTextRequired):
			writeError(w, http.StatusBadRequest, "text is required")
		case errors.Is(err, usecase.ErrSelfMessage):
			writeError(w, http.StatusBadRequest, "you can't send a message to yourself")
		case errors.Is(err, usecase.ErrRecipientNotFound):
			writeError(w, http.StatusNotFound, "recipient not found")
		default:
			log.Printf("Send message error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, Response{
		Message: "success",
		Data:    message,
	})
}

// Method Get /messages?offset=N
func (h *MessageHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	claims, ok := entity.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	conversations, err := h.messageUc.ListConversations(r.Context(), claims.UserId, offset)
	if err != nil {
		log.Printf("List conversations error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Message: "success",
		Data:    conversations,
	})
}

// Method Get /messages/unread
func (h *MessageHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	claims, ok := entity.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	count, err := h.messageUc.UnreadCount(r.Context(), claims.UserId)
	if err != nil {
		log.Printf("Unread count error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Message: "success",
		Data:    map[string]int64{"count": count},
	})
}

// Method Patch /messages/read/{peerId}
func (h *MessageHandler) MarkConversationRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := entity.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	peerId := chi.URLParam(r, "peerId")

	state, err := h.messageUc.MarkConversationRead(r.Context(), claims.UserId, peerId)
	if err != nil {
		log.Printf("Mark conversation read error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Message: "success",
		Data:    map[string]bool{"state": state},
	})
}
