package handlers

import (
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/alumniconnect/backend/internal/service"
	"github.com/alumniconnect/backend/internal/transport/http/middleware"
)

// MessageHandler covers the pull side of messaging: history (which marks
// read), explicit read-marking, and the derived conversation list. Sends
// arrive over the live websocket channel, not here.
type MessageHandler struct {
	msgService  *service.MessageService
	convService *service.ConversationService
}

func NewMessageHandler(msgService *service.MessageService, convService *service.ConversationService) *MessageHandler {
	return &MessageHandler{
		msgService:  msgService,
		convService: convService,
	}
}

func (h *MessageHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	partnerID, err := uuid.Parse(r.PathValue("partnerId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid partner ID")
		return
	}

	messages, err := h.msgService.FetchHistory(r.Context(), userID, partnerID)
	if err != nil {
		log.Printf("ERROR fetch history: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	partnerID, err := uuid.Parse(r.PathValue("partnerId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid partner ID")
		return
	}

	if err := h.msgService.MarkRead(r.Context(), userID, partnerID); err != nil {
		log.Printf("ERROR mark read: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *MessageHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	conversations, err := h.convService.ListConversations(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR list conversations: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, conversations)
}
