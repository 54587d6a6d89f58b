package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/alumniconnect/backend/internal/service"
	"github.com/alumniconnect/backend/internal/transport/http/middleware"
)

type ConnectionHandler struct {
	connService *service.ConnectionService
}

func NewConnectionHandler(connService *service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connService: connService}
}

func (h *ConnectionHandler) Request(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input struct {
		ReceiverID uuid.UUID `json:"receiver_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if input.ReceiverID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "MISSING_RECEIVER_ID", "receiver_id is required")
		return
	}

	req, err := h.connService.Request(r.Context(), userID, input.ReceiverID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFoundForRequest):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		case errors.Is(err, service.ErrCannotConnectSelf):
			writeError(w, http.StatusBadRequest, "SELF_REQUEST", "Cannot send a connection request to yourself")
		case errors.Is(err, service.ErrConnectionPending):
			writeError(w, http.StatusConflict, "REQUEST_PENDING", "Connection request already pending")
		case errors.Is(err, service.ErrAlreadyConnected):
			writeError(w, http.StatusConflict, "ALREADY_CONNECTED", "Already connected")
		default:
			log.Printf("ERROR connection request: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, req)
}

func (h *ConnectionHandler) Respond(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	requestID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid request ID")
		return
	}

	var input struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	req, err := h.connService.Respond(r.Context(), requestID, userID, input.Action)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAction):
			writeError(w, http.StatusBadRequest, "INVALID_ACTION", "Action must be ACCEPT or REJECT")
		case errors.Is(err, service.ErrConnectionNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Connection request not found")
		case errors.Is(err, service.ErrNotRequestReceiver):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the request receiver can respond")
		case errors.Is(err, service.ErrAlreadyResponded):
			writeError(w, http.StatusConflict, "ALREADY_RESPONDED", "Request already responded to")
		default:
			log.Printf("ERROR connection respond: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, req)
}

func (h *ConnectionHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	reqs, err := h.connService.ListPending(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR list pending connections: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, reqs)
}

func (h *ConnectionHandler) ListSent(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	reqs, err := h.connService.ListSent(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR list sent connections: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, reqs)
}

func (h *ConnectionHandler) ListAccepted(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	reqs, err := h.connService.ListAccepted(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR list accepted connections: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, reqs)
}

func (h *ConnectionHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	otherUserID, err := uuid.Parse(r.PathValue("otherUserId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	req, err := h.connService.GetStatus(r.Context(), userID, otherUserID)
	if err != nil {
		if errors.Is(err, service.ErrCannotConnectSelf) {
			writeError(w, http.StatusBadRequest, "SELF_REQUEST", "Cannot check connection status with yourself")
		} else {
			log.Printf("ERROR connection status: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}
	if req == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, req)
}
