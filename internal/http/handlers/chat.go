package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/clinicdesk/booking-ai/internal/conversation"
	"github.com/clinicdesk/booking-ai/internal/session"
	"github.com/clinicdesk/booking-ai/pkg/logging"
)

// ChatHandler serves the conversational endpoints.
type ChatHandler struct {
	svc    *conversation.Service
	logger *logging.Logger
}

// NewChatHandler creates the chat endpoints handler.
func NewChatHandler(svc *conversation.Service, logger *logging.Logger) *ChatHandler {
	if svc == nil {
		panic("handlers: conversation service is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ChatHandler{svc: svc, logger: logger.Component("http.chat")}
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// Send handles POST /chat: one user message in, one assistant reply out.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" || strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "session_id and message are required")
		return
	}

	res, err := h.svc.ProcessMessage(r.Context(), req.SessionID, req.Message)
	if err != nil {
		var notActive *conversation.NotActiveError
		switch {
		case errors.Is(err, session.ErrNotFound):
			writeError(w, http.StatusNotFound, "Session not found")
		case errors.As(err, &notActive):
			writeError(w, http.StatusBadRequest, "Session is "+string(notActive.Status))
		default:
			h.logger.Error("turn failed", "session_id", req.SessionID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to process message")
		}
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// History handles GET /chat-history/{sessionID}.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	hist, err := h.svc.History(r.Context(), id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		h.logger.Error("failed to load history", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	writeJSON(w, http.StatusOK, hist)
}
