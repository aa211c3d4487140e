package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clinicdesk/booking-ai/internal/booking"
	"github.com/clinicdesk/booking-ai/internal/conversation"
	"github.com/clinicdesk/booking-ai/internal/session"
	"github.com/clinicdesk/booking-ai/pkg/logging"
)

// SessionHandler serves the session lifecycle endpoints.
type SessionHandler struct {
	svc    *conversation.Service
	logger *logging.Logger
}

// NewSessionHandler creates the session endpoints handler.
func NewSessionHandler(svc *conversation.Service, logger *logging.Logger) *SessionHandler {
	if svc == nil {
		panic("handlers: conversation service is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SessionHandler{svc: svc, logger: logger.Component("http.sessions")}
}

type createSessionRequest struct {
	PatientEmail string         `json:"patient_email,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

type createSessionResponse struct {
	SessionID string         `json:"session_id"`
	Status    session.Status `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`
	Message   string         `json:"message"`
}

// Create handles POST /sessions. An empty body is allowed; both fields are
// optional.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	sess, err := h.svc.StartSession(r.Context(), req.PatientEmail, req.Metadata)
	if err != nil {
		h.logger.Error("failed to create session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, createSessionResponse{
		SessionID: sess.ID,
		Status:    sess.Status,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt,
		Message:   "Session created successfully. You can now start chatting to book your appointment.",
	})
}

// Get handles GET /sessions/{sessionID}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	sess, err := h.svc.Session(r.Context(), id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		h.logger.Error("failed to load session", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

type sessionSummary struct {
	SessionID   string         `json:"session_id"`
	Status      session.Status `json:"status"`
	CurrentStep booking.Step   `json:"current_step"`
	PatientName string         `json:"patient_name,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// List handles GET /sessions with an optional ?status= filter.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter *session.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := session.Status(raw)
		switch status {
		case session.StatusActive, session.StatusCompleted, session.StatusExpired, session.StatusCancelled:
			filter = &status
		default:
			writeError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
	}

	sessions, err := h.svc.Sessions(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list sessions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}

	summaries := make([]sessionSummary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, sessionSummary{
			SessionID:   s.ID,
			Status:      s.Status,
			CurrentStep: s.CurrentStep,
			PatientName: s.PatientInfo.Name,
			CreatedAt:   s.CreatedAt,
			UpdatedAt:   s.UpdatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": summaries,
		"total":    len(summaries),
	})
}

// Delete handles DELETE /sessions/{sessionID}. The transcript goes with the
// session.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	if _, err := h.svc.Session(r.Context(), id); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		h.logger.Error("failed to load session", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	if err := h.svc.EndSession(r.Context(), id); err != nil {
		h.logger.Error("failed to delete session", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Session deleted successfully"})
}

// Cleanup handles POST /cleanup. Only sessions whose expiry was already
// observed by a read are removed.
func (h *SessionHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Cleanup(r.Context())
	if err != nil {
		h.logger.Error("cleanup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "cleanup failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Cleaned up %d expired sessions", n),
		"cleaned": n,
	})
}
