package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/clinicdesk/booking-ai/internal/conversation"
	"github.com/clinicdesk/booking-ai/internal/session"
	"github.com/clinicdesk/booking-ai/pkg/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler serves the real-time chat endpoint. Each connection is bound to
// one session; messages are processed sequentially on the read loop, so the
// per-session turn ordering matches arrival order.
type WSHandler struct {
	svc    *conversation.Service
	logger *logging.Logger
}

// NewWSHandler creates the websocket chat handler.
func NewWSHandler(svc *conversation.Service, logger *logging.Logger) *WSHandler {
	if svc == nil {
		panic("handlers: conversation service is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WSHandler{svc: svc, logger: logger.Component("http.ws")}
}

type wsInbound struct {
	Message string `json:"message"`
}

type wsOutbound struct {
	Type          string `json:"type"`
	Message       string `json:"message,omitempty"`
	CurrentStep   string `json:"current_step,omitempty"`
	PatientInfo   any    `json:"patient_info,omitempty"`
	SessionStatus string `json:"session_status,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Serve handles GET /ws/{sessionID}.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Verify the session before accepting any messages.
	if _, err := h.svc.Session(r.Context(), sessionID); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			_ = conn.WriteJSON(wsOutbound{Type: "error", Error: "Session not found"})
		} else {
			h.logger.Error("failed to load session", "session_id", sessionID, "error", err)
			_ = conn.WriteJSON(wsOutbound{Type: "error", Error: "failed to load session"})
		}
		return
	}

	h.logger.Info("websocket connected", "session_id", sessionID)

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", "session_id", sessionID, "error", err)
			}
			return
		}
		if strings.TrimSpace(in.Message) == "" {
			continue
		}

		res, err := h.svc.ProcessMessage(r.Context(), sessionID, in.Message)
		if err != nil {
			var notActive *conversation.NotActiveError
			switch {
			case errors.Is(err, session.ErrNotFound):
				_ = conn.WriteJSON(wsOutbound{Type: "error", Error: "Session not found"})
				return
			case errors.As(err, &notActive):
				_ = conn.WriteJSON(wsOutbound{Type: "error", Error: "Session is " + string(notActive.Status)})
				return
			default:
				h.logger.Error("turn failed", "session_id", sessionID, "error", err)
				_ = conn.WriteJSON(wsOutbound{Type: "error", Error: "failed to process message"})
				continue
			}
		}

		if err := conn.WriteJSON(wsOutbound{
			Type:          "assistant_response",
			Message:       res.Reply,
			CurrentStep:   string(res.CurrentStep),
			PatientInfo:   res.PatientInfo,
			SessionStatus: string(res.Status),
		}); err != nil {
			h.logger.Warn("websocket write failed", "session_id", sessionID, "error", err)
			return
		}
	}
}
