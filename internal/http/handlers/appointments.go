package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clinicdesk/booking-ai/internal/appointments"
	"github.com/clinicdesk/booking-ai/pkg/logging"
)

// AppointmentHandler serves the doctor directory and slot reservation
// endpoints.
type AppointmentHandler struct {
	svc    *appointments.Service
	logger *logging.Logger
}

// NewAppointmentHandler creates the appointments endpoints handler.
func NewAppointmentHandler(svc *appointments.Service, logger *logging.Logger) *AppointmentHandler {
	if svc == nil {
		panic("handlers: appointments service is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AppointmentHandler{svc: svc, logger: logger.Component("http.appointments")}
}

// Doctors handles GET /doctors.
func (h *AppointmentHandler) Doctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.svc.Directory(r.Context())
	if err != nil {
		h.logger.Error("failed to load doctor directory", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load doctors")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"doctors": doctors})
}

// Slots handles GET /doctors/{doctorKey}/slots, returning only open slots.
func (h *AppointmentHandler) Slots(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "doctorKey")

	slots, err := h.svc.AvailableSlots(r.Context(), key)
	if err != nil {
		if errors.Is(err, appointments.ErrDoctorNotFound) {
			writeError(w, http.StatusNotFound, "Doctor not found")
			return
		}
		h.logger.Error("failed to load slots", "doctor", key, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load slots")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"doctor": key,
		"slots":  slots,
	})
}

type reserveRequest struct {
	SessionID string `json:"session_id"`
	Doctor    string `json:"doctor"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

// Reserve handles POST /appointments.
func (h *AppointmentHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	var req reserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Doctor == "" || req.Date == "" || req.Time == "" {
		writeError(w, http.StatusBadRequest, "doctor, date and time are required")
		return
	}

	apt, err := h.svc.Reserve(r.Context(), req.SessionID, req.Doctor, req.Date, req.Time)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrDoctorNotFound):
			writeError(w, http.StatusNotFound, "Doctor not found")
		case errors.Is(err, appointments.ErrSlotUnavailable):
			writeError(w, http.StatusConflict, "Slot is not available")
		default:
			h.logger.Error("reservation failed", "doctor", req.Doctor, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to reserve slot")
		}
		return
	}

	writeJSON(w, http.StatusCreated, apt)
}

// Get handles GET /appointments/{appointmentID}.
func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "appointmentID")

	apt, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, appointments.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Appointment not found")
			return
		}
		h.logger.Error("failed to load appointment", "appointment_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load appointment")
		return
	}

	writeJSON(w, http.StatusOK, apt)
}
