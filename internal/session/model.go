package session

import (
	"time"

	"github.com/clinicdesk/booking-ai/internal/booking"
)

// Status of a booking session.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// Session is one caller's end-to-end booking conversation and the data
// collected so far.
type Session struct {
	ID          string              `json:"session_id"`
	Status      Status              `json:"status"`
	CurrentStep booking.Step        `json:"current_step"`
	PatientInfo booking.PatientInfo `json:"patient_info"`
	Metadata    map[string]any      `json:"metadata,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	ExpiresAt   time.Time           `json:"expires_at"`
}

// Expired reports whether the session's TTL has elapsed at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
