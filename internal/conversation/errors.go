package conversation

import (
	"fmt"

	"github.com/clinicdesk/booking-ai/internal/session"
)

// NotActiveError is returned when a turn is attempted against a session that
// is no longer accepting messages. It carries the status observed at load
// time so handlers can report it.
type NotActiveError struct {
	SessionID string
	Status    session.Status
}

func (e *NotActiveError) Error() string {
	return fmt.Sprintf("conversation: session %s is not active (status=%s)", e.SessionID, e.Status)
}
