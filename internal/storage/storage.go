package storage

import (
	"context"
	"errors"
)

// Kind names a record family. Each session owns at most one record per kind.
type Kind string

const (
	// KindSession holds the serialized session state.
	KindSession Kind = "session"
	// KindMessageLog holds the serialized per-session transcript.
	KindMessageLog Kind = "chatlog"
	// KindSlots holds the doctor directory with availability.
	KindSlots Kind = "slots"
	// KindAppointment holds confirmed appointment records.
	KindAppointment Kind = "appointment"
)

// ErrNotFound is returned when no record exists for the given kind and id.
var ErrNotFound = errors.New("storage: record not found")

// KV is the persistence boundary for session and message-log records.
// Writes are whole-record overwrites; no partial updates, no transactions
// across kinds.
type KV interface {
	Get(ctx context.Context, kind Kind, id string) ([]byte, error)
	Put(ctx context.Context, kind Kind, id string, data []byte) error
	// Delete is idempotent; deleting a missing record is not an error.
	Delete(ctx context.Context, kind Kind, id string) error
	// List returns the ids of all records of a kind, in no particular order.
	List(ctx context.Context, kind Kind) ([]string, error)
}
