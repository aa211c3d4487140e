package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/booking-ai/internal/booking"
	"github.com/clinicdesk/booking-ai/internal/storage"
	"github.com/clinicdesk/booking-ai/pkg/logging"
)

// ErrNotFound is returned when no session exists for the given id.
var ErrNotFound = errors.New("session: session not found")

// DefaultTTL is how long a session stays usable after creation.
const DefaultTTL = 24 * time.Hour

// Store provides session CRUD and expiry over the storage adapter.
type Store struct {
	kv     storage.KV
	ttl    time.Duration
	logger *logging.Logger
	now    func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTTL overrides the session TTL.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the store's notion of "now". Used in tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a session store on top of the given KV backend.
func NewStore(kv storage.KV, logger *logging.Logger, opts ...StoreOption) *Store {
	if kv == nil {
		panic("session: kv cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Store{
		kv:     kv,
		ttl:    DefaultTTL,
		logger: logger.Component("session"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create allocates a new active session at the greeting step and persists it.
// The optional email is recorded on the patient info up front.
func (s *Store) Create(ctx context.Context, patientEmail string, metadata map[string]any) (*Session, error) {
	now := s.now().UTC()
	sess := &Session{
		ID:          uuid.New().String(),
		Status:      StatusActive,
		CurrentStep: booking.StepGreeting,
		Metadata:    metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}
	if patientEmail != "" {
		sess.PatientInfo.Email = patientEmail
	}

	if err := s.persist(ctx, sess); err != nil {
		return nil, err
	}

	s.logger.Info("session created", "session_id", sess.ID, "expires_at", sess.ExpiresAt)
	return sess, nil
}

// Get loads a session by id. An active session past its TTL is flipped to
// expired, the flip is persisted, and the expired session is returned, so
// every read path observes expiry before any other logic runs.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if sess.Status == StatusActive && sess.Expired(s.now()) {
		sess.Status = StatusExpired
		if err := s.persist(ctx, sess); err != nil {
			// The caller still must see the session as expired; only the
			// materialized flip is lost.
			s.logger.Warn("failed to persist expiry flip", "session_id", id, "error", err)
		}
	}

	return sess, nil
}

// Update stamps UpdatedAt and persists the full record. Last write wins.
func (s *Store) Update(ctx context.Context, sess *Session) error {
	if sess == nil {
		return errors.New("session: cannot update nil session")
	}
	sess.UpdatedAt = s.now().UTC()
	return s.persist(ctx, sess)
}

// Delete removes the session record and its message log.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.kv.Delete(ctx, storage.KindSession, id); err != nil {
		return fmt.Errorf("session: failed to delete session %s: %w", id, err)
	}
	if err := s.kv.Delete(ctx, storage.KindMessageLog, id); err != nil {
		return fmt.Errorf("session: failed to delete message log %s: %w", id, err)
	}
	return nil
}

// ListAll scans every session, optionally filtered by status. Reads go
// through Get so lazy expiry applies on list paths too; unreadable records
// are skipped rather than failing the scan.
func (s *Store) ListAll(ctx context.Context, statusFilter *Status) ([]*Session, error) {
	ids, err := s.kv.List(ctx, storage.KindSession)
	if err != nil {
		return nil, fmt.Errorf("session: failed to list sessions: %w", err)
	}

	var sessions []*Session
	for _, id := range ids {
		sess, err := s.Get(ctx, id)
		if err != nil {
			s.logger.Warn("skipping unreadable session during scan", "session_id", id, "error", err)
			continue
		}
		if statusFilter != nil && sess.Status != *statusFilter {
			continue
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

// CleanupExpired deletes sessions whose stored status is already expired,
// along with their message logs, and returns the number deleted. Sessions
// merely past TTL whose flip was never materialized by a read are left
// alone: cleanup trusts only the persisted status.
func (s *Store) CleanupExpired(ctx context.Context) (int, error) {
	ids, err := s.kv.List(ctx, storage.KindSession)
	if err != nil {
		return 0, fmt.Errorf("session: failed to scan sessions for cleanup: %w", err)
	}

	deleted := 0
	for _, id := range ids {
		sess, err := s.load(ctx, id)
		if err != nil {
			s.logger.Warn("skipping unreadable session during cleanup", "session_id", id, "error", err)
			continue
		}
		if sess.Status != StatusExpired {
			continue
		}
		if err := s.Delete(ctx, id); err != nil {
			s.logger.Warn("failed to delete expired session", "session_id", id, "error", err)
			continue
		}
		deleted++
	}

	if deleted > 0 {
		s.logger.Info("expired sessions cleaned up", "count", deleted)
	}
	return deleted, nil
}

// load reads and decodes the stored record without applying lazy expiry.
func (s *Store) load(ctx context.Context, id string) (*Session, error) {
	data, err := s.kv.Get(ctx, storage.KindSession, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session: failed to load session %s: %w", id, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("session: failed to decode session %s: %w", id, err)
	}
	return &sess, nil
}

func (s *Store) persist(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: failed to encode session %s: %w", sess.ID, err)
	}
	if err := s.kv.Put(ctx, storage.KindSession, sess.ID, data); err != nil {
		return fmt.Errorf("session: failed to persist session %s: %w", sess.ID, err)
	}
	return nil
}
