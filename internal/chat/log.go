package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/booking-ai/internal/storage"
	"github.com/clinicdesk/booking-ai/pkg/logging"
)

// Log is the append-only per-session message history. Each session's
// transcript is stored as one whole JSON record, overwritten on append.
type Log struct {
	kv     storage.KV
	logger *logging.Logger
	now    func() time.Time
}

// LogOption configures a Log.
type LogOption func(*Log)

// WithClock overrides the log's notion of "now". Used in tests.
func WithClock(now func() time.Time) LogOption {
	return func(l *Log) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLog creates a message log on top of the given KV backend.
func NewLog(kv storage.KV, logger *logging.Logger, opts ...LogOption) *Log {
	if kv == nil {
		panic("chat: kv cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	l := &Log{
		kv:     kv,
		logger: logger.Component("chat"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append adds a message to the end of the session's transcript and persists
// the whole log.
func (l *Log) Append(ctx context.Context, sessionID string, role Role, content string, metadata map[string]any) (*Message, error) {
	messages, err := l.All(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	msg := Message{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Timestamp: l.now().UTC(),
		Metadata:  metadata,
	}
	messages = append(messages, msg)

	data, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("chat: failed to encode message log %s: %w", sessionID, err)
	}
	if err := l.kv.Put(ctx, storage.KindMessageLog, sessionID, data); err != nil {
		return nil, fmt.Errorf("chat: failed to persist message log %s: %w", sessionID, err)
	}
	return &msg, nil
}

// All returns the session's complete transcript in insertion order. An
// unknown session id yields an empty log, not an error.
func (l *Log) All(ctx context.Context, sessionID string) ([]Message, error) {
	data, err := l.kv.Get(ctx, storage.KindMessageLog, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("chat: failed to load message log %s: %w", sessionID, err)
	}

	var messages []Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("chat: failed to decode message log %s: %w", sessionID, err)
	}
	return messages, nil
}

// Recent returns the last limit messages in original order. A limit of zero
// or less returns the whole transcript.
func (l *Log) Recent(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	messages, err := l.All(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || len(messages) <= limit {
		return messages, nil
	}
	return messages[len(messages)-limit:], nil
}

// DeleteAll removes the session's transcript. Idempotent.
func (l *Log) DeleteAll(ctx context.Context, sessionID string) error {
	if err := l.kv.Delete(ctx, storage.KindMessageLog, sessionID); err != nil {
		return fmt.Errorf("chat: failed to delete message log %s: %w", sessionID, err)
	}
	return nil
}
