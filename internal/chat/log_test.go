package chat

import (
	"context"
	"fmt"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/clinicdesk/booking-ai/internal/storage"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLog(storage.NewRedisKV(client, nil), nil)
}

func TestLog_AppendAndAll(t *testing.T) {
	ctx := context.Background()
	log := newTestLog(t)

	first, err := log.Append(ctx, "s1", RoleUser, "hi", nil)
	if err != nil {
		t.Fatalf("append user: %v", err)
	}
	if first.ID == "" || first.SessionID != "s1" || first.Role != RoleUser {
		t.Fatalf("unexpected message: %+v", first)
	}

	if _, err := log.Append(ctx, "s1", RoleAssistant, "hello!", map[string]any{"model": "test"}); err != nil {
		t.Fatalf("append assistant: %v", err)
	}

	messages, err := log.All(ctx, "s1")
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Content != "hi" || messages[1].Content != "hello!" {
		t.Fatalf("messages out of order: %+v", messages)
	}
	if messages[1].Metadata["model"] != "test" {
		t.Fatalf("metadata lost: %+v", messages[1])
	}
}

func TestLog_AllUnknownSession(t *testing.T) {
	log := newTestLog(t)
	messages, err := log.All(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("unknown session should not error: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected empty log, got %d messages", len(messages))
	}
}

func TestLog_RecentKeepsOriginalOrder(t *testing.T) {
	ctx := context.Background()
	log := newTestLog(t)

	for i := 0; i < 7; i++ {
		if _, err := log.Append(ctx, "s1", RoleUser, fmt.Sprintf("msg-%d", i), nil); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	recent, err := log.Recent(ctx, "s1", 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(recent))
	}
	// Last three, oldest first.
	for i, want := range []string{"msg-4", "msg-5", "msg-6"} {
		if recent[i].Content != want {
			t.Fatalf("expected %s at index %d, got %s", want, i, recent[i].Content)
		}
	}
}

func TestLog_RecentShorterThanLimit(t *testing.T) {
	ctx := context.Background()
	log := newTestLog(t)

	if _, err := log.Append(ctx, "s1", RoleUser, "only one", nil); err != nil {
		t.Fatalf("append: %v", err)
	}

	recent, err := log.Recent(ctx, "s1", 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(recent))
	}
}

func TestLog_DeleteAllIdempotent(t *testing.T) {
	ctx := context.Background()
	log := newTestLog(t)

	if _, err := log.Append(ctx, "s1", RoleUser, "bye", nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := log.DeleteAll(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := log.DeleteAll(ctx, "s1"); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}

	messages, err := log.All(ctx, "s1")
	if err != nil {
		t.Fatalf("all after delete: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected empty log after delete, got %d", len(messages))
	}
}
