package storage

import (
	"context"
	"errors"
	"sort"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisKV(t *testing.T) *RedisKV {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisKV(client, nil)
}

func TestRedisKV_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newTestRedisKV(t)

	if err := kv.Put(ctx, KindSession, "s1", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	data, err := kv.Get(ctx, KindSession, "s1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Fatalf("unexpected data: %s", data)
	}
}

func TestRedisKV_GetMissing(t *testing.T) {
	kv := newTestRedisKV(t)

	_, err := kv.Get(context.Background(), KindSession, "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRedisKV_KindsAreIsolated(t *testing.T) {
	ctx := context.Background()
	kv := newTestRedisKV(t)

	if err := kv.Put(ctx, KindSession, "s1", []byte("session")); err != nil {
		t.Fatalf("put session: %v", err)
	}
	if err := kv.Put(ctx, KindMessageLog, "s1", []byte("log")); err != nil {
		t.Fatalf("put log: %v", err)
	}

	data, err := kv.Get(ctx, KindMessageLog, "s1")
	if err != nil {
		t.Fatalf("get log: %v", err)
	}
	if string(data) != "log" {
		t.Fatalf("expected log record, got %s", data)
	}
}

func TestRedisKV_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	kv := newTestRedisKV(t)

	for _, id := range []string{"a", "b", "c"} {
		if err := kv.Put(ctx, KindSession, id, []byte("x")); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}

	ids, err := kv.List(ctx, KindSession)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	sort.Strings(ids)
	if len(ids) != 3 || ids[0] != "a" || ids[2] != "c" {
		t.Fatalf("unexpected ids: %v", ids)
	}

	if err := kv.Delete(ctx, KindSession, "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ids, err = kv.List(ctx, KindSession)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids after delete, got %v", ids)
	}

	// Deleting a missing record is a no-op.
	if err := kv.Delete(ctx, KindSession, "b"); err != nil {
		t.Fatalf("second delete should be idempotent: %v", err)
	}
}
