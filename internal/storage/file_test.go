package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestFileKV_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("new file kv: %v", err)
	}

	if err := kv.Put(ctx, KindSession, "s1", []byte(`{"id":"s1"}`)); err != nil {
		t.Fatalf("put: %v", err)
	}

	data, err := kv.Get(ctx, KindSession, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != `{"id":"s1"}` {
		t.Fatalf("unexpected data: %s", data)
	}
}

func TestFileKV_GetMissing(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("new file kv: %v", err)
	}

	_, err = kv.Get(context.Background(), KindMessageLog, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileKV_ListSkipsForeignFiles(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	kv, err := NewFileKV(base)
	if err != nil {
		t.Fatalf("new file kv: %v", err)
	}

	if err := kv.Put(ctx, KindSession, "a", []byte("1")); err != nil {
		t.Fatalf("put a: %v", err)
	}
	if err := kv.Put(ctx, KindSession, "b", []byte("2")); err != nil {
		t.Fatalf("put b: %v", err)
	}
	// Stray non-JSON file should not show up as an id.
	if err := os.WriteFile(filepath.Join(base, string(KindSession), "README.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatalf("write stray file: %v", err)
	}

	ids, err := kv.List(ctx, KindSession)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	sort.Strings(ids)
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestFileKV_ListEmptyKind(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("new file kv: %v", err)
	}

	ids, err := kv.List(context.Background(), KindMessageLog)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no ids, got %v", ids)
	}
}

func TestFileKV_DeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("new file kv: %v", err)
	}

	if err := kv.Put(ctx, KindSession, "s1", []byte("x")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := kv.Delete(ctx, KindSession, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := kv.Delete(ctx, KindSession, "s1"); err != nil {
		t.Fatalf("second delete should be idempotent: %v", err)
	}
	if _, err := kv.Get(ctx, KindSession, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestFileKV_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("new file kv: %v", err)
	}

	if err := kv.Put(ctx, KindSession, "s1", []byte("old")); err != nil {
		t.Fatalf("put old: %v", err)
	}
	if err := kv.Put(ctx, KindSession, "s1", []byte("new")); err != nil {
		t.Fatalf("put new: %v", err)
	}

	data, err := kv.Get(ctx, KindSession, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != "new" {
		t.Fatalf("expected overwrite, got %s", data)
	}
}
