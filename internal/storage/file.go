package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileKV persists each record as a JSON file under <base>/<kind>/<id>.json.
type FileKV struct {
	base string
}

// NewFileKV creates a file-backed KV store rooted at base.
func NewFileKV(base string) (*FileKV, error) {
	if strings.TrimSpace(base) == "" {
		base = "data"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("storage: failed to create storage directory: %w", err)
	}
	return &FileKV{base: base}, nil
}

func (s *FileKV) kindDir(kind Kind) string {
	return filepath.Join(s.base, string(kind))
}

func (s *FileKV) path(kind Kind, id string) string {
	return filepath.Join(s.kindDir(kind), id+".json")
}

func (s *FileKV) Get(ctx context.Context, kind Kind, id string) ([]byte, error) {
	data, err := os.ReadFile(s.path(kind, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: failed to read %s record: %w", kind, err)
	}
	return data, nil
}

func (s *FileKV) Put(ctx context.Context, kind Kind, id string, data []byte) error {
	dir := s.kindDir(kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: failed to create %s directory: %w", kind, err)
	}

	// Write to a temp file and rename so a crash mid-write never leaves a
	// truncated record behind.
	tmp, err := os.CreateTemp(dir, "."+id+"-*")
	if err != nil {
		return fmt.Errorf("storage: failed to stage %s record: %w", kind, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("storage: failed to write %s record: %w", kind, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage: failed to flush %s record: %w", kind, err)
	}
	if err := os.Rename(tmpName, s.path(kind, id)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage: failed to persist %s record: %w", kind, err)
	}
	return nil
}

func (s *FileKV) Delete(ctx context.Context, kind Kind, id string) error {
	if err := os.Remove(s.path(kind, id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: failed to delete %s record: %w", kind, err)
	}
	return nil
}

func (s *FileKV) List(ctx context.Context, kind Kind) ([]string, error) {
	entries, err := os.ReadDir(s.kindDir(kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: failed to list %s records: %w", kind, err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}
