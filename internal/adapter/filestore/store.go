// Package filestore persists small JSON records as files in a data directory.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Store keeps a single record of type T in <dir>/<name>.json. Writes go to a
// temporary file in the same directory which is then renamed over the record,
// so a reader never observes a partial write.
type Store[T any] struct {
	path     string
	fallback func() T
	logger   *slog.Logger
}

// New creates a store for the named record. fallback supplies the value
// returned when the record is missing or unreadable.
func New[T any](dir, name string, fallback func() T, logger *slog.Logger) *Store[T] {
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	return &Store[T]{
		path:     filepath.Join(dir, name),
		fallback: fallback,
		logger:   logger.With("component", "filestore", "path", filepath.Join(dir, name)),
	}
}

// Path returns the record file location.
func (s *Store[T]) Path() string { return s.path }

// Load returns the stored record. A missing, unreadable or corrupt file yields
// the fallback value and no error.
func (s *Store[T]) Load(_ context.Context) (T, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("record unreadable, using default", "error", err)
		}
		return s.fallback(), nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		s.logger.Warn("record corrupt, using default", "error", err)
		return s.fallback(), nil
	}
	return v, nil
}

// Save replaces the stored record atomically.
func (s *Store[T]) Save(_ context.Context, v T) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace record: %w", err)
	}

	s.logger.Debug("record saved")
	return nil
}
