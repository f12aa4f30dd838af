// Copyright (c) 2026 Orvia. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/taibuivan/orvia/internal/platform/metrics"
)

// # File Store

// FileStore holds the process-wide Document and mirrors it to a single JSON
// file. All access goes through View and Mutate; Mutate persists the whole
// document before returning.
type FileStore struct {
	path   string
	logger *slog.Logger

	mu  sync.RWMutex
	doc *Document
}

/*
Open loads the document at path, or starts empty when no usable prior state
exists.

A missing file is the normal first-run case. A corrupt or unreadable file is
deliberately degraded to an empty document so the service still starts; the
failure is logged loudly and counted, because it means prior data is being
abandoned.

Parameters:
  - path: location of the JSON document; parent directories are created.
  - logger: structured logger for load diagnostics.

Returns:
  - *FileStore: the opened store.
  - error: directory creation failure only.
*/
func Open(path string, logger *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: create data directory: %w", err)
	}

	s := &FileStore{path: path, logger: logger, doc: NewDocument()}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("store: no prior document, starting empty", "path", path)
		return s, nil
	case err != nil:
		metrics.StoreLoadFailures.Inc()
		logger.Error("store: DOCUMENT UNREADABLE, starting empty and abandoning prior data",
			"path", path, "error", err)
		return s, nil
	}

	doc := NewDocument()
	if err := json.Unmarshal(raw, doc); err != nil {
		metrics.StoreLoadFailures.Inc()
		logger.Error("store: DOCUMENT CORRUPT, starting empty and abandoning prior data",
			"path", path, "error", err)
		return s, nil
	}

	doc.normalize()
	s.doc = doc
	logger.Info("store: document loaded",
		"path", path,
		"users", len(doc.Users),
		"sessions", len(doc.Sessions),
		"orders", len(doc.Orders))
	return s, nil
}

/*
View runs fn with shared read access to the document.

fn must not retain or mutate the document; copy anything it needs out.

Parameters:
  - fn: read transaction.

Returns:
  - error: whatever fn returns.
*/
func (s *FileStore) View(fn func(doc *Document) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.doc)
}

/*
Mutate runs fn with exclusive write access to the document and persists the
complete document afterwards.

If fn fails, nothing is written and its error is returned. In-memory changes
made by fn before the failure are not rolled back.

Parameters:
  - fn: write transaction.

Returns:
  - error: fn's error, or a persistence failure.
*/
func (s *FileStore) Mutate(fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.doc); err != nil {
		return err
	}
	return s.persistLocked()
}

/*
CleanupExpired reaps challenges and sessions past their expiry and persists
when anything was removed. It is invoked per request, so reaping is lazy and
proportional to traffic.

Parameters:
  - now: the instant expiry is judged against.

Returns:
  - error: persistence failure.
*/
func (s *FileStore) CleanupExpired(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc.reapExpired(now) == 0 {
		return nil
	}
	return s.persistLocked()
}

// Path returns the on-disk location of the document.
func (s *FileStore) Path() string {
	return s.path
}

// persistLocked writes the document via temp-file-then-rename. Callers hold
// the write lock.
func (s *FileStore) persistLocked() error {
	raw, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		metrics.StorePersistsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("store: marshal document: %w", err)
	}

	if err := atomicWriteFile(s.path, raw, 0o644); err != nil {
		metrics.StorePersistsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("store: persist document: %w", err)
	}

	metrics.StorePersistsTotal.WithLabelValues("ok").Inc()
	return nil
}

// atomicWriteFile writes data to a temporary file in the target's directory,
// syncs it, and renames it over the target. Readers never observe a partial
// document.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
