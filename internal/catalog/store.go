package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/visualoom/visualoom/internal/errors"
)

// Store persists image records and tags as flat JSON files.
//
// Loads are corruption tolerant: an absent file is an empty catalog, and a
// malformed file logs a warning and loads as empty. Callers must treat the
// latter as data loss, not as "no data ever existed".
//
// Saves are atomic (temp file + rename) and serialized by an in-process
// mutex plus a flock advisory lock, so concurrent sweeps sharing one
// catalog cannot tear each other's writes. Last writer still wins on
// content; higher layers funnel writes through one mutator per file.
type Store struct {
	mu          sync.Mutex
	catalogPath string
	tagPath     string
	lock        *flock.Flock
	logger      *slog.Logger
}

// NewStore creates a store rooted at the given file paths.
func NewStore(catalogPath, tagPath string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		catalogPath: catalogPath,
		tagPath:     tagPath,
		lock:        flock.New(catalogPath + ".lock"),
		logger:      logger,
	}
}

// CatalogPath returns the image record file path.
func (s *Store) CatalogPath() string { return s.catalogPath }

// TagPath returns the tag file path.
func (s *Store) TagPath() string { return s.tagPath }

// LoadImages returns all image records, or an empty slice when the file is
// absent or unreadable.
func (s *Store) LoadImages() []*ImageRecord {
	var records []*ImageRecord
	s.load(s.catalogPath, &records)
	if records == nil {
		records = []*ImageRecord{}
	}
	return records
}

// SaveImages overwrites the catalog with the complete record set.
func (s *Store) SaveImages(records []*ImageRecord) error {
	return s.save(s.catalogPath, records)
}

// LoadTags returns all tags, or an empty slice when the file is absent or
// unreadable.
func (s *Store) LoadTags() []*Tag {
	var tags []*Tag
	s.load(s.tagPath, &tags)
	if tags == nil {
		tags = []*Tag{}
	}
	return tags
}

// SaveTags overwrites the tag file with the complete tag set.
func (s *Store) SaveTags(tags []*Tag) error {
	return s.save(s.tagPath, tags)
}

// load reads and unmarshals a record file into out. Corruption is
// non-fatal: the previous state is discarded with a logged warning.
func (s *Store) load(path string, out any) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("store_unreadable",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
		return
	}

	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn("store_corrupted",
			slog.String("path", path),
			slog.String("error", errors.Wrap(errors.ErrCodeCorruptStore, err).Error()))
	}
}

// save marshals v and atomically replaces the file at path.
func (s *Store) save(path string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeStoreWrite, err)
	}

	if err := s.lock.Lock(); err != nil {
		return errors.Wrap(errors.ErrCodeStoreLock, err)
	}
	defer func() { _ = s.lock.Unlock() }()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreWrite, err)
	}

	// Write to a temp file in the same directory, then rename over the
	// target so a crash mid-write never leaves a torn store.
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreWrite, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return errors.Wrap(errors.ErrCodeStoreWrite, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return errors.Wrap(errors.ErrCodeStoreWrite, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrap(errors.ErrCodeStoreWrite, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrap(errors.ErrCodeStoreWrite,
			fmt.Errorf("replace %s: %w", path, err))
	}

	return nil
}
