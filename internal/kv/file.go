package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"medialookup/internal/logging"
)

// JSONFile persists entries as a single JSON object on disk. Values must be
// valid JSON documents. Reads reload the file under a shared advisory lock and
// mutations re-read it under an exclusive one, so several processes can share
// the file.
type JSONFile struct {
	path    string
	lock    *flock.Flock
	logger  *slog.Logger
	mu      sync.Mutex
	entries map[string]json.RawMessage
}

// OpenJSON loads the store at path, creating parent directories as needed.
// A missing file starts empty.
func OpenJSON(path string, logger *slog.Logger) (*JSONFile, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("json store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	s := &JSONFile{
		path:    path,
		lock:    flock.New(path + ".lock"),
		logger:  logging.NewComponentLogger(logger, "kv"),
		entries: make(map[string]json.RawMessage),
	}
	entries, err := s.read()
	if err != nil {
		logging.WarnWithContext(s.logger, "failed to load json cache",
			"kv_load_failed",
			logging.Error(err),
			logging.String("path", path),
			logging.String(logging.FieldErrorHint, "delete the cache file if it is corrupt"),
			logging.String(logging.FieldImpact, "cache starts empty"))
	} else {
		s.entries = entries
	}
	return s, nil
}

func (s *JSONFile) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(); err != nil {
		return nil, false, err
	}
	value, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (s *JSONFile) Set(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("value for %q is not valid json", key)
	}
	stored := json.RawMessage(append([]byte(nil), value...))
	return s.mutate(func(entries map[string]json.RawMessage) {
		entries[key] = stored
	})
}

func (s *JSONFile) Delete(_ context.Context, key string) error {
	return s.mutate(func(entries map[string]json.RawMessage) {
		delete(entries, key)
	})
}

func (s *JSONFile) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *JSONFile) Close() error { return nil }

// refresh reloads the file under a shared lock so reads observe writes made
// by other processes. An unparsable file keeps the current snapshot.
// Callers hold mu.
func (s *JSONFile) refresh() error {
	if err := s.lock.RLock(); err != nil {
		return fmt.Errorf("acquire cache read lock: %w", err)
	}
	defer func() {
		_ = s.lock.Unlock()
	}()

	entries, err := s.read()
	if err != nil {
		s.logger.Debug("keeping cached snapshot of unreadable cache file", logging.Error(err))
		return nil
	}
	s.entries = entries
	return nil
}

func (s *JSONFile) mutate(apply func(map[string]json.RawMessage)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	defer func() {
		_ = s.lock.Unlock()
	}()

	entries, err := s.read()
	if err != nil {
		s.logger.Debug("discarding unreadable cache file", logging.Error(err))
		entries = make(map[string]json.RawMessage)
	}
	apply(entries)
	if err := s.save(entries); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	s.entries = entries
	return nil
}

func (s *JSONFile) read() (map[string]json.RawMessage, error) {
	entries := make(map[string]json.RawMessage)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return entries, nil
		}
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse cache file: %w", err)
	}
	return entries, nil
}

// save writes the entries atomically via a temp file.
func (s *JSONFile) save(entries map[string]json.RawMessage) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
