package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/opsdesk/vendormail/internal/domain"
)

type FileStore struct {
	path    string
	mu      sync.RWMutex
	entries []domain.LogEntry
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, entries: []domain.LogEntry{}}
}

func (s *FileStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return domain.Internal("failed to create data directory", err)
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.entries = []domain.LogEntry{}
			return s.persistLocked()
		}
		return domain.Internal("failed to read log file", err)
	}

	var parsed []domain.LogEntry
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return domain.Internal("failed to parse log file", err)
	}
	if parsed == nil {
		parsed = []domain.LogEntry{}
	}
	s.entries = parsed
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) ListLogs() ([]domain.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.LogEntry(nil), s.entries...), nil
}

func (s *FileStore) AppendLog(entry domain.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return s.persistLocked()
}

func (s *FileStore) persistLocked() error {
	serialized, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return domain.Internal("failed to serialize logs", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, append(serialized, '\n'), 0o600); err != nil {
		return domain.Internal("failed to write temporary log file", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		return domain.Internal("failed to atomically persist log file", err)
	}
	return nil
}
