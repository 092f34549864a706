package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opsdesk/vendormail/internal/domain"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "logs.json")

	first := NewFileStore(path)
	if err := first.Load(); err != nil {
		t.Fatalf("load fresh store: %v", err)
	}

	entry := domain.LogEntry{
		ID:             "log1",
		FromEmail:      "orders@acme-industrial.example",
		Subject:        "Status of VR-2025-0012",
		Intent:         "status_inquiry",
		Entities:       &domain.LogEntities{RequestID: "VR-2025-0012"},
		ResolutionType: "auto_resolved",
		Labels:         []string{"vendor-inquiry", "status_inquiry", "auto-resolved"},
		CreatedAt:      "2026-08-25T10:00:00Z",
	}
	if err := first.AppendLog(entry); err != nil {
		t.Fatalf("append: %v", err)
	}

	// A second store over the same path sees the persisted entry.
	second := NewFileStore(path)
	if err := second.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	entries, err := second.ListLogs()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after reload, got %d", len(entries))
	}
	if entries[0].ID != "log1" || entries[0].Entities == nil || entries[0].Entities.RequestID != "VR-2025-0012" {
		t.Fatalf("entry lost fields across reload: %+v", entries[0])
	}

	// No stray temp file left behind.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temporary file not cleaned up: %v", err)
	}
}

func TestFileStoreCreatesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.json")

	s := NewFileStore(path)
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file created on first load: %v", err)
	}
	entries, err := s.ListLogs()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty store, got %v", entries)
	}
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	s := NewFileStore(path)
	err := s.Load()
	appErr, ok := domain.AsAppError(err)
	if !ok || appErr.Code != domain.CodeInternal {
		t.Fatalf("expected internal error for corrupt file, got %v", err)
	}
}

func TestFileStoreListIsolation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.json")
	s := NewFileStore(path)
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := s.AppendLog(domain.LogEntry{ID: "log1"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	entries, _ := s.ListLogs()
	entries[0].ID = "mutated"

	fresh, _ := s.ListLogs()
	if fresh[0].ID != "log1" {
		t.Fatalf("list result mutation leaked into store")
	}
}
