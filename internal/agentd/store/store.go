package store

import "github.com/opsdesk/vendormail/internal/domain"

// LogStore is the persistence contract for completed interaction logs.
// The mailbox and seeded pending inquiries are transient and live in
// the service layer only.
type LogStore interface {
	Load() error
	Close() error

	ListLogs() ([]domain.LogEntry, error)
	AppendLog(domain.LogEntry) error
}
