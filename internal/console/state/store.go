// Package state holds the console's view of the remote system. Every
// entity is replaced wholesale by its setter; there is no field-level
// merging, so a snapshot is never a blend of two backend responses.
package state

import (
	"sync"
	"time"

	"github.com/opsdesk/vendormail/internal/domain"
)

// Snapshot is the console view at one instant. Refresh timestamps record
// the last successful fetch per entity so staleness is observable.
type Snapshot struct {
	Config    domain.AgentConfig
	Status    domain.AgentStatus
	Queue     []domain.QueueItem
	Logs      []domain.LogEntry
	Analytics domain.AnalyticsSummary

	StatusRefreshedAt    time.Time
	QueueRefreshedAt     time.Time
	LogsRefreshedAt      time.Time
	AnalyticsRefreshedAt time.Time
}

type Store struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

func New() *Store {
	return &Store{now: time.Now}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.snap
	out.Queue = append([]domain.QueueItem(nil), s.snap.Queue...)
	out.Logs = append([]domain.LogEntry(nil), s.snap.Logs...)
	return out
}

func (s *Store) SetConfig(cfg domain.AgentConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Config = cfg
}

func (s *Store) SetStatus(status domain.AgentStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Status = status
	s.snap.StatusRefreshedAt = s.now()
}

func (s *Store) ReplaceQueue(items []domain.QueueItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Queue = append([]domain.QueueItem(nil), items...)
	s.snap.QueueRefreshedAt = s.now()
}

func (s *Store) ReplaceLogs(entries []domain.LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Logs = append([]domain.LogEntry(nil), entries...)
	s.snap.LogsRefreshedAt = s.now()
}

func (s *Store) SetAnalytics(summary domain.AnalyticsSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Analytics = summary
	s.snap.AnalyticsRefreshedAt = s.now()
}

// OldestRefresh returns the stalest of the four refresh timestamps, or
// zero when nothing has been fetched yet.
func (s *Store) OldestRefresh() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	oldest := s.snap.StatusRefreshedAt
	for _, at := range []time.Time{s.snap.QueueRefreshedAt, s.snap.LogsRefreshedAt, s.snap.AnalyticsRefreshedAt} {
		if at.Before(oldest) {
			oldest = at
		}
	}
	return oldest
}
