package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/opsdesk/vendormail/internal/domain"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresStore struct {
	db *sql.DB
}

const (
	defaultDBMaxOpenConns = 10
	defaultDBMaxIdleConns = 5
	defaultDBPingTimeout  = 5 * time.Second
)

const logsSchema = `
CREATE TABLE IF NOT EXISTS interaction_logs (
	id              TEXT PRIMARY KEY,
	from_email      TEXT NOT NULL,
	subject         TEXT NOT NULL,
	intent          TEXT NOT NULL DEFAULT '',
	request_id      TEXT NOT NULL DEFAULT '',
	resolution_type TEXT NOT NULL DEFAULT '',
	labels          TEXT NOT NULL DEFAULT '[]',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, domain.InvalidArgument("DATABASE_URL is required when STORE_DRIVER=postgres")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, domain.Internal("failed to open postgres connection", err)
	}
	db.SetMaxOpenConns(defaultDBMaxOpenConns)
	db.SetMaxIdleConns(defaultDBMaxIdleConns)

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Load() error {
	pingCtx, cancel := context.WithTimeout(context.Background(), defaultDBPingTimeout)
	defer cancel()
	if err := s.db.PingContext(pingCtx); err != nil {
		return domain.Internal("failed to connect to postgres", err)
	}
	if _, err := s.db.Exec(logsSchema); err != nil {
		return domain.Internal("failed to ensure interaction_logs schema", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PostgresStore) ListLogs() ([]domain.LogEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, from_email, subject, intent, request_id, resolution_type, labels, created_at
		FROM interaction_logs
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, domain.Internal("failed to list interaction logs", err)
	}
	defer rows.Close()

	entries := []domain.LogEntry{}
	for rows.Next() {
		var entry domain.LogEntry
		var requestID, rawLabels string
		var createdAt time.Time
		if err := rows.Scan(&entry.ID, &entry.FromEmail, &entry.Subject, &entry.Intent,
			&requestID, &entry.ResolutionType, &rawLabels, &createdAt); err != nil {
			return nil, domain.Internal("failed to scan interaction log", err)
		}
		if requestID != "" {
			entry.Entities = &domain.LogEntities{RequestID: requestID}
		}
		if err := json.Unmarshal([]byte(rawLabels), &entry.Labels); err != nil {
			entry.Labels = []string{}
		}
		entry.CreatedAt = createdAt.UTC().Format(time.RFC3339Nano)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal("failed to iterate interaction logs", err)
	}
	return entries, nil
}

func (s *PostgresStore) AppendLog(entry domain.LogEntry) error {
	requestID := ""
	if entry.Entities != nil {
		requestID = entry.Entities.RequestID
	}
	rawLabels, err := json.Marshal(entry.Labels)
	if err != nil {
		return domain.Internal("failed to serialize labels", err)
	}
	createdAt := time.Now().UTC()
	if entry.CreatedAt != "" {
		if parsed, parseErr := time.Parse(time.RFC3339Nano, entry.CreatedAt); parseErr == nil {
			createdAt = parsed
		}
	}

	_, err = s.db.Exec(`
		INSERT INTO interaction_logs (id, from_email, subject, intent, request_id, resolution_type, labels, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.FromEmail, entry.Subject, entry.Intent, requestID,
		entry.ResolutionType, string(rawLabels), createdAt)
	if err != nil {
		return domain.Internal("failed to insert interaction log", err)
	}
	return nil
}
