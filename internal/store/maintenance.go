package store

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Stats summarizes stored review activity.
type Stats struct {
	Videos           int
	Comments         int
	OpenComments     int
	Sessions         int
	SessionsByStatus map[string]int
}

// DatabaseHealth describes the database file for diagnostics.
type DatabaseHealth struct {
	DBPath         string
	DatabaseExists bool
	SizeBytes      int64
	SchemaVersion  int
	IntegrityCheck string
}

// Stats counts videos, comments and sessions.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)
	stats := Stats{SessionsByStatus: make(map[string]int)}
	counts := []struct {
		query string
		dst   *int
	}{
		{`SELECT COUNT(1) FROM videos`, &stats.Videos},
		{`SELECT COUNT(1) FROM comments`, &stats.Comments},
		{`SELECT COUNT(1) FROM comments WHERE status = 'open'`, &stats.OpenComments},
		{`SELECT COUNT(1) FROM review_sessions`, &stats.Sessions},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return Stats{}, fmt.Errorf("store stats: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM review_sessions GROUP BY status`)
	if err != nil {
		return Stats{}, fmt.Errorf("session stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Stats{}, err
		}
		stats.SessionsByStatus[status] = count
	}
	return stats, rows.Err()
}

// CheckHealth returns diagnostic information about the database file.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}
	if s.path == "" {
		return health, errors.New("database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("database path %q is a directory", s.path)
	}
	health.DatabaseExists = true
	health.SizeBytes = info.Size()

	ctx = ensureContext(ctx)
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&health.SchemaVersion); err != nil {
		return health, fmt.Errorf("read schema version: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&health.IntegrityCheck); err != nil {
		return health, fmt.Errorf("integrity check: %w", err)
	}
	return health, nil
}
