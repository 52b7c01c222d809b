// Package history stores settled builds in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/dyndll/internal/core/domain"
	"go.trai.ch/dyndll/internal/core/ports"
	"go.trai.ch/zerr"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

var _ ports.BuildHistory = (*Store)(nil)

// Store implements ports.BuildHistory.
type Store struct {
	db *sql.DB
}

// Open opens, creating if needed, the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrHistoryOpenFailed.Error()), "path", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrHistoryOpenFailed.Error()), "path", path)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, zerr.With(zerr.Wrap(err, domain.ErrHistoryOpenFailed.Error()), "path", path)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores rec. A record without an ID is assigned a new UUID.
func (s *Store) Record(ctx context.Context, rec domain.BuildRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO builds (
			id, started_at, duration_ms, status, input_hash, output_hash, modules, forced, diagnostic
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.StartedAt.UnixNano(),
		rec.Duration.Milliseconds(),
		string(rec.Status),
		rec.InputHash,
		rec.OutputHash,
		rec.Modules,
		rec.Forced,
		rec.Diagnostic,
	)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrHistoryWriteFailed.Error()), "id", rec.ID)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]domain.BuildRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, duration_ms, status, input_hash, output_hash, modules, forced, diagnostic
		FROM builds
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrHistoryReadFailed.Error())
	}
	defer func() { _ = rows.Close() }()

	var records []domain.BuildRecord
	for rows.Next() {
		var (
			rec        domain.BuildRecord
			startedAt  int64
			durationMs int64
			status     string
		)
		if err := rows.Scan(
			&rec.ID, &startedAt, &durationMs, &status,
			&rec.InputHash, &rec.OutputHash, &rec.Modules, &rec.Forced, &rec.Diagnostic,
		); err != nil {
			return nil, zerr.Wrap(err, domain.ErrHistoryReadFailed.Error())
		}
		rec.StartedAt = time.Unix(0, startedAt)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		rec.Status = domain.BuildStatus(status)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, zerr.Wrap(err, domain.ErrHistoryReadFailed.Error())
	}
	return records, nil
}
