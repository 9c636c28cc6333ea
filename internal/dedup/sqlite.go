package dedup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS fingerprints (
	fingerprint  TEXT PRIMARY KEY,
	detection_id TEXT NOT NULL,
	first_seen   INTEGER NOT NULL,
	last_seen    INTEGER NOT NULL,
	count        INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fingerprints_last_seen ON fingerprints(last_seen);
`

// SQLiteStore is a recent-fingerprint cache backed by SQLite, for callers
// that need duplicate suppression to survive restarts or span processes.
// Timestamps are stored as Unix nanoseconds.
type SQLiteStore struct {
	db     *sql.DB
	window time.Duration
}

// OpenSQLiteStore opens (creating if necessary) a fingerprint database at
// path. A non-positive window falls back to DefaultWindow.
func OpenSQLiteStore(path string, window time.Duration) (*SQLiteStore, error) {
	if window <= 0 {
		window = DefaultWindow
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fingerprint database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize fingerprint schema: %w", err)
	}

	return &SQLiteStore{db: db, window: window}, nil
}

// Window returns the configured duplicate window.
func (s *SQLiteStore) Window() time.Duration {
	return s.window
}

// Observe records a fingerprint observation and reports whether it is a
// duplicate within the window. The check and the write share one database
// transaction, so concurrent observations of the same fingerprint yield
// exactly one non-duplicate.
func (s *SQLiteStore) Observe(ctx context.Context, fingerprint, detectionID string, at time.Time) (duplicate bool, err error) {
	if fingerprint == "" {
		return false, fmt.Errorf("fingerprint cannot be empty")
	}
	if detectionID == "" {
		return false, fmt.Errorf("detection ID cannot be empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var lastSeen int64
	row := tx.QueryRowContext(ctx,
		`SELECT last_seen FROM fingerprints WHERE fingerprint = ?`, fingerprint)
	switch scanErr := row.Scan(&lastSeen); {
	case scanErr == nil:
		duplicate = within(at, time.Unix(0, lastSeen), s.window)
	case errors.Is(scanErr, sql.ErrNoRows):
		duplicate = false
	default:
		err = fmt.Errorf("failed to query fingerprint: %w", scanErr)
		return false, err
	}

	if duplicate {
		_, err = tx.ExecContext(ctx,
			`UPDATE fingerprints SET last_seen = ?, count = count + 1 WHERE fingerprint = ?`,
			at.UnixNano(), fingerprint)
	} else {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO fingerprints (fingerprint, detection_id, first_seen, last_seen, count)
			 VALUES (?, ?, ?, ?, 1)
			 ON CONFLICT(fingerprint) DO UPDATE SET
				detection_id = excluded.detection_id,
				first_seen = excluded.first_seen,
				last_seen = excluded.last_seen,
				count = 1`,
			fingerprint, detectionID, at.UnixNano(), at.UnixNano())
	}
	if err != nil {
		err = fmt.Errorf("failed to record fingerprint: %w", err)
		return false, err
	}

	if err = tx.Commit(); err != nil {
		err = fmt.Errorf("failed to commit fingerprint transaction: %w", err)
		return false, err
	}
	return duplicate, nil
}

// Sweep removes records whose last observation is older than the window
// relative to now, and returns how many were removed.
func (s *SQLiteStore) Sweep(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-s.window).UnixNano()
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM fingerprints WHERE last_seen < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep fingerprints: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count swept fingerprints: %w", err)
	}
	return removed, nil
}

// Len returns the number of tracked fingerprints.
func (s *SQLiteStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fingerprints`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count fingerprints: %w", err)
	}
	return n, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
