package resultcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	// sqlite3 registers the database/sql driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/lumos-dse/lumos/api/v1alpha1"
)

const schema = `CREATE TABLE IF NOT EXISTS sweep_records (
	key    TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	record TEXT NOT NULL
)`

// SQLite stores each record as a JSON row keyed by the design point key.
// Writes go straight to the database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open result cache %s: %w", path, err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("failed to initialize result cache %s: %w", path, err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (v1alpha1.SweepRecord, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM sweep_records WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return v1alpha1.SweepRecord{}, false, nil
	}
	if err != nil {
		return v1alpha1.SweepRecord{}, false, fmt.Errorf("failed to query result cache: %w", err)
	}
	var rec v1alpha1.SweepRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return v1alpha1.SweepRecord{}, false, fmt.Errorf("corrupt record for key %q: %w", key, err)
	}
	return rec, true, nil
}

func (s *SQLite) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sweep_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count result cache: %w", err)
	}
	return n, nil
}

func (s *SQLite) Put(ctx context.Context, key string, rec v1alpha1.SweepRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sweep_records (key, run_id, record) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET run_id = excluded.run_id, record = excluded.record`,
		key, rec.RunID, string(raw))
	if err != nil {
		return fmt.Errorf("failed to store record: %w", err)
	}
	return nil
}

func (s *SQLite) Flush(context.Context) error { return nil }

func (s *SQLite) Close() error { return s.db.Close() }
