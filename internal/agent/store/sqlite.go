package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/proposal-review/advisor/internal/agent/model"
	errx "github.com/proposal-review/advisor/internal/core/error"
	logx "github.com/proposal-review/advisor/pkg/logger"
)

// SQLiteStore keeps the dataset in a single key/value table.
type SQLiteStore struct {
	db   *sql.DB
	keys Keys
}

// OpenSQLite opens (or creates) advisor.db in dataDir. Pass ":memory:" for an
// in-memory database.
func OpenSQLite(dataDir string, keys Keys) (*SQLiteStore, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "advisor.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// One connection: an in-memory database lives per connection, and it
	// avoids "database is locked" on file databases.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS dataset_kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating dataset table: %w", err)
	}

	return &SQLiteStore{db: db, keys: keys}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context) (model.StoredDataset, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM dataset_kv WHERE key IN (?, ?, ?)`,
		s.keys.Records, s.keys.Budget, s.keys.Schedule)
	if err != nil {
		logx.Error().Err(err).Msg("failed to query dataset from sqlite")
		return model.StoredDataset{}, errx.WrapStore(err)
	}
	defer rows.Close()

	found := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return model.StoredDataset{}, errx.WrapStore(fmt.Errorf("scanning row: %w", err))
		}
		found[k] = v
	}
	if err := rows.Err(); err != nil {
		return model.StoredDataset{}, errx.WrapStore(err)
	}

	return s.keys.decode(found)
}

func (s *SQLiteStore) Save(ctx context.Context, snapshot model.DatasetSnapshot) error {
	values, err := s.keys.encode(snapshot)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errx.WrapStore(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback()

	for k, v := range values {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO dataset_kv (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, v); err != nil {
			logx.Error().Err(err).Str("key", k).Msg("failed to upsert dataset value")
			return errx.WrapStore(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return errx.WrapStore(fmt.Errorf("commit: %w", err))
	}
	return nil
}

var _ Store = (*SQLiteStore)(nil)
