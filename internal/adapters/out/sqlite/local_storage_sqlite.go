// internal/adapters/out/sqlite/local_storage_sqlite.go
package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS local_storage (
	device_id  TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (device_id, key)
);
CREATE INDEX IF NOT EXISTS idx_local_storage_updated ON local_storage(updated_at);
`

// DB is a SQLite file holding local storage for one or more devices.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path. ":memory:" is accepted.
func Open(path string) (*DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite: path is empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrap(err, "sqlite: create directory")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite: open")
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "sqlite: migrate")
	}

	log.Printf("[sqlite] local storage ready path=%s", path)
	return &DB{db: db, path: path}, nil
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Device returns the storage scoped to deviceID.
func (d *DB) Device(deviceID string) *LocalStorage {
	return &LocalStorage{db: d.db, deviceID: strings.TrimSpace(deviceID)}
}

// PurgeOlderThan removes keys untouched since cutoff, across all devices.
func (d *DB) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := d.db.ExecContext(ctx, `DELETE FROM local_storage WHERE updated_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, errors.Wrap(err, "sqlite: purge")
	}
	return res.RowsAffected()
}

// LocalStorage is the key/value view of one device.
type LocalStorage struct {
	db       *sql.DB
	deviceID string
}

func (s *LocalStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM local_storage WHERE device_id = ? AND key = ?`,
		s.deviceID, key,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "sqlite: get %s", key)
	}
	return v, true, nil
}

func (s *LocalStorage) SetItem(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO local_storage (device_id, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(device_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.deviceID, key, value, time.Now().UTC(),
	)
	return errors.Wrapf(err, "sqlite: set %s", key)
}

func (s *LocalStorage) RemoveItem(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM local_storage WHERE device_id = ? AND key = ?`,
		s.deviceID, key,
	)
	return errors.Wrapf(err, "sqlite: remove %s", key)
}
