// Package snapshot records the modification times of files
// that have been successfully pushed to the remote.
//
// With a snapshot in play,
// a rerun can skip unchanged files
// even against servers whose listings carry no usable modify fact,
// or that reject MFMT.
// Deleting the snapshot file forces a full push.
package snapshot

import (
	"context"
	"database/sql"
	stderrs "errors"
	"time"

	"github.com/bobg/sqlutil"
	_ "github.com/mattn/go-sqlite3" // register the sqlite3 type for sql.Open
	"github.com/pkg/errors"

	"github.com/dolovcak/htpublish"
)

// Store is a sqlite-backed snapshot.
type Store struct {
	db *sql.DB
}

// Schema is the SQL that New executes.
// It creates the `files` table if it does not exist.
const Schema = `
CREATE TABLE IF NOT EXISTS files (
  path TEXT PRIMARY KEY NOT NULL,
  mtime TEXT NOT NULL
);
`

// New produces a new Store using `db` for storage.
// It expects to create the table `files`,
// or for that table already to exist with the correct schema.
// (See variable Schema.)
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	_, err := db.ExecContext(ctx, Schema)
	return &Store{db: db}, err
}

// Open opens (creating if necessary) a snapshot file.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening snapshot %s", path)
	}
	return New(ctx, db)
}

// ModTime gets the recorded modification time of a remote path.
// It returns htpublish.ErrNotFound when the path was never recorded.
func (s *Store) ModTime(ctx context.Context, path string) (time.Time, error) {
	const q = `SELECT mtime FROM files WHERE path = $1`

	var mtime string
	err := s.db.QueryRowContext(ctx, q, path).Scan(&mtime)
	if stderrs.Is(err, sql.ErrNoRows) {
		return time.Time{}, htpublish.ErrNotFound
	}
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "querying %s", path)
	}
	t, err := time.Parse(time.RFC3339, mtime)
	return t, errors.Wrapf(err, "parsing time %s", mtime)
}

// Record notes that a remote path was pushed with the given modification time.
func (s *Store) Record(ctx context.Context, path string, mtime time.Time) error {
	const q = `INSERT INTO files (path, mtime) VALUES ($1, $2) ON CONFLICT (path) DO UPDATE SET mtime = $2`

	_, err := s.db.ExecContext(ctx, q, path, mtime.UTC().Format(time.RFC3339))
	return errors.Wrapf(err, "recording %s", path)
}

// Forget drops the record for a remote path, if any.
func (s *Store) Forget(ctx context.Context, path string) error {
	const q = `DELETE FROM files WHERE path = $1`

	_, err := s.db.ExecContext(ctx, q, path)
	return errors.Wrapf(err, "forgetting %s", path)
}

// Prune drops every record whose path fails the keep predicate.
func (s *Store) Prune(ctx context.Context, keep func(path string) bool) error {
	const q = `SELECT path FROM files ORDER BY path`

	var doomed []string
	err := sqlutil.ForQueryRows(ctx, s.db, q, func(path string) {
		if !keep(path) {
			doomed = append(doomed, path)
		}
	})
	if err != nil {
		return errors.Wrap(err, "querying paths")
	}
	for _, path := range doomed {
		if err := s.Forget(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
