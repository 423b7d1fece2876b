package sqlitekv

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/trezcool/darasa/core/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS keyvalue (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// Store is a sqlite-backed session.Repository: the durability boundary
// between app restarts. One file, one table.
type Store struct {
	db *sqlx.DB
}

var _ session.Repository = (*Store)(nil) // interface compliance check

func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %q", path)
	}
	if _, err = db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating keyvalue table")
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(key string) (string, error) {
	var val string
	err := s.db.Get(&val, "SELECT value FROM keyvalue WHERE key = ?", key)
	if err == sql.ErrNoRows {
		return "", session.ErrKeyNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "reading %q", key)
	}
	return val, nil
}

func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO keyvalue (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return errors.Wrapf(err, "writing %q", key)
}

func (s *Store) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM keyvalue WHERE key IN (?)", keys)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = s.db.Exec(s.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting keys")
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
