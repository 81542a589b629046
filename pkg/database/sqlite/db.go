// Package sqlite holds helpers shared by the SQLite backed stores.
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	_ "github.com/mattn/go-sqlite3"
)

const driverName = "sqlite3"

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
}

// Open opens, creating it if needed, the SQLite database at path and applies
// the pragmas every store expects.
//
// The pool is limited to a single connection. SQLite only has one writer, and
// callers serialize their own access to the handle.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverName, path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening '%s'", path)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "error connecting to '%s'", path)
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrap(err, fmt.Sprintf("error executing %q", pragma))
		}
	}

	return db, nil
}

// CheckNoRows maps sql.ErrNoRows to outErr
func CheckNoRows(inErr, outErr error) error {
	if inErr == sql.ErrNoRows {
		return outErr
	}
	return inErr
}
