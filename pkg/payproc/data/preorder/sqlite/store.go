package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	sqliteutil "github.com/code-payments/payproc-server/pkg/database/sqlite"
	"github.com/code-payments/payproc-server/pkg/payproc/data/preorder"
)

// store keeps one database handle open for its lifetime. The handle, schema
// and prepared insert are created on first use. It is not safe for concurrent
// use.
type store struct {
	path string

	db     *sqlx.DB
	insert *sqlx.NamedStmt
}

// New returns a preorder.Store backed by the SQLite database at path
func New(path string) preorder.Store {
	return &store{
		path: path,
	}
}

func (s *store) open(ctx context.Context) error {
	if s.db != nil {
		return nil
	}

	db, err := sqliteutil.Open(s.path)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, tableCreate); err != nil {
		db.Close()
		return errors.Wrap(err, "error creating preorder table")
	}

	insert, err := db.PrepareNamedContext(ctx, insertQuery)
	if err != nil {
		db.Close()
		return errors.Wrap(err, "error preparing insert statement")
	}

	s.db = db
	s.insert = insert
	return nil
}

// Put implements preorder.Store.Put
func (s *store) Put(ctx context.Context, record *preorder.Record) error {
	m, err := toModel(record)
	if err != nil {
		return err
	}

	if err := s.open(ctx); err != nil {
		return err
	}

	return m.dbPut(ctx, s.insert)
}

// Get implements preorder.Store.Get
func (s *store) Get(ctx context.Context, ref string) (*preorder.Record, error) {
	if err := s.open(ctx); err != nil {
		return nil, err
	}

	m, err := dbGet(ctx, s.db, ref)
	if err != nil {
		return nil, err
	}
	return fromModel(m)
}

// DeleteUnpaidBefore implements preorder.Store.DeleteUnpaidBefore
func (s *store) DeleteUnpaidBefore(ctx context.Context, before time.Time) (uint64, error) {
	if err := s.open(ctx); err != nil {
		return 0, err
	}

	return dbDeleteUnpaidBefore(ctx, s.db, before)
}

// Close implements preorder.Store.Close
func (s *store) Close() error {
	if s.db == nil {
		return nil
	}

	stmtErr := s.insert.Close()
	dbErr := s.db.Close()

	s.insert = nil
	s.db = nil

	if stmtErr != nil {
		return errors.Wrap(stmtErr, "error closing insert statement")
	}
	return dbErr
}
