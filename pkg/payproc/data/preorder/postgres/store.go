package postgres

import (
	"context"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/code-payments/payproc-server/pkg/payproc/data/preorder"
)

type store struct {
	db *sqlx.DB

	schemaMu    sync.Mutex
	schemaReady bool
}

// New returns a preorder.Store backed by Postgres. The connection pool is
// owned by the caller. The preorder table is created on first use.
func New(db *sqlx.DB) preorder.Store {
	return &store{
		db: db,
	}
}

func (s *store) ensureSchema(ctx context.Context) error {
	s.schemaMu.Lock()
	defer s.schemaMu.Unlock()

	if s.schemaReady {
		return nil
	}

	if _, err := s.db.ExecContext(ctx, tableCreate); err != nil {
		return errors.Wrap(err, "error creating preorder table")
	}

	s.schemaReady = true
	return nil
}

// Put implements preorder.Store.Put
func (s *store) Put(ctx context.Context, record *preorder.Record) error {
	m, err := toModel(record)
	if err != nil {
		return err
	}

	if err := s.ensureSchema(ctx); err != nil {
		return err
	}

	return m.dbPut(ctx, s.db)
}

// Get implements preorder.Store.Get
func (s *store) Get(ctx context.Context, ref string) (*preorder.Record, error) {
	if err := s.ensureSchema(ctx); err != nil {
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
	if err := s.ensureSchema(ctx); err != nil {
		return 0, err
	}

	return dbDeleteUnpaidBefore(ctx, s.db, before)
}

// Close implements preorder.Store.Close. The pool belongs to the caller and
// is left open.
func (s *store) Close() error {
	return nil
}
