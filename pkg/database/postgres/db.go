// Package pg holds helpers shared by the Postgres backed stores.
package pg

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	_ "github.com/jackc/pgx/v4/stdlib" //nolint:revive
)

const driverName = "pgx"

// Open connects to the Postgres database at the provided URL
func Open(ctx context.Context, databaseUrl string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverName, databaseUrl)
	if err != nil {
		return nil, errors.Wrap(err, "error opening postgres connection")
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "error connecting to postgres")
	}

	return db, nil
}

// ExecuteInTx runs fn within a new transaction at the provided isolation
// level. The transaction is committed when fn succeeds, and rolled back
// otherwise.
func ExecuteInTx(ctx context.Context, db *sqlx.DB, isolation sql.IsolationLevel, fn func(tx *sqlx.Tx) error) error {
	if isolation == sql.LevelDefault {
		isolation = sql.LevelReadCommitted // Postgres default
	}

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{
		Isolation: isolation,
	})
	if err != nil {
		return err
	}

	err = fn(tx)
	if err != nil {
		// We always need to execute a Rollback() so sql.DB releases the connection.
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return errors.Wrap(rollbackErr, "failed to rollback transaction")
		}
		return err
	}
	return tx.Commit()
}
