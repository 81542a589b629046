package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/code-payments/payproc-server/pkg/currency"
	pgutil "github.com/code-payments/payproc-server/pkg/database/postgres"
	"github.com/code-payments/payproc-server/pkg/payproc/data/preorder"
	"github.com/code-payments/payproc-server/pkg/pointer"
)

const (
	tableName = "payproc__core_preorder"

	// Timestamps use the same text layout as the SQLite store so the
	// expiry comparison behaves identically.
	tableCreate = `CREATE TABLE IF NOT EXISTS ` + tableName + ` (
		ref      TEXT NOT NULL PRIMARY KEY,
		refnn    INTEGER NOT NULL CHECK (refnn BETWEEN 10 AND 99),
		created  TEXT NOT NULL,
		paid     TEXT NULL,
		npaid    INTEGER NOT NULL DEFAULT 0,
		amount   TEXT NOT NULL,
		currency TEXT NOT NULL,
		"desc"   TEXT NULL,
		email    TEXT NULL,
		meta     TEXT NULL
	)`
)

type model struct {
	Ref   string `db:"ref"`
	RefNN int32  `db:"refnn"`

	Created string         `db:"created"`
	Paid    sql.NullString `db:"paid"`
	NPaid   int64          `db:"npaid"`

	Amount   string `db:"amount"`
	Currency string `db:"currency"`

	Desc  sql.NullString `db:"desc"`
	Email sql.NullString `db:"email"`
	Meta  sql.NullString `db:"meta"`
}

func toModel(obj *preorder.Record) (*model, error) {
	if err := obj.Validate(); err != nil {
		return nil, preorder.ErrInvalidRecord
	}

	if obj.CreatedAt.IsZero() {
		obj.CreatedAt = time.Now().UTC()
	}

	m := &model{
		Ref:      obj.Ref,
		RefNN:    int32(obj.RefNN),
		Created:  preorder.FormatTimestamp(obj.CreatedAt),
		NPaid:    int64(obj.NPaid),
		Amount:   obj.Amount,
		Currency: string(obj.Currency),
		Desc: sql.NullString{
			Valid:  obj.Desc != nil,
			String: *pointer.StringOrDefault(obj.Desc, ""),
		},
		Email: sql.NullString{
			Valid:  obj.Email != nil,
			String: *pointer.StringOrDefault(obj.Email, ""),
		},
		Meta: sql.NullString{
			Valid:  obj.Meta != nil,
			String: *pointer.StringOrDefault(obj.Meta, ""),
		},
	}
	if obj.PaidAt != nil {
		m.Paid = sql.NullString{Valid: true, String: preorder.FormatTimestamp(*obj.PaidAt)}
	}
	return m, nil
}

func fromModel(obj *model) (*preorder.Record, error) {
	createdAt, err := preorder.ParseTimestamp(obj.Created)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid created timestamp for preorder %s", obj.Ref)
	}

	var paidAt *time.Time
	if obj.Paid.Valid {
		parsed, err := preorder.ParseTimestamp(obj.Paid.String)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid paid timestamp for preorder %s", obj.Ref)
		}
		paidAt = &parsed
	}

	return &preorder.Record{
		Ref:       obj.Ref,
		RefNN:     uint8(obj.RefNN),
		Amount:    obj.Amount,
		Currency:  currency.Code(obj.Currency),
		Desc:      pointer.StringIfValid(obj.Desc.Valid, obj.Desc.String),
		Email:     pointer.StringIfValid(obj.Email.Valid, obj.Email.String),
		Meta:      pointer.StringIfValid(obj.Meta.Valid, obj.Meta.String),
		NPaid:     uint64(obj.NPaid),
		PaidAt:    paidAt,
		CreatedAt: createdAt,
	}, nil
}

func (m *model) dbPut(ctx context.Context, db *sqlx.DB) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `INSERT INTO ` + tableName + `
			(ref, refnn, created, paid, npaid, amount, currency, "desc", email, meta)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

		_, err := tx.ExecContext(
			ctx,
			query,
			m.Ref,
			m.RefNN,
			m.Created,
			m.Paid,
			m.NPaid,
			m.Amount,
			m.Currency,
			m.Desc,
			m.Email,
			m.Meta,
		)

		return pgutil.CheckUniqueViolation(err, preorder.ErrAlreadyExists)
	})
}

func dbGet(ctx context.Context, db *sqlx.DB, ref string) (*model, error) {
	res := &model{}

	query := `SELECT ref, refnn, created, paid, npaid, amount, currency, "desc", email, meta FROM ` + tableName + `
		WHERE ref = $1`

	err := db.GetContext(ctx, res, query, ref)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, preorder.ErrNotFound)
	}
	return res, nil
}

func dbDeleteUnpaidBefore(ctx context.Context, db *sqlx.DB, before time.Time) (uint64, error) {
	query := `DELETE FROM ` + tableName + `
		WHERE created < $1 AND paid IS NULL`

	res, err := db.ExecContext(ctx, query, preorder.FormatTimestamp(before))
	if err != nil {
		return 0, err
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return uint64(deleted), nil
}
