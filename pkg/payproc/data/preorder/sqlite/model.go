package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/code-payments/payproc-server/pkg/currency"
	sqliteutil "github.com/code-payments/payproc-server/pkg/database/sqlite"
	"github.com/code-payments/payproc-server/pkg/payproc/data/preorder"
	"github.com/code-payments/payproc-server/pkg/pointer"
)

const (
	tableName = "preorder"

	tableCreate = `CREATE TABLE IF NOT EXISTS ` + tableName + ` (
		ref      TEXT NOT NULL PRIMARY KEY,
		refnn    INTEGER NOT NULL,
		created  TEXT NOT NULL,
		paid     TEXT,
		npaid    INTEGER NOT NULL DEFAULT 0,
		amount   TEXT NOT NULL,
		currency TEXT NOT NULL,
		"desc"   TEXT,
		email    TEXT,
		meta     TEXT
	)`

	insertQuery = `INSERT INTO ` + tableName + `
		(ref, refnn, created, paid, npaid, amount, currency, "desc", email, meta)
		VALUES (:ref, :refnn, :created, :paid, :npaid, :amount, :currency, :desc, :email, :meta)`
)

type model struct {
	Ref   string `db:"ref"`
	RefNN uint8  `db:"refnn"`

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
		RefNN:    obj.RefNN,
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
		RefNN:     obj.RefNN,
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

func (m *model) dbPut(ctx context.Context, stmt *sqlx.NamedStmt) error {
	_, err := stmt.ExecContext(ctx, m)
	return sqliteutil.CheckPrimaryKeyViolation(err, preorder.ErrAlreadyExists)
}

func dbGet(ctx context.Context, db *sqlx.DB, ref string) (*model, error) {
	res := &model{}

	query := `SELECT ref, refnn, created, paid, npaid, amount, currency, "desc", email, meta FROM ` + tableName + `
		WHERE ref = ?`

	err := db.GetContext(ctx, res, query, ref)
	if err != nil {
		return nil, sqliteutil.CheckNoRows(err, preorder.ErrNotFound)
	}
	return res, nil
}

func dbDeleteUnpaidBefore(ctx context.Context, db *sqlx.DB, before time.Time) (uint64, error) {
	query := `DELETE FROM ` + tableName + `
		WHERE created < ? AND paid IS NULL`

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
