package preorder

import (
	"errors"
	"time"

	"github.com/code-payments/payproc-server/pkg/currency"
	"github.com/code-payments/payproc-server/pkg/pointer"
)

const (
	// RefLength is the length of the unique part of a preorder reference
	RefLength = 5

	MinRefNN = 10
	MaxRefNN = 99

	// TimestampLayout is the textual layout of the created and paid columns.
	// Values are always UTC with second resolution, so they sort and compare
	// lexically.
	TimestampLayout = "2006-01-02 15:04:05"
)

type Record struct {
	Ref   string
	RefNN uint8

	Amount   string
	Currency currency.Code

	Desc  *string
	Email *string
	Meta  *string

	NPaid  uint64
	PaidAt *time.Time

	CreatedAt time.Time
}

func (r *Record) Validate() error {
	if len(r.Ref) != RefLength {
		return errors.New("ref must be 5 characters")
	}

	if r.RefNN < MinRefNN || r.RefNN > MaxRefNN {
		return errors.New("refnn must be in the range [10, 99]")
	}

	if len(r.Currency) == 0 {
		return errors.New("currency is required")
	}

	if err := currency.ValidateAmount(r.Amount, r.Currency); err != nil {
		return errors.New("amount is invalid")
	}

	if r.Meta != nil && len(*r.Meta) == 0 {
		return errors.New("meta cannot be empty when provided")
	}

	if r.NPaid > 0 && r.PaidAt == nil {
		return errors.New("paid timestamp is required when payments exist")
	}

	return nil
}

func (r *Record) Clone() Record {
	return Record{
		Ref:   r.Ref,
		RefNN: r.RefNN,

		Amount:   r.Amount,
		Currency: r.Currency,

		Desc:  pointer.StringCopy(r.Desc),
		Email: pointer.StringCopy(r.Email),
		Meta:  pointer.StringCopy(r.Meta),

		NPaid:  r.NPaid,
		PaidAt: pointer.TimeCopy(r.PaidAt),

		CreatedAt: r.CreatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	dst.Ref = r.Ref
	dst.RefNN = r.RefNN

	dst.Amount = r.Amount
	dst.Currency = r.Currency

	dst.Desc = pointer.StringCopy(r.Desc)
	dst.Email = pointer.StringCopy(r.Email)
	dst.Meta = pointer.StringCopy(r.Meta)

	dst.NPaid = r.NPaid
	dst.PaidAt = pointer.TimeCopy(r.PaidAt)

	dst.CreatedAt = r.CreatedAt
}

// FormatTimestamp renders t in TimestampLayout
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a value rendered by FormatTimestamp
func ParseTimestamp(value string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, value, time.UTC)
}
