// Package gateway defines the card payment gateway used to tokenize and
// charge cards.
package gateway

import (
	"context"
	"errors"

	"github.com/code-payments/payproc-server/pkg/dict"
)

var (
	// ErrMissingValue and ErrInvalidValue are returned before any request is
	// made to the gateway.
	ErrMissingValue = errors.New("missing value")
	ErrInvalidValue = errors.New("invalid value")

	// ErrProtocolViolation is returned when a successful response lacks a
	// required field or carries one of the wrong type.
	ErrProtocolViolation = errors.New("gateway response violates protocol")

	// ErrRejected is returned when the gateway declined the request. The
	// reason is written to the record's failure and failure-mesg fields.
	ErrRejected = errors.New("gateway rejected request")

	// ErrTransport covers connection, read and decode failures, as well as
	// unexpected response statuses.
	ErrTransport = errors.New("gateway transport failure")
)

// TransportError returns an error matching ErrTransport whose Unwrap yields
// cause, so context cancellation stays detectable by callers.
func TransportError(cause error) error {
	return &transportError{cause: cause}
}

type transportError struct {
	cause error
}

func (e *transportError) Error() string {
	return ErrTransport.Error() + ": " + e.cause.Error()
}

func (e *transportError) Is(target error) bool {
	return target == ErrTransport
}

func (e *transportError) Unwrap() error {
	return e.cause
}

// Client performs card operations against a payment gateway. Operations read
// their inputs from, and write their results to, the provided record.
type Client interface {
	// Tokenize exchanges the card in the Number, Exp-Year, Exp-Month, Cvc and
	// optional Name fields for a gateway token. The card fields are removed
	// from the record as they are consumed. On success Token, Live and Last4
	// are written.
	Tokenize(ctx context.Context, d *dict.Dict) error

	// Charge charges _amount, in the smallest unit of Currency, to the card
	// behind Card-Token, which is consumed. Desc and Stmt-Desc are passed
	// through when present. On success Charge-Id, balance-transaction, Live,
	// Currency, _amount and Last4 are written.
	Charge(ctx context.Context, d *dict.Dict) error
}
