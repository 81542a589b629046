// Package currency provides ISO 4217 currency codes and amount helpers.
package currency

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrInvalidCode   = errors.New("invalid currency code")
	ErrInvalidAmount = errors.New("invalid amount")
)

// Code is an upper case ISO 4217 alphabetic currency code
type Code string

const (
	CHF Code = "CHF"
	EUR Code = "EUR"
	GBP Code = "GBP"
	JPY Code = "JPY"
	KWD Code = "KWD"
	USD Code = "USD"
)

// ParseCode normalizes s to upper case and checks that it is a well formed
// three letter code. It does not check the code against the ISO registry.
func ParseCode(s string) (Code, error) {
	if len(s) != 3 {
		return "", ErrInvalidCode
	}

	upper := strings.ToUpper(s)
	for i := 0; i < len(upper); i++ {
		if upper[i] < 'A' || upper[i] > 'Z' {
			return "", ErrInvalidCode
		}
	}
	return Code(upper), nil
}

func (c Code) String() string {
	return string(c)
}
