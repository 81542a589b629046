package currency

import (
	"strings"
)

// ValidateAmount checks that amount is a non-negative decimal string, such as
// "12" or "12.50", with no more fractional digits than the currency allows.
func ValidateAmount(amount string, code Code) error {
	whole, frac, hasPoint := strings.Cut(amount, ".")
	if len(whole) == 0 || !isDigits(whole) {
		return ErrInvalidAmount
	}

	if hasPoint {
		if len(frac) == 0 || !isDigits(frac) || len(frac) > GetDecimals(code) {
			return ErrInvalidAmount
		}
	}
	return nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
