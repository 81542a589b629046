package stripe

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/code-payments/payproc-server/pkg/currency"
	"github.com/code-payments/payproc-server/pkg/dict"
	"github.com/code-payments/payproc-server/pkg/payproc/gateway"
)

const (
	minExpYear  = 2014
	maxExpYear  = 2199
	minExpMonth = 1
	maxExpMonth = 12
	minCvc      = 100
	maxCvc      = 9999
)

// tokenizeForm validates the card fields of d and moves them into the form.
// Each field is removed from d once it passed validation, so a failure leaves
// the remaining card fields in place. No request is made on failure.
func tokenizeForm(d *dict.Dict) (url.Values, error) {
	form := make(url.Values)

	if len(d.GetString("Number")) == 0 {
		return nil, missingValue("Number")
	}
	number, _ := d.Snatch("Number")
	form.Set("card[number]", number)

	for _, field := range []struct {
		key      string
		formKey  string
		min, max int
	}{
		{"Exp-Year", "card[exp_year]", minExpYear, maxExpYear},
		{"Exp-Month", "card[exp_month]", minExpMonth, maxExpMonth},
		{"Cvc", "card[cvc]", minCvc, maxCvc},
	} {
		value, err := intInRange(d, field.key, field.min, field.max)
		if err != nil {
			return nil, err
		}
		form.Set(field.formKey, strconv.Itoa(value))
		if err := d.Delete(field.key); err != nil {
			return nil, err
		}
	}

	if name := d.GetString("Name"); len(name) > 0 {
		form.Set("card[name]", name)
	}

	return form, nil
}

// chargeForm validates the charge fields of d and builds the form. Card-Token
// is removed from d once all required fields passed validation.
func chargeForm(d *dict.Dict) (url.Values, error) {
	form := make(url.Values)

	rawCurrency := d.GetString("Currency")
	if len(rawCurrency) == 0 {
		return nil, missingValue("Currency")
	}
	code, err := currency.ParseCode(rawCurrency)
	if err != nil {
		return nil, invalidValue("Currency")
	}
	form.Set("currency", strings.ToLower(code.String()))

	rawAmount := d.GetString("_amount")
	if len(rawAmount) == 0 {
		return nil, missingValue("_amount")
	}
	amount, err := strconv.ParseUint(rawAmount, 10, 63)
	if err != nil || amount == 0 {
		return nil, invalidValue("_amount")
	}
	form.Set("amount", strconv.FormatUint(amount, 10))

	if len(d.GetString("Card-Token")) == 0 {
		return nil, missingValue("Card-Token")
	}
	token, _ := d.Snatch("Card-Token")
	form.Set("card", token)

	if desc := d.GetString("Desc"); len(desc) > 0 {
		form.Set("description", desc)
	}

	if stmtDesc := d.GetString("Stmt-Desc"); len(stmtDesc) > 0 {
		form.Set("statement_descriptor", stmtDesc)
	}

	return form, nil
}

func intInRange(d *dict.Dict, key string, min, max int) (int, error) {
	if len(d.GetString(key)) == 0 {
		return 0, missingValue(key)
	}

	value := d.GetInt(key)
	if value < min || value > max {
		return 0, invalidValue(key)
	}
	return value, nil
}

func missingValue(key string) error {
	return errors.Wrapf(gateway.ErrMissingValue, "%s", key)
}

func invalidValue(key string) error {
	return errors.Wrapf(gateway.ErrInvalidValue, "%s", key)
}
