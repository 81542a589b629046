package stripe

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/payproc-server/pkg/payproc/gateway"
)

const (
	invalidRequestErrorType = "invalid_request_error"
	apiErrorType            = "api_error"
	cardErrorType           = "card_error"
)

const (
	failureInvalidRequest = "invalid request to stripe"
	failureBadRequest     = "bad request to stripe"
	failureCardError      = "card error"
	failureUnknown        = "unknown error"
)

// object is a decoded JSON object whose members are only decoded once their
// type was checked.
type object map[string]json.RawMessage

func parseObject(body []byte) (object, error) {
	var obj object
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, errors.Wrap(err, "failed to decode response")
	}
	return obj, nil
}

func (o object) has(key string) bool {
	_, ok := o[key]
	return ok
}

func (o object) getString(key string) (string, bool) {
	raw, ok := o[key]
	if !ok || len(raw) == 0 || raw[0] != '"' {
		return "", false
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false
	}
	return value, true
}

func (o object) getBool(key string) (bool, bool) {
	switch raw := o[key]; {
	case bytes.Equal(raw, []byte("true")):
		return true, true
	case bytes.Equal(raw, []byte("false")):
		return false, true
	default:
		return false, false
	}
}

// getInt only accepts JSON numbers without a fraction or exponent
func (o object) getInt(key string) (int64, bool) {
	raw, ok := o[key]
	if !ok {
		return 0, false
	}

	value, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func (o object) getObject(key string) (object, bool) {
	raw, ok := o[key]
	if !ok || len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}

	var value object
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, false
	}
	return value, true
}

type token struct {
	id    string
	live  bool
	last4 string
}

func parseToken(resp object) (*token, error) {
	id, ok := resp.getString("id")
	if !ok {
		return nil, protocolViolation("id")
	}

	live, ok := resp.getBool("livemode")
	if !ok {
		return nil, protocolViolation("livemode")
	}

	card, _ := resp.getObject("card")
	last4, ok := card.getString("last4")
	if !ok {
		return nil, protocolViolation("card.last4")
	}

	return &token{
		id:    id,
		live:  live,
		last4: last4,
	}, nil
}

type charge struct {
	id                 string
	balanceTransaction string
	live               bool
	currency           string
	amount             int64
	last4              string
}

func parseCharge(resp object) (*charge, error) {
	id, ok := resp.getString("id")
	if !ok {
		return nil, protocolViolation("id")
	}

	live, ok := resp.getBool("livemode")
	if !ok {
		return nil, protocolViolation("livemode")
	}

	currency, ok := resp.getString("currency")
	if !ok {
		return nil, protocolViolation("currency")
	}

	amount, ok := resp.getInt("amount")
	if !ok {
		return nil, protocolViolation("amount")
	}

	// Optional, written as empty values when absent
	balanceTransaction, _ := resp.getString("balance_transaction")
	card, _ := resp.getObject("card")
	last4, _ := card.getString("last4")

	return &charge{
		id:                 id,
		balanceTransaction: balanceTransaction,
		live:               live,
		currency:           currency,
		amount:             amount,
		last4:              last4,
	}, nil
}

type rejection struct {
	errorType string
	message   string
	code      string
}

// parseRejection reads the {error: {type, message, code}} object. A message or
// code of the wrong type is logged and treated as empty.
func parseRejection(resp object, log *logrus.Entry) (*rejection, error) {
	errObj, ok := resp.getObject("error")
	if !ok {
		return nil, errors.New("missing error object")
	}

	errorType, ok := errObj.getString("type")
	if !ok {
		return nil, errors.New("error object has no type")
	}

	message, ok := errObj.getString("message")
	if !ok && errObj.has("message") {
		log.Warn("stripe error object has no proper message")
	}

	code, ok := errObj.getString("code")
	if !ok && errObj.has("code") {
		log.Warn("stripe error object has no proper code")
	}

	return &rejection{
		errorType: errorType,
		message:   message,
		code:      code,
	}, nil
}

func protocolViolation(field string) error {
	return errors.Wrapf(gateway.ErrProtocolViolation, "bad or missing '%s'", field)
}
