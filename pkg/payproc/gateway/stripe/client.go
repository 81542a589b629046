// Package stripe implements gateway.Client against the Stripe v1 API.
package stripe

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/payproc-server/pkg/dict"
	"github.com/code-payments/payproc-server/pkg/metrics"
	"github.com/code-payments/payproc-server/pkg/payproc/gateway"
	"github.com/code-payments/payproc-server/pkg/rate"
	"github.com/code-payments/payproc-server/pkg/retry"
	"github.com/code-payments/payproc-server/pkg/retry/backoff"
)

const (
	metricsStructName = "gateway.stripe.client"
)

const (
	tokensPath  = "/v1/tokens"
	chargesPath = "/v1/charges"

	idempotencyKeyHeaderName = "Idempotency-Key"

	maxResponseSize = 1 << 20
)

var errServerStatus = errors.New("server error status")

// API Documentation: https://stripe.com/docs/api
type client struct {
	log  *logrus.Entry
	conf *conf

	secretKey  string
	httpClient *http.Client
	limiter    rate.Limiter
	retrier    retry.Retrier
}

// NewClient returns a gateway.Client authenticating with the provided secret
// key.
func NewClient(secretKey string, configProvider ConfigProvider) gateway.Client {
	conf := configProvider()
	ctx := context.Background()

	maxAttempts := conf.maxAttempts.Get(ctx)
	if maxAttempts == 0 {
		maxAttempts = 1
	}

	return &client{
		log:       logrus.StandardLogger().WithField("type", "gateway/stripe"),
		conf:      conf,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: conf.requestTimeout.Get(ctx),
		},
		limiter: rate.NewLocalRateLimiter(float64(conf.requestsPerSecond.Get(ctx))),
		retrier: retry.NewRetrier(
			retry.NonRetriableErrors(context.Canceled, context.DeadlineExceeded),
			retry.Limit(uint(maxAttempts)),
			retry.BackoffWithJitter(backoff.BinaryExponential(500*time.Millisecond), 5*time.Second, 0.1),
		),
	}
}

// Tokenize implements gateway.Client.Tokenize
func (c *client) Tokenize(ctx context.Context, d *dict.Dict) (err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Tokenize")
	defer func() {
		tracer.OnError(err)
		tracer.End()
	}()

	log := c.log.WithField("method", "Tokenize")

	form, err := tokenizeForm(d)
	if err != nil {
		return err
	}

	status, body, err := c.post(ctx, tokensPath, form)
	if err != nil {
		log.WithError(err).Warn("failure calling stripe")
		return gateway.TransportError(err)
	}
	tracer.AddAttribute("status", status)

	resp, err := c.decodeResponse(log, d, status, body)
	if err != nil {
		return err
	}

	token, err := parseToken(resp)
	if err != nil {
		log.WithError(err).Warn("invalid stripe response")
		return err
	}

	return putFields(d,
		resultField{"Token", token.id},
		resultField{"Live", formatBool(token.live)},
		resultField{"Last4", token.last4},
	)
}

// Charge implements gateway.Client.Charge
func (c *client) Charge(ctx context.Context, d *dict.Dict) (err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Charge")
	defer func() {
		tracer.OnError(err)
		tracer.End()
	}()

	log := c.log.WithField("method", "Charge")

	form, err := chargeForm(d)
	if err != nil {
		return err
	}

	status, body, err := c.post(ctx, chargesPath, form)
	if err != nil {
		log.WithError(err).Warn("failure calling stripe")
		return gateway.TransportError(err)
	}
	tracer.AddAttribute("status", status)

	resp, err := c.decodeResponse(log, d, status, body)
	if err != nil {
		return err
	}

	charge, err := parseCharge(resp)
	if err != nil {
		log.WithError(err).Warn("invalid stripe response")
		return err
	}

	return putFields(d,
		resultField{"Charge-Id", charge.id},
		resultField{"balance-transaction", charge.balanceTransaction},
		resultField{"Live", formatBool(charge.live)},
		resultField{"Currency", charge.currency},
		resultField{"_amount", strconv.FormatInt(charge.amount, 10)},
		resultField{"Last4", charge.last4},
	)
}

// decodeResponse classifies the response by status. Successful responses are
// returned decoded. Rejections are written to d.
func (c *client) decodeResponse(log *logrus.Entry, d *dict.Dict, status int, body []byte) (object, error) {
	switch {
	case status == http.StatusOK:
		resp, err := parseObject(body)
		if err != nil {
			log.WithError(err).Warn("failure decoding stripe response")
			return nil, gateway.TransportError(err)
		}
		return resp, nil
	case status/100 == 4:
		resp, err := parseObject(body)
		if err != nil {
			log.WithError(err).WithField("status", status).Warn("failure decoding stripe error response")
			return nil, gateway.TransportError(err)
		}
		return nil, c.handleRejection(log.WithField("status", status), d, resp)
	default:
		log.WithField("status", status).Warn("unexpected stripe response status")
		return nil, errors.Wrapf(gateway.ErrTransport, "received status code %d", status)
	}
}

// handleRejection maps the error object of a rejected request to the failure
// and failure-mesg fields of d. It always returns an error wrapping
// gateway.ErrRejected.
func (c *client) handleRejection(log *logrus.Entry, d *dict.Dict, resp object) error {
	rejection, err := parseRejection(resp, log)
	if err != nil {
		log.WithError(err).Warn("no proper error object returned by stripe")
		return errors.Wrap(gateway.ErrRejected, err.Error())
	}

	message := rejection.message
	if len(message) > 100 {
		message = message[:100]
	}
	log.WithFields(logrus.Fields{
		"error_type": rejection.errorType,
		"code":       rejection.code,
		"message":    message,
	}).Info("stripe rejected request")

	fields := []resultField{{"failure", failureUnknown}}
	switch rejection.errorType {
	case invalidRequestErrorType:
		fields[0].value = failureInvalidRequest
	case apiErrorType:
		fields[0].value = failureBadRequest
	case cardErrorType:
		fields[0].value = failureCardError
		if len(rejection.code) > 0 {
			fields[0].value = rejection.code
		}
		if len(rejection.message) > 0 {
			fields = append(fields, resultField{"failure-mesg", rejection.message})
		}
	default:
		log.WithField("error_type", rejection.errorType).Warn("unknown stripe error type")
	}

	if err := putFields(d, fields...); err != nil {
		return err
	}

	return errors.Wrap(gateway.ErrRejected, rejection.errorType)
}

// post submits the form to path and returns the response status and body.
// Connection failures and server error statuses are retried with the same
// idempotency key, so a retried charge is never applied twice.
func (c *client) post(ctx context.Context, path string, form url.Values) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, errors.Wrap(err, "rate limit wait failed")
	}

	endpoint := strings.TrimSuffix(c.conf.baseUrl.Get(ctx), "/") + path
	encoded := form.Encode()
	idempotencyKey := uuid.NewString()

	var status int
	var body []byte
	_, err := c.retrier.Retry(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(encoded))
			if err != nil {
				return errors.Wrap(err, "failed to create request")
			}

			req.SetBasicAuth(c.secretKey, "")
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			req.Header.Set("Accept", "application/json")
			req.Header.Set(idempotencyKeyHeaderName, idempotencyKey)

			httpResp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer httpResp.Body.Close()

			body, err = io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
			if err != nil {
				return errors.Wrap(err, "failed to read response")
			}

			status = httpResp.StatusCode
			if status >= http.StatusInternalServerError {
				return errors.Wrapf(errServerStatus, "received status code %d", status)
			}
			return nil
		},
	)
	if err != nil && !errors.Is(err, errServerStatus) {
		return 0, nil, err
	}
	return status, body, nil
}

type resultField struct {
	key   string
	value string
}

func putFields(d *dict.Dict, fields ...resultField) error {
	for _, f := range fields {
		if err := d.Put(f.key, f.value); err != nil {
			return err
		}
	}
	return nil
}

func formatBool(value bool) string {
	if value {
		return "t"
	}
	return "f"
}
