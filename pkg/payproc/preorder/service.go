// Package preorder mints preorder references and stores preorders under a
// single process-wide lock.
package preorder

import (
	"context"
	"crypto/rand"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/payproc-server/pkg/currency"
	"github.com/code-payments/payproc-server/pkg/dict"
	"github.com/code-payments/payproc-server/pkg/metrics"
	preorderdata "github.com/code-payments/payproc-server/pkg/payproc/data/preorder"
	"github.com/code-payments/payproc-server/pkg/retry"
)

const (
	metricsStructName = "preorder.service"

	// Currency is the only currency preorders are stored in
	Currency = currency.EUR
)

// maxInsertAttempts bounds the collision retries to roughly 0.1% of the
// reference keyspace, rounded down to a thousand.
const maxInsertAttempts = refKeyspace / 1000 / 1000 * 1000

var (
	ErrRefSpaceExhausted = errors.New("preorder reference space exhausted")
	ErrStoreUnavailable  = errors.New("preorder store unavailable")
)

// Service stores and loads preorders described by protocol records.
//
// All access to the underlying store is serialized by one lock, and the
// store's handle is kept open between calls.
type Service struct {
	log *logrus.Entry

	mu    sync.Mutex
	store preorderdata.Store

	random io.Reader
	now    func() time.Time
}

// Option configures a Service
type Option func(s *Service)

// WithRandom overrides the random source used to generate references
func WithRandom(r io.Reader) Option {
	return func(s *Service) {
		s.random = r
	}
}

// WithClock overrides the clock used for the created timestamp and expiry
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store preorderdata.Store, opts ...Option) *Service {
	s := &Service{
		log:    logrus.StandardLogger().WithField("type", "preorder/service"),
		store:  store,
		random: rand.Reader,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Store inserts a new preorder built from the Amount, Desc, Email and
// Meta[name] fields of d under a freshly generated reference. On success the
// reference is written to d as SEPA-Ref.
//
// References that collide with an existing preorder are discarded and a new
// one is generated, up to maxInsertAttempts times.
func (s *Service) Store(ctx context.Context, d *dict.Dict) (err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Store")
	defer func() {
		tracer.OnError(err)
		tracer.End()
	}()

	log := s.log.WithField("method", "Store")

	amount := d.GetString("Amount")
	desc, hasDesc := d.Get("Desc")
	email, hasEmail := d.Get("Email")
	meta := encodeMeta(d)

	s.mu.Lock()
	defer s.mu.Unlock()

	var ref Ref
	attempts, err := retry.Retry(
		func() error {
			var err error
			ref, err = GenerateRef(s.random)
			if err != nil {
				return err
			}

			record := &preorderdata.Record{
				Ref:       ref.Prefix,
				RefNN:     ref.Suffix,
				Amount:    amount,
				Currency:  Currency,
				Meta:      meta,
				CreatedAt: s.now(),
			}
			if hasDesc {
				record.Desc = &desc
			}
			if hasEmail {
				record.Email = &email
			}

			return s.store.Put(ctx, record)
		},
		retry.RetriableErrors(preorderdata.ErrAlreadyExists),
		retry.Limit(uint(maxInsertAttempts)),
	)
	tracer.AddAttribute("attempts", attempts)

	switch {
	case err == nil:
	case errors.Is(err, preorderdata.ErrAlreadyExists):
		log.WithField("attempts", attempts).Error("preorder reference space exhausted")
		return ErrRefSpaceExhausted
	case errors.Is(err, preorderdata.ErrInvalidRecord):
		return err
	default:
		log.WithError(err).Error("failure inserting preorder")
		return storeUnavailable(err)
	}

	if attempts > 1 {
		log.WithField("attempts", attempts).Debug("preorder reference collided")
	}

	return d.Put("SEPA-Ref", ref.String())
}

// Get loads the preorder referenced by the SEPA-Ref field of d and writes its
// Amount, Currency, Desc, Email, Created, Paid, N-Paid and Meta[name] fields
// back into d. Optional fields that were never set are not written.
func (s *Service) Get(ctx context.Context, d *dict.Dict) (err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Get")
	defer func() {
		tracer.OnError(err)
		tracer.End()
	}()

	ref, err := ParseRef(d.GetString("SEPA-Ref"))
	if err != nil {
		return err
	}

	s.mu.Lock()
	record, err := s.store.Get(ctx, ref.Prefix)
	s.mu.Unlock()

	switch {
	case err == nil:
	case errors.Is(err, preorderdata.ErrNotFound):
		return err
	default:
		s.log.WithField("method", "Get").WithError(err).Error("failure loading preorder")
		return storeUnavailable(err)
	}

	if record.RefNN != ref.Suffix {
		return preorderdata.ErrNotFound
	}

	fields := []field{
		{"Amount", record.Amount},
		{"Currency", record.Currency.String()},
	}
	if record.Desc != nil {
		fields = append(fields, field{"Desc", *record.Desc})
	}
	if record.Email != nil {
		fields = append(fields, field{"Email", *record.Email})
	}
	fields = append(fields, field{"Created", preorderdata.FormatTimestamp(record.CreatedAt)})
	if record.PaidAt != nil {
		fields = append(fields, field{"Paid", preorderdata.FormatTimestamp(*record.PaidAt)})
	}
	fields = append(fields, field{"N-Paid", strconv.FormatUint(record.NPaid, 10)})

	for _, f := range fields {
		if err := d.Put(f.key, f.value); err != nil {
			return err
		}
	}

	if record.Meta != nil {
		if err := decodeMeta(*record.Meta, d); err != nil {
			s.log.WithField("method", "Get").WithError(err).Warn("ignoring malformed preorder meta")
		}
	}

	return nil
}

// Expire deletes preorders older than retention that were never paid,
// returning how many were deleted.
func (s *Service) Expire(ctx context.Context, retention time.Duration) (deleted uint64, err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Expire")
	defer func() {
		tracer.OnError(err)
		tracer.End()
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	deleted, err = s.store.DeleteUnpaidBefore(ctx, s.now().Add(-retention))
	if err != nil {
		s.log.WithField("method", "Expire").WithError(err).Error("failure expiring preorders")
		return 0, storeUnavailable(err)
	}

	tracer.AddAttribute("deleted", deleted)
	return deleted, nil
}

// Close releases the store's handle. It is reopened by the next call.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.Close()
}

// unavailableError matches ErrStoreUnavailable while keeping the store's
// error reachable through Unwrap.
type unavailableError struct {
	cause error
}

func storeUnavailable(cause error) error {
	return &unavailableError{cause: cause}
}

func (e *unavailableError) Error() string {
	return ErrStoreUnavailable.Error() + ": " + e.cause.Error()
}

func (e *unavailableError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

func (e *unavailableError) Unwrap() error {
	return e.cause
}

type field struct {
	key   string
	value string
}
