package async_expiry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/payproc-server/pkg/currency"
	preorderdata "github.com/code-payments/payproc-server/pkg/payproc/data/preorder"
	memory_preorder_store "github.com/code-payments/payproc-server/pkg/payproc/data/preorder/memory"
	"github.com/code-payments/payproc-server/pkg/payproc/preorder"
	"github.com/code-payments/payproc-server/pkg/testutil"
)

func TestSweepsAtStartAndOnSchedule(t *testing.T) {
	expirer := &mockExpirer{}
	s := New(expirer, withManualTestOverrides(&testOverrides{
		retention:   time.Hour,
		schedule:    "@every 1s",
		maxAttempts: 1,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Start(ctx)
	}()

	require.NoError(t, testutil.WaitFor(time.Second, 10*time.Millisecond, func() bool {
		return expirer.callCount() >= 1
	}))
	require.NoError(t, testutil.WaitFor(5*time.Second, 50*time.Millisecond, func() bool {
		return expirer.callCount() >= 2
	}))

	cancel()
	assert.Equal(t, context.Canceled, <-done)

	for _, retention := range expirer.retentions() {
		assert.Equal(t, time.Hour, retention)
	}
}

func TestSweepRetriesFailures(t *testing.T) {
	expirer := &mockExpirer{failures: 1}
	s := New(expirer, withManualTestOverrides(&testOverrides{
		retention:   time.Hour,
		schedule:    "@daily",
		maxAttempts: 3,
	}))

	s.(*service).sweep(context.Background())
	assert.Equal(t, 2, expirer.callCount())
}

func TestSweepGivesUp(t *testing.T) {
	expirer := &mockExpirer{failures: 10}
	s := New(expirer, withManualTestOverrides(&testOverrides{
		retention:   time.Hour,
		schedule:    "@daily",
		maxAttempts: 1,
	}))

	s.(*service).sweep(context.Background())
	assert.Equal(t, 1, expirer.callCount())
}

func TestInvalidSchedule(t *testing.T) {
	expirer := &mockExpirer{}
	s := New(expirer, withManualTestOverrides(&testOverrides{
		retention:   time.Hour,
		schedule:    "every day",
		maxAttempts: 1,
	}))

	assert.Error(t, s.Start(context.Background()))
	assert.Equal(t, 0, expirer.callCount())
}

func TestExpiresPreorders(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	store := memory_preorder_store.New()
	for _, record := range []*preorderdata.Record{
		{Ref: "KGTWA", RefNN: 11, Amount: "1", Currency: currency.EUR, CreatedAt: now.Add(-31 * 24 * time.Hour)},
		{Ref: "KGTWB", RefNN: 12, Amount: "1", Currency: currency.EUR, CreatedAt: now.Add(-time.Hour)},
	} {
		require.NoError(t, store.Put(ctx, record))
	}

	s := New(preorder.NewService(store), withManualTestOverrides(&testOverrides{
		retention:   defaultRetention,
		schedule:    defaultSchedule,
		maxAttempts: 1,
	}))
	s.(*service).sweep(ctx)

	_, err := store.Get(ctx, "KGTWA")
	assert.Equal(t, preorderdata.ErrNotFound, err)
	_, err = store.Get(ctx, "KGTWB")
	assert.NoError(t, err)
}

func TestSweepStopsOnCancellation(t *testing.T) {
	store := &cancellableStore{Store: memory_preorder_store.New()}
	s := New(preorder.NewService(store), withManualTestOverrides(&testOverrides{
		retention:   time.Hour,
		schedule:    "@daily",
		maxAttempts: 3,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	s.(*service).sweep(ctx)

	assert.Equal(t, 1, store.deleteCount())
	assert.True(t, time.Since(start) < time.Second)
}

// cancellableStore fails deletions with the context's error once it is done
type cancellableStore struct {
	preorderdata.Store

	mu      sync.Mutex
	deletes int
}

func (s *cancellableStore) DeleteUnpaidBefore(ctx context.Context, before time.Time) (uint64, error) {
	s.mu.Lock()
	s.deletes++
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.Store.DeleteUnpaidBefore(ctx, before)
}

func (s *cancellableStore) deleteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deletes
}

type mockExpirer struct {
	mu       sync.Mutex
	failures int
	calls    []time.Duration
}

func (e *mockExpirer) Expire(_ context.Context, retention time.Duration) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls = append(e.calls, retention)
	if len(e.calls) <= e.failures {
		return 0, errors.New("database is locked")
	}
	return 1, nil
}

func (e *mockExpirer) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.calls)
}

func (e *mockExpirer) retentions() []time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]time.Duration(nil), e.calls...)
}
