package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/payproc-server/pkg/currency"
	"github.com/code-payments/payproc-server/pkg/payproc/data/preorder"
	"github.com/code-payments/payproc-server/pkg/pointer"
)

func RunTests(t *testing.T, s preorder.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s preorder.Store){
		testRoundTrip,
		testOptionalFields,
		testCollisionOnRefOnly,
		testInvalidRecord,
		testDeleteUnpaidBefore,
		testClose,
	} {
		tf(t, s)
		teardown()
	}
}

func testRoundTrip(t *testing.T, s preorder.Store) {
	t.Run("testRoundTrip", func(t *testing.T) {
		ctx := context.Background()

		actual, err := s.Get(ctx, "KGTWB")
		assert.Equal(t, preorder.ErrNotFound, err)
		assert.Nil(t, actual)

		expected := &preorder.Record{
			Ref:       "KGTWB",
			RefNN:     42,
			Amount:    "12.50",
			Currency:  currency.EUR,
			Desc:      pointer.String("Donation\nfor the project"),
			Email:     pointer.String("foo@example.com"),
			Meta:      pointer.String("Name=Jane&Country=DE"),
			CreatedAt: time.Date(2014, 3, 7, 8, 4, 5, 0, time.UTC),
		}
		cloned := expected.Clone()
		require.NoError(t, s.Put(ctx, expected))

		assert.Equal(t, preorder.ErrAlreadyExists, s.Put(ctx, expected))

		actual, err = s.Get(ctx, "KGTWB")
		require.NoError(t, err)
		assertEquivalentRecords(t, &cloned, actual)
		assert.EqualValues(t, 0, actual.NPaid)
		assert.Nil(t, actual.PaidAt)
	})
}

func testOptionalFields(t *testing.T, s preorder.Store) {
	t.Run("testOptionalFields", func(t *testing.T) {
		ctx := context.Background()

		expected := &preorder.Record{
			Ref:       "PLMNB",
			RefNN:     10,
			Amount:    "5",
			Currency:  currency.EUR,
			CreatedAt: time.Now(),
		}
		cloned := expected.Clone()
		require.NoError(t, s.Put(ctx, expected))

		actual, err := s.Get(ctx, "PLMNB")
		require.NoError(t, err)
		assertEquivalentRecords(t, &cloned, actual)
		assert.Nil(t, actual.Desc)
		assert.Nil(t, actual.Email)
		assert.Nil(t, actual.Meta)
	})
}

func testCollisionOnRefOnly(t *testing.T, s preorder.Store) {
	t.Run("testCollisionOnRefOnly", func(t *testing.T) {
		ctx := context.Background()

		record := &preorder.Record{
			Ref:       "KGTWB",
			RefNN:     42,
			Amount:    "1.00",
			Currency:  currency.EUR,
			CreatedAt: time.Now(),
		}
		require.NoError(t, s.Put(ctx, record))

		// Same suffix, different ref
		record = &preorder.Record{
			Ref:       "KGTWC",
			RefNN:     42,
			Amount:    "1.00",
			Currency:  currency.EUR,
			CreatedAt: time.Now(),
		}
		require.NoError(t, s.Put(ctx, record))

		// Same ref, different suffix
		record = &preorder.Record{
			Ref:       "KGTWB",
			RefNN:     43,
			Amount:    "2.00",
			Currency:  currency.EUR,
			CreatedAt: time.Now(),
		}
		assert.Equal(t, preorder.ErrAlreadyExists, s.Put(ctx, record))

		actual, err := s.Get(ctx, "KGTWB")
		require.NoError(t, err)
		assert.EqualValues(t, 42, actual.RefNN)
		assert.Equal(t, "1.00", actual.Amount)
	})
}

func testInvalidRecord(t *testing.T, s preorder.Store) {
	t.Run("testInvalidRecord", func(t *testing.T) {
		ctx := context.Background()

		record := &preorder.Record{
			Ref:       "KGTWB",
			RefNN:     42,
			Amount:    "abc",
			Currency:  currency.EUR,
			CreatedAt: time.Now(),
		}
		assert.Equal(t, preorder.ErrInvalidRecord, s.Put(ctx, record))

		_, err := s.Get(ctx, "KGTWB")
		assert.Equal(t, preorder.ErrNotFound, err)
	})
}

func testDeleteUnpaidBefore(t *testing.T, s preorder.Store) {
	t.Run("testDeleteUnpaidBefore", func(t *testing.T) {
		ctx := context.Background()

		now := time.Now().UTC()
		cutoff := now.Add(-30 * 24 * time.Hour)

		for _, record := range []*preorder.Record{
			// Old and unpaid
			{Ref: "AAAAA", RefNN: 11, Amount: "1", Currency: currency.EUR, CreatedAt: cutoff.Add(-time.Hour)},
			{Ref: "AAAAB", RefNN: 12, Amount: "1", Currency: currency.EUR, CreatedAt: cutoff.Add(-365 * 24 * time.Hour)},
			// Old but paid
			{Ref: "AAAAC", RefNN: 13, Amount: "1", Currency: currency.EUR, CreatedAt: cutoff.Add(-time.Hour), NPaid: 1, PaidAt: pointer.Time(now)},
			// Recent
			{Ref: "AAAAD", RefNN: 14, Amount: "1", Currency: currency.EUR, CreatedAt: cutoff.Add(time.Hour)},
			{Ref: "AAAAE", RefNN: 15, Amount: "1", Currency: currency.EUR, CreatedAt: now},
		} {
			require.NoError(t, s.Put(ctx, record))
		}

		deleted, err := s.DeleteUnpaidBefore(ctx, cutoff)
		require.NoError(t, err)
		assert.EqualValues(t, 2, deleted)

		for _, ref := range []string{"AAAAA", "AAAAB"} {
			_, err := s.Get(ctx, ref)
			assert.Equal(t, preorder.ErrNotFound, err)
		}

		for _, ref := range []string{"AAAAC", "AAAAD", "AAAAE"} {
			_, err := s.Get(ctx, ref)
			assert.NoError(t, err)
		}

		paid, err := s.Get(ctx, "AAAAC")
		require.NoError(t, err)
		assert.EqualValues(t, 1, paid.NPaid)
		require.NotNil(t, paid.PaidAt)
		assert.Equal(t, now.Unix(), paid.PaidAt.Unix())

		deleted, err = s.DeleteUnpaidBefore(ctx, cutoff)
		require.NoError(t, err)
		assert.EqualValues(t, 0, deleted)
	})
}

func testClose(t *testing.T, s preorder.Store) {
	t.Run("testClose", func(t *testing.T) {
		ctx := context.Background()

		record := &preorder.Record{
			Ref:       "KGTWB",
			RefNN:     42,
			Amount:    "1.00",
			Currency:  currency.EUR,
			CreatedAt: time.Now(),
		}
		require.NoError(t, s.Put(ctx, record))

		require.NoError(t, s.Close())
		require.NoError(t, s.Close())

		_, err := s.Get(ctx, "KGTWB")
		require.NoError(t, err)

		assert.Equal(t, preorder.ErrAlreadyExists, s.Put(ctx, record))
	})
}

func assertEquivalentRecords(t *testing.T, obj1, obj2 *preorder.Record) {
	assert.Equal(t, obj1.Ref, obj2.Ref)
	assert.Equal(t, obj1.RefNN, obj2.RefNN)
	assert.Equal(t, obj1.Amount, obj2.Amount)
	assert.Equal(t, obj1.Currency, obj2.Currency)
	assert.EqualValues(t, obj1.Desc, obj2.Desc)
	assert.EqualValues(t, obj1.Email, obj2.Email)
	assert.EqualValues(t, obj1.Meta, obj2.Meta)
	assert.Equal(t, obj1.CreatedAt.Unix(), obj2.CreatedAt.Unix())
}
