package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/payproc-server/pkg/currency"
	"github.com/code-payments/payproc-server/pkg/payproc/data/preorder"
	"github.com/code-payments/payproc-server/pkg/payproc/data/preorder/tests"
)

func TestPreorderSqliteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preorder.db")

	testStore := New(path)
	teardown := func() {
		require.NoError(t, testStore.Close())
		for _, suffix := range []string{"", "-wal", "-shm"} {
			if err := os.Remove(path + suffix); err != nil {
				require.True(t, os.IsNotExist(err))
			}
		}
	}
	tests.RunTests(t, testStore, teardown)
}

func TestPreorderSqliteStore_LazyOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preorder.db")

	testStore := New(path)
	defer testStore.Close()

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	_, err = testStore.Get(context.Background(), "KGTWB")
	assert.Equal(t, preorder.ErrNotFound, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestPreorderSqliteStore_PersistsAcrossHandles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "preorder.db")

	first := New(path)
	require.NoError(t, first.Put(ctx, &preorder.Record{
		Ref:       "KGTWB",
		RefNN:     42,
		Amount:    "12.50",
		Currency:  currency.EUR,
		CreatedAt: time.Now(),
	}))
	require.NoError(t, first.Close())

	second := New(path)
	defer second.Close()

	actual, err := second.Get(ctx, "KGTWB")
	require.NoError(t, err)
	assert.Equal(t, "12.50", actual.Amount)
}

func TestPreorderSqliteStore_Unavailable(t *testing.T) {
	testStore := New(filepath.Join(t.TempDir(), "missing", "preorder.db"))

	err := testStore.Put(context.Background(), &preorder.Record{
		Ref:       "KGTWB",
		RefNN:     42,
		Amount:    "12.50",
		Currency:  currency.EUR,
		CreatedAt: time.Now(),
	})
	require.Error(t, err)
	assert.NotEqual(t, preorder.ErrAlreadyExists, err)
	assert.NoError(t, testStore.Close())
}
