package wrapper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/payproc-server/pkg/config/memory"
)

func TestStringConfig(t *testing.T) {
	ctx := context.Background()
	mock := memory.NewConfig(nil)
	wrapper := NewStringConfig(mock, "https://api.stripe.com")

	// Return the default value when no override is set
	val, err := wrapper.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://api.stripe.com", val)

	// The overriden value is returned when set, from either source type
	mock.SetValue([]byte("http://127.0.0.1:1234"))
	assert.Equal(t, "http://127.0.0.1:1234", wrapper.Get(ctx))
	mock.SetValue("http://127.0.0.1:5678")
	assert.Equal(t, "http://127.0.0.1:5678", wrapper.Get(ctx))

	// The last observed config value is returned on error
	mock.InduceErrors()
	val, err = wrapper.GetSafe(ctx)
	require.Error(t, err)
	assert.Equal(t, "http://127.0.0.1:5678", val)

	// The default value is returned when the override no longer has a value
	mock.StopInducingErrors()
	mock.ClearValue()
	assert.Equal(t, "https://api.stripe.com", wrapper.Get(ctx))

	// Unsupported source value types keep the last value
	mock.SetValue(42)
	val, err = wrapper.GetSafe(ctx)
	assert.Equal(t, ErrUnsuportedConversion, err)
	assert.Equal(t, "https://api.stripe.com", val)
}

func TestUint64Config(t *testing.T) {
	ctx := context.Background()
	mock := memory.NewConfig(nil)
	wrapper := NewUint64Config(mock, 3)

	assert.EqualValues(t, 3, wrapper.Get(ctx))

	mock.SetValue([]byte("11000"))
	assert.EqualValues(t, 11000, wrapper.Get(ctx))

	mock.SetValue(uint64(5))
	assert.EqualValues(t, 5, wrapper.Get(ctx))

	mock.SetValue(7)
	assert.EqualValues(t, 7, wrapper.Get(ctx))

	// Parse failures keep the last value
	mock.SetValue([]byte("not a number"))
	val, err := wrapper.GetSafe(ctx)
	assert.Error(t, err)
	assert.EqualValues(t, 7, val)

	mock.SetValue(-1)
	val, err = wrapper.GetSafe(ctx)
	assert.Error(t, err)
	assert.EqualValues(t, 7, val)
}

func TestDurationConfig(t *testing.T) {
	ctx := context.Background()
	mock := memory.NewConfig(nil)
	wrapper := NewDurationConfig(mock, 720*time.Hour)

	assert.Equal(t, 720*time.Hour, wrapper.Get(ctx))

	mock.SetValue([]byte("15s"))
	assert.Equal(t, 15*time.Second, wrapper.Get(ctx))

	mock.SetValue(time.Minute)
	assert.Equal(t, time.Minute, wrapper.Get(ctx))

	mock.SetValue([]byte("tomorrow"))
	val, err := wrapper.GetSafe(ctx)
	assert.Error(t, err)
	assert.Equal(t, time.Minute, val)

	mock.Shutdown()
	_, err = wrapper.GetSafe(ctx)
	assert.Error(t, err)
}
