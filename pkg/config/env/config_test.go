package env

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/code-payments/payproc-server/pkg/config"
)

func TestConfigDoesntExist(t *testing.T) {
	const env = "ENV_CONFIG_TEST_VAR"
	t.Setenv(env, "value")

	v, err := NewConfig(env).Get(context.Background())
	assert.Equal(t, []byte("value"), v)
	assert.NoError(t, err)

	t.Setenv(env, "")

	v, err = NewConfig(env).Get(context.Background())
	assert.Nil(t, v)
	assert.Equal(t, config.ErrNoValue, err)
}

func TestTypedConfigs(t *testing.T) {
	t.Setenv("ENV_CONFIG_TEST_TIMEOUT", "3s")
	t.Setenv("ENV_CONFIG_TEST_ATTEMPTS", "7")

	assert.Equal(t, 3*time.Second, NewDurationConfig("env_config_test_timeout", time.Second).Get(context.Background()))
	assert.EqualValues(t, 7, NewUint64Config("ENV_CONFIG_TEST_ATTEMPTS", 1).Get(context.Background()))
	assert.Equal(t, "fallback", NewStringConfig("ENV_CONFIG_TEST_UNSET", "fallback").Get(context.Background()))
}
