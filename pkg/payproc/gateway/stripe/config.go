package stripe

import (
	"time"

	"github.com/code-payments/payproc-server/pkg/config"
	"github.com/code-payments/payproc-server/pkg/config/env"
	"github.com/code-payments/payproc-server/pkg/config/memory"
	"github.com/code-payments/payproc-server/pkg/config/wrapper"
)

const (
	envConfigPrefix = "STRIPE_CLIENT_"

	BaseUrlConfigEnvName = envConfigPrefix + "BASE_URL"
	defaultBaseUrl       = "https://api.stripe.com"

	RequestTimeoutConfigEnvName = envConfigPrefix + "REQUEST_TIMEOUT"
	defaultRequestTimeout       = 15 * time.Second

	MaxAttemptsConfigEnvName = envConfigPrefix + "MAX_ATTEMPTS"
	defaultMaxAttempts       = 3

	RequestsPerSecondConfigEnvName = envConfigPrefix + "REQUESTS_PER_SECOND"
	defaultRequestsPerSecond       = 25
)

type conf struct {
	baseUrl           config.String
	requestTimeout    config.Duration
	maxAttempts       config.Uint64
	requestsPerSecond config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			baseUrl:           env.NewStringConfig(BaseUrlConfigEnvName, defaultBaseUrl),
			requestTimeout:    env.NewDurationConfig(RequestTimeoutConfigEnvName, defaultRequestTimeout),
			maxAttempts:       env.NewUint64Config(MaxAttemptsConfigEnvName, defaultMaxAttempts),
			requestsPerSecond: env.NewUint64Config(RequestsPerSecondConfigEnvName, defaultRequestsPerSecond),
		}
	}
}

type testOverrides struct {
	baseUrl     string
	maxAttempts uint64
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			baseUrl:           wrapper.NewStringConfig(memory.NewConfig(overrides.baseUrl), defaultBaseUrl),
			requestTimeout:    wrapper.NewDurationConfig(memory.NewConfig(5*time.Second), defaultRequestTimeout),
			maxAttempts:       wrapper.NewUint64Config(memory.NewConfig(overrides.maxAttempts), defaultMaxAttempts),
			requestsPerSecond: wrapper.NewUint64Config(memory.NewConfig(uint64(0)), defaultRequestsPerSecond),
		}
	}
}
