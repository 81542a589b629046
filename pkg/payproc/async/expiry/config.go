package async_expiry

import (
	"time"

	"github.com/code-payments/payproc-server/pkg/config"
	"github.com/code-payments/payproc-server/pkg/config/env"
	"github.com/code-payments/payproc-server/pkg/config/memory"
	"github.com/code-payments/payproc-server/pkg/config/wrapper"
)

const (
	envConfigPrefix = "PREORDER_EXPIRY_SERVICE_"

	RetentionConfigEnvName = envConfigPrefix + "RETENTION"
	defaultRetention       = 30 * 24 * time.Hour

	ScheduleConfigEnvName = envConfigPrefix + "SCHEDULE"
	defaultSchedule       = "@daily"

	MaxAttemptsConfigEnvName = envConfigPrefix + "MAX_ATTEMPTS"
	defaultMaxAttempts       = 3
)

type conf struct {
	retention   config.Duration
	schedule    config.String
	maxAttempts config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			retention:   env.NewDurationConfig(RetentionConfigEnvName, defaultRetention),
			schedule:    env.NewStringConfig(ScheduleConfigEnvName, defaultSchedule),
			maxAttempts: env.NewUint64Config(MaxAttemptsConfigEnvName, defaultMaxAttempts),
		}
	}
}

type testOverrides struct {
	retention   time.Duration
	schedule    string
	maxAttempts uint64
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			retention:   wrapper.NewDurationConfig(memory.NewConfig(overrides.retention), defaultRetention),
			schedule:    wrapper.NewStringConfig(memory.NewConfig(overrides.schedule), defaultSchedule),
			maxAttempts: wrapper.NewUint64Config(memory.NewConfig(overrides.maxAttempts), defaultMaxAttempts),
		}
	}
}
