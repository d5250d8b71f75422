package observability

import (
	"testing"
	"time"

	"github.com/smallbiznis/solarops/internal/config"
	"github.com/stretchr/testify/assert"
)

func clearObservabilityEnv(t *testing.T) {
	for _, key := range []string{"OTEL_SERVICE_NAME", "DEPLOYMENT_ENV", "SERVICE_VERSION", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearObservabilityEnv(t)
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("OTEL_ENABLED", "")
	t.Setenv("HTTP_SLOW_REQUEST_MS", "")
	t.Setenv("OTEL_SAMPLING_RATIO", "")

	cfg := LoadConfig(config.Config{AppVersion: "1.2.3", Environment: "production"})
	assert.Equal(t, "solarops", cfg.ServiceName)
	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.SlowRequest)
	assert.False(t, cfg.OtelEnabled)
	assert.Equal(t, 0.1, cfg.OtelSamplingRatio)
	assert.False(t, cfg.Debug())
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	clearObservabilityEnv(t)
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("HTTP_SLOW_REQUEST_MS", "500")
	t.Setenv("OTEL_SAMPLING_RATIO", "7")

	cfg := LoadConfig(config.Config{AppName: "solar-api", Environment: "production"})
	assert.Equal(t, "solar-api", cfg.ServiceName)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.OtelEnabled)
	assert.Equal(t, 500*time.Millisecond, cfg.SlowRequest)
	assert.Equal(t, 0.1, cfg.OtelSamplingRatio, "out of range ratios fall back")
	assert.True(t, cfg.Debug())
}
