package observability

import (
	"testing"
	"time"

	"github.com/smallbiznis/fulfillment-billing/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("OTEL_ENABLED", "")
	t.Setenv("LOG_OUTPUT", "stderr")
	t.Setenv("DB_SLOW_QUERY_MS", "50")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "HTTP")

	cfg := LoadConfig(config.Config{
		AppName:        "billing",
		Environment:    "production",
		OTLPProtocol:   "grpc",
		MetricsEnabled: true,
	})

	assert.Equal(t, "billing", cfg.ServiceName)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "stderr", cfg.LogOutput)
	assert.Equal(t, 50*time.Millisecond, cfg.SlowQuery)
	assert.Equal(t, "http", cfg.OtelExporterProtocol)
	assert.True(t, cfg.MetricsEnabled)
	assert.False(t, cfg.TracingEnabled)
	assert.True(t, cfg.Debug())
}

func TestLoadConfigOtelSwitch(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "false")
	t.Setenv("DB_SLOW_QUERY_MS", "")

	cfg := LoadConfig(config.Config{MetricsEnabled: true, TracingEnabled: true})
	assert.False(t, cfg.MetricsEnabled)
	assert.False(t, cfg.TracingEnabled)
	assert.Equal(t, "fulfillment-billing", cfg.ServiceName)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQuery)
}

func TestDebugFollowsEnvironment(t *testing.T) {
	assert.True(t, Config{LogLevel: "info", Environment: "development"}.Debug())
	assert.False(t, Config{LogLevel: "info", Environment: "production"}.Debug())
}
