package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATABASE_TYPE", "sqlite")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("TRACING_ENABLED", "yes")
	t.Setenv("OTLP_PROTOCOL", "HTTP")
	t.Setenv("SNOWFLAKE_NODE", "not-a-number")

	cfg := Load()
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.TracingEnabled)
	assert.Equal(t, "http", cfg.OTLPProtocol)
	assert.Equal(t, int64(1), cfg.SnowflakeNode)
	assert.False(t, cfg.IsProduction())
}
