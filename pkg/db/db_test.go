package db

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/fulfillment-billing/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"gorm.io/gorm"
)

func TestDialect(t *testing.T) {
	for _, kind := range []string{"postgres", "mysql", "sqlite", ""} {
		dialector, err := Dialect(Config{Type: kind, Name: "billing"})
		require.NoError(t, err, kind)
		assert.NotNil(t, dialector, kind)
	}

	_, err := Dialect(Config{Type: "oracle"})
	assert.Error(t, err)
}

func TestFromAppConfig(t *testing.T) {
	cfg := FromAppConfig(config.Config{DBType: " Postgres ", DBName: "billing", DBMaxOpenConn: 7, MetricsEnabled: true})
	assert.Equal(t, "postgres", cfg.Type)
	assert.Equal(t, "billing", cfg.Name)
	assert.Equal(t, 7, cfg.MaxOpenConn)
	assert.True(t, cfg.Metrics)
}

func TestInstrumentRegistersTracingPlugin(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Instrument(conn, Config{Name: "test"}, noop.NewTracerProvider()))
	_, ok := conn.Config.Plugins["otelgorm"]
	assert.True(t, ok)

	var one int
	require.NoError(t, conn.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}
