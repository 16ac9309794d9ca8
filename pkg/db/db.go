package db

import (
	"context"
	"time"

	"github.com/smallbiznis/fulfillment-billing/internal/config"
	obslogger "github.com/smallbiznis/fulfillment-billing/internal/observability/logger"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormprometheus "gorm.io/plugin/prometheus"
)

type Params struct {
	fx.In

	Lifecycle      fx.Lifecycle
	Config         config.Config
	Log            *zap.Logger
	GormLogger     *obslogger.GormLogger
	TracerProvider trace.TracerProvider `optional:"true"`
}

// New opens the configured database with tracing spans on every query and,
// when metrics are enabled, connection pool metrics.
func New(p Params) (*gorm.DB, error) {
	cfg := FromAppConfig(p.Config)
	log := p.Log.Named("db")

	dialector, err := Dialect(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:  p.GormLogger,
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxIdleConn > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConn)
	}
	if cfg.MaxOpenConn > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConn)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Second)
	}

	if err := Instrument(conn, cfg, p.TracerProvider); err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("closing database connection")
			return sqlDB.Close()
		},
	})

	log.Info("database connected",
		zap.String("type", cfg.Type),
		zap.String("host", cfg.Host),
		zap.String("name", cfg.Name),
	)
	return conn, nil
}

// Instrument registers the tracing plugin and, when cfg.Metrics is set, the
// Prometheus pool statistics plugin.
func Instrument(conn *gorm.DB, cfg Config, tp trace.TracerProvider) error {
	opts := []otelgorm.Option{
		otelgorm.WithDBName(cfg.Name),
		otelgorm.WithoutQueryVariables(),
	}
	if tp != nil {
		opts = append(opts, otelgorm.WithTracerProvider(tp))
	}
	if err := conn.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	if cfg.Metrics {
		return conn.Use(gormprometheus.New(gormprometheus.Config{
			DBName:          cfg.Name,
			RefreshInterval: 15,
			StartServer:     false,
		}))
	}
	return nil
}

var Module = fx.Module("db",
	fx.Provide(New),
)
