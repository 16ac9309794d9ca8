package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes report generation instruments.
type Metrics struct {
	reportsGenerated metric.Int64Counter
	ordersEvaluated  metric.Int64Counter
	servicesApplied  metric.Int64Counter
	dataAnomalies    metric.Int64Counter
	configErrors     metric.Int64Counter
	cacheLookups     metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "fulfillment-billing"
	}
	meter := provider.Meter(name)

	reportsGenerated, err := meter.Int64Counter("billing_reports_generated_total")
	if err != nil {
		return nil, err
	}
	ordersEvaluated, err := meter.Int64Counter("billing_orders_evaluated_total")
	if err != nil {
		return nil, err
	}
	servicesApplied, err := meter.Int64Counter("billing_service_charges_total")
	if err != nil {
		return nil, err
	}
	dataAnomalies, err := meter.Int64Counter("billing_data_anomalies_total")
	if err != nil {
		return nil, err
	}
	configErrors, err := meter.Int64Counter("billing_configuration_errors_total")
	if err != nil {
		return nil, err
	}
	cacheLookups, err := meter.Int64Counter("billing_report_cache_lookups_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		reportsGenerated: reportsGenerated,
		ordersEvaluated:  ordersEvaluated,
		servicesApplied:  servicesApplied,
		dataAnomalies:    dataAnomalies,
		configErrors:     configErrors,
		cacheLookups:     cacheLookups,
	}, nil
}

// NewNoop returns instruments backed by a no-op meter provider.
func NewNoop() *Metrics {
	m, _ := New(Config{}, noop.NewMeterProvider())
	return m
}

// RecordReport counts a finished report run by outcome.
func (m *Metrics) RecordReport(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.reportsGenerated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordOrdersEvaluated adds the number of orders priced in a run.
func (m *Metrics) RecordOrdersEvaluated(ctx context.Context, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.ordersEvaluated.Add(ctx, int64(count))
}

// RecordServiceCharge counts one service evaluation by charge type and
// reason.
func (m *Metrics) RecordServiceCharge(ctx context.Context, chargeType, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("charge_type", strings.TrimSpace(chargeType)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.servicesApplied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordDataAnomaly counts malformed order data that was defaulted.
func (m *Metrics) RecordDataAnomaly(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("reason", strings.TrimSpace(reason)))
	m.dataAnomalies.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordConfigError counts configuration errors that aborted a run.
func (m *Metrics) RecordConfigError(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("reason", strings.TrimSpace(reason)))
	m.configErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCacheLookup counts report cache hits and misses.
func (m *Metrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	attrs := FilterAttributes(attribute.String("result", result))
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"outcome":     {},
	"reason":      {},
	"result":      {},
	"charge_type": {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
