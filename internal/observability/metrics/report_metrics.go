package metrics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/fulfillment-billing/pkg/errs"
)

// Report run outcomes.
const (
	ReportOutcomeSuccess          = "success"
	ReportOutcomeCached           = "cached"
	ReportOutcomeConfiguration    = "configuration_error"
	ReportOutcomeValidation       = "validation_error"
	ReportOutcomeDeadlineExceeded = "deadline_exceeded"
	ReportOutcomeInternal         = "internal_error"
)

// Report generation stages.
const (
	StageValidateInput  = "validate_input"
	StageFetchOrders    = "fetch_orders"
	StageApplyServices  = "apply_services"
	StageAssembleReport = "assemble_report"
	StagePersist        = "persist"
)

// ReportMetrics captures report generation latency and volume in
// Prometheus.
type ReportMetrics struct {
	runs            *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	stageDuration   *prometheus.HistogramVec
	ordersPerReport prometheus.Observer
}

// NewReportMetrics registers the report collectors on registerer. Collectors
// that are already registered are reused.
func NewReportMetrics(registerer prometheus.Registerer, cfg Config) *ReportMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "fulfillment-billing"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "billing_report_runs_total",
		Help:        "Billing report runs by outcome.",
		ConstLabels: constLabels,
	}, []string{"outcome"})
	runDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "billing_report_duration_seconds",
		Help:        "Billing report generation latency by outcome.",
		Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		ConstLabels: constLabels,
	}, []string{"outcome"})
	stageDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "billing_report_stage_duration_seconds",
		Help:        "Billing report latency per generation stage.",
		Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		ConstLabels: constLabels,
	}, []string{"stage"})
	ordersPerReport := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "billing_report_orders",
		Help:        "Orders priced per billing report.",
		Buckets:     prometheus.ExponentialBuckets(1, 4, 10),
		ConstLabels: constLabels,
	})

	return &ReportMetrics{
		runs:            register(registerer, runs),
		runDuration:     register(registerer, runDuration),
		stageDuration:   register(registerer, stageDuration),
		ordersPerReport: register(registerer, ordersPerReport),
	}
}

// ObserveRun records one report run.
func (m *ReportMetrics) ObserveRun(outcome string, elapsed time.Duration, orders int) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
	m.runDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	if outcome == ReportOutcomeSuccess {
		m.ordersPerReport.Observe(float64(orders))
	}
}

// ObserveStage records the latency of one generation stage.
func (m *ReportMetrics) ObserveStage(stage string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// ClassifyReportOutcome maps a report error to a low-cardinality outcome.
func ClassifyReportOutcome(err error) string {
	if err == nil {
		return ReportOutcomeSuccess
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ReportOutcomeDeadlineExceeded
	}
	switch {
	case errs.IsKind(err, errs.KindConfiguration):
		return ReportOutcomeConfiguration
	case errs.IsKind(err, errs.KindValidation):
		return ReportOutcomeValidation
	default:
		return ReportOutcomeInternal
	}
}

func register[C prometheus.Collector](registerer prometheus.Registerer, collector C) C {
	if err := registerer.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return collector
}
