package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smallbiznis/fulfillment-billing/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyReportOutcome(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"success", nil, ReportOutcomeSuccess},
		{"deadline", fmt.Errorf("fetch: %w", context.DeadlineExceeded), ReportOutcomeDeadlineExceeded},
		{"configuration", errs.Configuration("bad tier", errors.New("tier_gap")), ReportOutcomeConfiguration},
		{"validation", errs.Validation("bad range", nil), ReportOutcomeValidation},
		{"unknown", errors.New("boom"), ReportOutcomeInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyReportOutcome(tc.err))
		})
	}
}

func TestObserveRun(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewReportMetrics(registry, Config{ServiceName: "fulfillment-billing", Environment: "test"})

	m.ObserveRun(ReportOutcomeSuccess, 20*time.Millisecond, 12)
	m.ObserveRun(ReportOutcomeSuccess, 30*time.Millisecond, 3)
	m.ObserveRun(ReportOutcomeValidation, time.Millisecond, 0)
	m.ObserveStage(StageFetchOrders, 5*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.runs.WithLabelValues(ReportOutcomeSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.runs.WithLabelValues(ReportOutcomeValidation)))

	count, err := testutil.GatherAndCount(registry)
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}

func TestNewReportMetricsReusesRegisteredCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := NewReportMetrics(registry, Config{Environment: "test"})
	second := NewReportMetrics(registry, Config{Environment: "test"})

	first.ObserveRun(ReportOutcomeSuccess, time.Millisecond, 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(second.runs.WithLabelValues(ReportOutcomeSuccess)))
}
