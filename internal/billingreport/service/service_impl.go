package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/fulfillment-billing/internal/billingreport/domain"
	"github.com/smallbiznis/fulfillment-billing/internal/cache"
	"github.com/smallbiznis/fulfillment-billing/internal/clock"
	"github.com/smallbiznis/fulfillment-billing/internal/config"
	customerdomain "github.com/smallbiznis/fulfillment-billing/internal/customer/domain"
	"github.com/smallbiznis/fulfillment-billing/internal/observability/logger"
	"github.com/smallbiznis/fulfillment-billing/internal/observability/metrics"
	orderdomain "github.com/smallbiznis/fulfillment-billing/internal/order/domain"
	ratingdomain "github.com/smallbiznis/fulfillment-billing/internal/rating/domain"
	servicecatalogdomain "github.com/smallbiznis/fulfillment-billing/internal/servicecatalog/domain"
	"github.com/smallbiznis/fulfillment-billing/pkg/errs"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	Engine         *config.EngineConfigHolder
	Repo           domain.Repository
	CustomerRepo   customerdomain.Repository
	OrderRepo      orderdomain.Repository
	CatalogRepo    servicecatalogdomain.Repository
	Rating         ratingdomain.Service
	Cache          cache.Store[domain.BillingReport]
	Metrics        *metrics.Metrics       `optional:"true"`
	ReportMetrics  *metrics.ReportMetrics `optional:"true"`
	TracerProvider trace.TracerProvider   `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	engine        *config.EngineConfigHolder
	repo          domain.Repository
	customerRepo  customerdomain.Repository
	orderRepo     orderdomain.Repository
	catalogRepo   servicecatalogdomain.Repository
	rating        ratingdomain.Service
	cache         cache.Store[domain.BillingReport]
	metrics       *metrics.Metrics
	reportMetrics *metrics.ReportMetrics
	tracer        trace.Tracer
}

func New(p Params) domain.Service {
	tp := p.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	store := p.Cache
	if store == nil {
		store = cache.NoopStore[domain.BillingReport]{}
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}

	return &Service{
		db:            p.DB,
		log:           p.Log.Named("billingreport.service"),
		genID:         p.GenID,
		clock:         clk,
		engine:        p.Engine,
		repo:          p.Repo,
		customerRepo:  p.CustomerRepo,
		orderRepo:     p.OrderRepo,
		catalogRepo:   p.CatalogRepo,
		rating:        p.Rating,
		cache:         store,
		metrics:       p.Metrics,
		reportMetrics: p.ReportMetrics,
		tracer:        tp.Tracer("billingreport.service"),
	}
}

// GenerateReport runs one calculation for a customer over an inclusive date
// range. Configuration and validation failures abort the run; malformed
// order data is defaulted and logged.
func (s *Service) GenerateReport(ctx context.Context, req domain.GenerateRequest) (report *domain.BillingReport, err error) {
	started := time.Now()
	engine := s.engine.Get()

	ctx, span := s.tracer.Start(ctx, "billingreport.GenerateReport",
		trace.WithAttributes(attribute.String("customer_id", req.CustomerID.String())),
	)
	log := logger.WithCustomer(logger.WithContext(ctx, s.log), req.CustomerID.String())

	var (
		outcome string
		orders  []orderdomain.Order
	)
	defer func() {
		if outcome == "" {
			outcome = metrics.ClassifyReportOutcome(err)
		}
		s.reportMetrics.ObserveRun(outcome, time.Since(started), len(orders))
		s.metrics.RecordReport(ctx, outcome)
		span.SetAttributes(attribute.String("outcome", outcome))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			log.Error("report generation failed", zap.String("outcome", outcome), zap.Error(err))
		}
		span.End()
	}()

	var (
		customer *customerdomain.Customer
		plans    []ratingdomain.Plan
		start    time.Time
		end      time.Time
	)
	err = s.stage(ctx, metrics.StageValidateInput, func(ctx context.Context) error {
		var err error
		start, end, err = normalizeRange(req)
		if err != nil {
			return err
		}
		customer, err = s.loadCustomer(ctx, req.CustomerID)
		if err != nil {
			return err
		}
		plans, err = s.compilePlans(ctx, req.CustomerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	version, err := configVersion(plans, engine.RoundingPlaces)
	if err != nil {
		return nil, errs.Internal("fingerprint service configuration", err)
	}
	key := reportCacheKey(req.CustomerID, start, end, version)

	if !req.BypassCache {
		cached, hit, cacheErr := s.cache.Get(ctx, key)
		if cacheErr != nil {
			log.Warn("report cache lookup failed", zap.Error(cacheErr))
		}
		s.metrics.RecordCacheLookup(ctx, hit)
		if hit && cached != nil {
			outcome = metrics.ReportOutcomeCached
			log.Debug("report served from cache", zap.String("config_version", version))
			return cloneReport(cached), nil
		}
	}

	err = s.stage(ctx, metrics.StageFetchOrders, func(ctx context.Context) error {
		var err error
		orders, err = s.orderRepo.ListByCustomerInRange(ctx, s.db, req.CustomerID, start, end.AddDate(0, 0, 1))
		if err != nil {
			return errs.Internal("fetch orders", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var charges [][]ratingdomain.Charge
	err = s.stage(ctx, metrics.StageApplyServices, func(ctx context.Context) error {
		var err error
		charges, err = s.applyServices(ctx, orders, plans, engine.Parallelism)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordOrdersEvaluated(ctx, len(orders))
	s.reportAnomalies(ctx, log, orders, plans, charges)

	err = s.stage(ctx, metrics.StageAssembleReport, func(ctx context.Context) error {
		report = s.assemble(customer, start, end, version, orders, plans, charges, engine.RoundingPlaces)
		return nil
	})
	if err != nil {
		return nil, err
	}

	persist := engine.PersistReports
	if req.Persist != nil {
		persist = *req.Persist
	}
	if persist {
		err = s.stage(ctx, metrics.StagePersist, func(ctx context.Context) error {
			if err := s.repo.Insert(ctx, s.db, report); err != nil {
				return errs.Internal("persist report", err).With("report_id", report.ID.String())
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if engine.ReportCache.Backend != config.CacheBackendNone {
		if cacheErr := s.cache.Set(ctx, key, cloneReport(report), engine.ReportCache.TTL); cacheErr != nil {
			log.Warn("report cache store failed", zap.Error(cacheErr))
		}
	}

	log.Info("report generated",
		zap.String("report_id", report.ID.String()),
		zap.Int("orders", len(orders)),
		zap.String("total_amount", report.TotalAmount.String()),
		zap.Bool("persisted", persist),
	)
	return report, nil
}

// GetReport loads a stored report with its breakdown.
func (s *Service) GetReport(ctx context.Context, id snowflake.ID) (*domain.BillingReport, error) {
	if id == 0 {
		return nil, errs.Validation("invalid report id", domain.ErrInvalidReportID)
	}

	report, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, errs.Internal("load report", err).With("report_id", id.String())
	}
	if report == nil {
		return nil, errs.Wrap(errs.KindNotFound, "report not found", domain.ErrReportNotFound).With("report_id", id.String())
	}
	return report, nil
}

// DeleteReport removes a stored report, its breakdown and any cached copy.
func (s *Service) DeleteReport(ctx context.Context, id snowflake.ID) error {
	report, err := s.GetReport(ctx, id)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, s.db, id)
	if err != nil {
		return errs.Internal("delete report", err).With("report_id", id.String())
	}
	if !deleted {
		return errs.Wrap(errs.KindNotFound, "report not found", domain.ErrReportNotFound).With("report_id", id.String())
	}

	key := reportCacheKey(report.CustomerID, report.StartDate, report.EndDate, report.ConfigVersion)
	if err := s.cache.Delete(ctx, key); err != nil {
		s.log.Warn("report cache delete failed", zap.String("report_id", id.String()), zap.Error(err))
	}
	return nil
}

// ValidateConfiguration compiles every active service of the customer and
// returns the first configuration error.
func (s *Service) ValidateConfiguration(ctx context.Context, customerID snowflake.ID) error {
	if _, err := s.loadCustomer(ctx, customerID); err != nil {
		return err
	}
	_, err := s.compilePlans(ctx, customerID)
	return err
}

func (s *Service) loadCustomer(ctx context.Context, id snowflake.ID) (*customerdomain.Customer, error) {
	if id == 0 {
		return nil, errs.Validation("invalid customer id", domain.ErrInvalidCustomer)
	}
	customer, err := s.customerRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, errs.Internal("load customer", err).With("customer_id", id.String())
	}
	if customer == nil {
		return nil, errs.Validation("customer not found", domain.ErrCustomerNotFound).With("customer_id", id.String())
	}
	return customer, nil
}

func (s *Service) compilePlans(ctx context.Context, customerID snowflake.ID) ([]ratingdomain.Plan, error) {
	assignments, err := s.catalogRepo.ListActiveByCustomer(ctx, s.db, customerID)
	if err != nil {
		return nil, errs.Internal("load customer services", err).With("customer_id", customerID.String())
	}

	plans := make([]ratingdomain.Plan, 0, len(assignments))
	for _, assignment := range assignments {
		plan, err := s.rating.Compile(assignment)
		if err != nil {
			s.metrics.RecordConfigError(ctx, configErrorReason(err))
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func (s *Service) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "billingreport."+name)
	defer span.End()

	started := time.Now()
	err := fn(ctx)
	s.reportMetrics.ObserveStage(name, time.Since(started))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func normalizeRange(req domain.GenerateRequest) (time.Time, time.Time, error) {
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return time.Time{}, time.Time{}, errs.Validation("start and end date are required", domain.ErrMissingDates)
	}
	start := truncateDay(req.StartDate)
	end := truncateDay(req.EndDate)
	if start.After(end) {
		return time.Time{}, time.Time{}, errs.Validation("start date is after end date", domain.ErrInvalidDateRange).
			With("start_date", start.Format(time.DateOnly)).
			With("end_date", end.Format(time.DateOnly))
	}
	return start, end, nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// configErrorReason reduces a configuration error to its innermost sentinel
// so the metric label stays low cardinality.
func configErrorReason(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}
	reason := err.Error()
	if reason == "" || strings.ContainsAny(reason, " :") {
		return string(errs.KindConfiguration)
	}
	return reason
}
