package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/fulfillment-billing/internal/billingreport/domain"
	"github.com/smallbiznis/fulfillment-billing/internal/cache"
	customerdomain "github.com/smallbiznis/fulfillment-billing/internal/customer/domain"
	orderdomain "github.com/smallbiznis/fulfillment-billing/internal/order/domain"
	pricetierdomain "github.com/smallbiznis/fulfillment-billing/internal/pricetier/domain"
	ratingdomain "github.com/smallbiznis/fulfillment-billing/internal/rating/domain"
	ruledomain "github.com/smallbiznis/fulfillment-billing/internal/rule/domain"
	"github.com/smallbiznis/fulfillment-billing/pkg/errs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// applyServices prices every order against every plan. charges[i][j] is
// the charge of plans[j] on orders[i]; the slots are written by index so the
// result does not depend on scheduling.
func (s *Service) applyServices(ctx context.Context, orders []orderdomain.Order, plans []ratingdomain.Plan, parallelism int) ([][]ratingdomain.Charge, error) {
	charges := make([][]ratingdomain.Charge, len(orders))
	if len(orders) == 0 {
		return charges, nil
	}
	if parallelism <= 0 {
		parallelism = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i := range orders {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row := make([]ratingdomain.Charge, len(plans))
			for j, plan := range plans {
				charge, err := s.rating.CostFor(orders[i], plan)
				if err != nil {
					return annotate(err, orders[i], plan)
				}
				row[j] = charge
			}
			charges[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return charges, nil
}

func annotate(err error, order orderdomain.Order, plan ratingdomain.Plan) error {
	if e, ok := err.(*errs.Error); ok {
		return e.With("order_id", order.ID.String()).With("customer_service_id", plan.CustomerServiceID.String())
	}
	return errs.Configuration("evaluate service", err).
		With("order_id", order.ID.String()).
		With("customer_service_id", plan.CustomerServiceID.String())
}

// reportAnomalies counts every evaluated charge and logs the order data that
// was defaulted during pricing.
func (s *Service) reportAnomalies(ctx context.Context, log *zap.Logger, orders []orderdomain.Order, plans []ratingdomain.Plan, charges [][]ratingdomain.Charge) {
	for i, order := range orders {
		for _, anomaly := range order.Anomalies() {
			log.Warn("order data anomaly",
				zap.String("order_id", anomaly.OrderID.String()),
				zap.String("field", anomaly.Field),
				zap.String("key", anomaly.Key),
				zap.String("reason", anomaly.Reason),
				zap.Error(anomaly.Err()),
			)
			s.metrics.RecordDataAnomaly(ctx, anomaly.Reason)
		}

		for j, charge := range charges[i] {
			s.metrics.RecordServiceCharge(ctx, string(plans[j].ChargeType), string(charge.Reason))

			var field string
			switch charge.Reason {
			case ratingdomain.ReasonMissingWeight:
				field = "weight"
			case ratingdomain.ReasonMissingField:
				field = plans[j].QuantityField
			default:
				continue
			}
			err := errs.New(errs.KindDataAnomaly, "order data defaulted").
				With("order_id", order.ID.String()).
				With("field", field)
			log.Warn("order data anomaly",
				zap.String("order_id", order.ID.String()),
				zap.String("field", field),
				zap.String("service", plans[j].ServiceCode),
				zap.String("reason", string(charge.Reason)),
				zap.Error(err),
			)
			s.metrics.RecordDataAnomaly(ctx, string(charge.Reason))
		}
	}
}

// assemble aggregates the charges. Each charge is rounded once as it enters
// the breakdown and every total is the exact sum of those rounded amounts,
// so order totals add up to the report total and so do service totals.
func (s *Service) assemble(
	customer *customerdomain.Customer,
	start, end time.Time,
	version string,
	orders []orderdomain.Order,
	plans []ratingdomain.Plan,
	charges [][]ratingdomain.Charge,
	places int32,
) *domain.BillingReport {
	report := &domain.BillingReport{
		ID:            s.genID.Generate(),
		CustomerID:    customer.ID,
		StartDate:     start,
		EndDate:       end,
		GeneratedAt:   s.clock.Now().UTC(),
		ConfigVersion: version,
		Currency:      customer.Currency,
		OrderCount:    len(orders),
		ServiceTotals: []domain.ServiceTotal{},
		Orders:        make([]domain.OrderCost, 0, len(orders)),
	}

	totals := make(map[snowflake.ID]int, len(plans))
	sums := make([]decimal.Decimal, 0, len(plans))
	for _, plan := range plans {
		if _, ok := totals[plan.ServiceID]; ok {
			continue
		}
		totals[plan.ServiceID] = len(report.ServiceTotals)
		report.ServiceTotals = append(report.ServiceTotals, domain.ServiceTotal{
			ID:         s.genID.Generate(),
			ReportID:   report.ID,
			ServiceID:  plan.ServiceID,
			Code:       plan.ServiceCode,
			Name:       plan.Name,
			ChargeType: string(plan.ChargeType),
			Position:   len(report.ServiceTotals),
		})
		sums = append(sums, decimal.Zero)
	}

	grand := decimal.Zero
	for i, order := range orders {
		line := domain.OrderCost{
			ID:          s.genID.Generate(),
			ReportID:    report.ID,
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			OrderDate:   order.OrderDate.UTC(),
			Position:    i,
			Services:    make([]domain.ServiceCost, 0, len(plans)),
		}

		subtotal := decimal.Zero
		for j, plan := range plans {
			charge := charges[i][j]
			amount := charge.Amount.Round(places)
			subtotal = subtotal.Add(amount)
			idx := totals[plan.ServiceID]
			sums[idx] = sums[idx].Add(amount)

			line.Services = append(line.Services, domain.ServiceCost{
				ID:                s.genID.Generate(),
				OrderCostID:       line.ID,
				ReportID:          report.ID,
				CustomerServiceID: plan.CustomerServiceID,
				ServiceID:         plan.ServiceID,
				Name:              plan.Name,
				ChargeType:        string(plan.ChargeType),
				Applied:           charge.Applied,
				Reason:            string(charge.Reason),
				Quantity:          charge.Quantity,
				Amount:            amount,
				Position:          j,
			})
		}

		line.TotalAmount = subtotal
		grand = grand.Add(subtotal)
		report.Orders = append(report.Orders, line)
	}

	for i := range report.ServiceTotals {
		report.ServiceTotals[i].Amount = sums[i]
	}
	report.TotalAmount = grand

	return report
}

type planFingerprint struct {
	CustomerServiceID snowflake.ID           `json:"customer_service_id"`
	ServiceID         snowflake.ID           `json:"service_id"`
	ChargeType        string                 `json:"charge_type"`
	UnitPrice         string                 `json:"unit_price"`
	Tiers             pricetierdomain.Config `json:"tiers,omitempty"`
	ExcludedSKUs      []string               `json:"excluded_skus,omitempty"`
	RuleGroup         ruledomain.Node        `json:"rule_group,omitempty"`
	QuantityField     string                 `json:"quantity_field,omitempty"`
}

// configVersion fingerprints the compiled plans and the rounding so a cached
// report is never served after either changes.
func configVersion(plans []ratingdomain.Plan, places int32) (string, error) {
	prints := make([]planFingerprint, 0, len(plans))
	for _, plan := range plans {
		excluded := make([]string, 0, len(plan.ExcludedSKUs))
		for _, sku := range plan.ExcludedSKUs {
			excluded = append(excluded, orderdomain.NormalizeSKU(sku))
		}
		prints = append(prints, planFingerprint{
			CustomerServiceID: plan.CustomerServiceID,
			ServiceID:         plan.ServiceID,
			ChargeType:        string(plan.ChargeType),
			UnitPrice:         plan.UnitPrice.String(),
			Tiers:             plan.Tiers,
			ExcludedSKUs:      excluded,
			RuleGroup:         plan.RuleGroup,
			QuantityField:     plan.QuantityField,
		})
	}

	payload, err := json.Marshal(struct {
		RoundingPlaces int32             `json:"rounding_places"`
		Plans          []planFingerprint `json:"plans"`
	}{places, prints})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

func reportCacheKey(customerID snowflake.ID, start, end time.Time, version string) string {
	return cache.Key(
		"billing_report",
		strconv.FormatInt(int64(customerID), 10),
		start.UTC().Format(time.DateOnly),
		end.UTC().Format(time.DateOnly),
		version,
	)
}

// cloneReport copies r deep enough that the caller and the cache never
// share slices.
func cloneReport(r *domain.BillingReport) *domain.BillingReport {
	if r == nil {
		return nil
	}
	out := *r
	out.ServiceTotals = append([]domain.ServiceTotal(nil), r.ServiceTotals...)
	if out.ServiceTotals == nil {
		out.ServiceTotals = []domain.ServiceTotal{}
	}
	out.Orders = make([]domain.OrderCost, len(r.Orders))
	for i, order := range r.Orders {
		order.Services = append([]domain.ServiceCost(nil), order.Services...)
		out.Orders[i] = order
	}
	return &out
}
