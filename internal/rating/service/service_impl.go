package service

import (
	"strings"

	"github.com/shopspring/decimal"
	orderdomain "github.com/smallbiznis/fulfillment-billing/internal/order/domain"
	pricetierservice "github.com/smallbiznis/fulfillment-billing/internal/pricetier/service"
	ratingdomain "github.com/smallbiznis/fulfillment-billing/internal/rating/domain"
	ruledomain "github.com/smallbiznis/fulfillment-billing/internal/rule/domain"
	ruleservice "github.com/smallbiznis/fulfillment-billing/internal/rule/service"
	servicecatalogdomain "github.com/smallbiznis/fulfillment-billing/internal/servicecatalog/domain"
	"github.com/smallbiznis/fulfillment-billing/pkg/errs"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log       *zap.Logger
	Evaluator *ruleservice.Evaluator
}

type Service struct {
	log       *zap.Logger
	evaluator *ruleservice.Evaluator
}

func New(p Params) ratingdomain.Service {
	return &Service{
		log:       p.Log.Named("rating.service"),
		evaluator: p.Evaluator,
	}
}

// Compile turns a stored customer service into a Plan, rejecting unknown
// charge types, negative prices, bad tier tables and invalid rule groups.
func (s *Service) Compile(a servicecatalogdomain.Assignment) (ratingdomain.Plan, error) {
	plan := ratingdomain.Plan{
		CustomerServiceID: a.ID,
		ServiceID:         a.ServiceID,
		ServiceCode:       a.ServiceCode,
		Name:              a.ServiceName,
		UnitPrice:         a.UnitPrice,
		QuantityField:     strings.TrimSpace(a.QuantityField),
	}

	chargeType, err := ratingdomain.ParseChargeType(a.ChargeType)
	if err != nil {
		return plan, s.configError("unknown charge type", err, a).With("charge_type", a.ChargeType)
	}
	plan.ChargeType = chargeType

	if a.UnitPrice.IsNegative() {
		return plan, s.configError("negative unit price", ratingdomain.ErrNegativeUnitPrice, a).
			With("unit_price", a.UnitPrice.String())
	}

	if chargeType == ratingdomain.ChargeCustom && plan.QuantityField == "" {
		return plan, s.configError("custom charge needs a quantity field", ratingdomain.ErrMissingQuantityField, a)
	}

	if chargeType == ratingdomain.ChargeTieredCaseBased {
		tiers, err := pricetierservice.ParseConfig(a.TierConfig)
		if err != nil {
			return plan, s.configError("invalid tier config", err, a)
		}
		plan.Tiers = tiers

		excluded, err := pricetierservice.ParseSKUList(a.ExcludedSKUs)
		if err != nil {
			return plan, s.configError("invalid excluded skus", err, a)
		}
		plan.ExcludedSKUs = excluded
	}

	group, err := ruledomain.Parse(a.RuleGroup, s.maxRuleDepth())
	if err != nil {
		return plan, s.configError("invalid rule group", err, a)
	}
	plan.RuleGroup = group

	return plan, nil
}

// CostFor prices one order for one plan. A rule group that does not hold,
// a missing quantity and an unmatched tier all yield a zero Charge with a
// reason; only configuration problems are returned as errors.
func (s *Service) CostFor(order orderdomain.Order, plan ratingdomain.Plan) (ratingdomain.Charge, error) {
	ok, err := s.evaluator.Evaluate(order, plan.RuleGroup)
	if err != nil {
		return ratingdomain.Charge{}, err
	}
	if !ok {
		return ratingdomain.NotApplied(ratingdomain.ReasonRuleNotMatched), nil
	}

	switch plan.ChargeType {
	case ratingdomain.ChargeFlat:
		return applied(plan.UnitPrice, decimal.NewFromInt(1)), nil

	case ratingdomain.ChargePerQuantity:
		qty := decimal.NewFromInt(order.TotalQuantity())
		if !qty.IsPositive() {
			return ratingdomain.NotApplied(ratingdomain.ReasonZeroQuantity), nil
		}
		return applied(plan.UnitPrice.Mul(qty), qty), nil

	case ratingdomain.ChargePerWeight:
		if !order.Weight.Valid {
			return ratingdomain.NotApplied(ratingdomain.ReasonMissingWeight), nil
		}
		if !order.Weight.Decimal.IsPositive() {
			return ratingdomain.NotApplied(ratingdomain.ReasonZeroQuantity), nil
		}
		return applied(plan.UnitPrice.Mul(order.Weight.Decimal), order.Weight.Decimal), nil

	case ratingdomain.ChargeTieredCaseBased:
		res := pricetierservice.Resolve(order, plan.Tiers, plan.ExcludedSKUs)
		if !res.Applies {
			charge := ratingdomain.NotApplied(ratingdomain.ReasonNoTierMatched)
			charge.Quantity = decimal.NewFromInt(res.TotalCases)
			charge.Tier = &res
			return charge, nil
		}
		charge := applied(res.Tier.Cost(plan.UnitPrice), decimal.NewFromInt(res.TotalCases))
		charge.Tier = &res
		return charge, nil

	case ratingdomain.ChargeCustom:
		v := ruleservice.Resolve(order, plan.QuantityField)
		if !v.IsNum {
			return ratingdomain.NotApplied(ratingdomain.ReasonMissingField), nil
		}
		if !v.Num.IsPositive() {
			return ratingdomain.NotApplied(ratingdomain.ReasonZeroQuantity), nil
		}
		return applied(plan.UnitPrice.Mul(v.Num), v.Num), nil

	default:
		return ratingdomain.Charge{}, errs.Configuration("unknown charge type", ratingdomain.ErrUnknownChargeType).
			With("customer_service_id", plan.CustomerServiceID.String()).
			With("charge_type", string(plan.ChargeType))
	}
}

// maxRuleDepth is the evaluator's limit, so a tree that compiles can always
// be evaluated.
func (s *Service) maxRuleDepth() int {
	if s.evaluator == nil {
		return ruledomain.DefaultMaxDepth
	}
	return s.evaluator.MaxDepth()
}

func (s *Service) configError(message string, cause error, a servicecatalogdomain.Assignment) *errs.Error {
	s.log.Error(message,
		zap.String("customer_service_id", a.ID.String()),
		zap.String("service", a.ServiceCode),
		zap.Error(cause),
	)
	return errs.Configuration(message, cause).
		With("customer_service_id", a.ID.String()).
		With("service", a.ServiceCode)
}

func applied(amount, qty decimal.Decimal) ratingdomain.Charge {
	return ratingdomain.Charge{
		Applied:  true,
		Amount:   amount,
		Quantity: qty,
		Reason:   ratingdomain.ReasonApplied,
	}
}
