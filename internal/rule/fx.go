package rule

import (
	"github.com/smallbiznis/fulfillment-billing/internal/config"
	"github.com/smallbiznis/fulfillment-billing/internal/rule/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("rule.service",
	fx.Provide(func(log *zap.Logger, engine *config.EngineConfigHolder) *service.Evaluator {
		return service.NewEvaluator(log, engine.Get().MaxRuleDepth)
	}),
)
