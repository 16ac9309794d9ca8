package billingreport

import (
	"github.com/smallbiznis/fulfillment-billing/internal/billingreport/domain"
	"github.com/smallbiznis/fulfillment-billing/internal/billingreport/repository"
	"github.com/smallbiznis/fulfillment-billing/internal/billingreport/service"
	"github.com/smallbiznis/fulfillment-billing/internal/cache"
	"github.com/smallbiznis/fulfillment-billing/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("billingreport.service",
	fx.Provide(repository.Provide),
	fx.Provide(provideReportCache),
	fx.Provide(service.New),
)

func provideReportCache(lc fx.Lifecycle, cfg config.Config, engine *config.EngineConfigHolder, log *zap.Logger) (cache.Store[domain.BillingReport], error) {
	return cache.NewStore[domain.BillingReport](lc, cfg, engine, log, "billing_report")
}
