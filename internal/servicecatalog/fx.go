package servicecatalog

import (
	"github.com/smallbiznis/fulfillment-billing/internal/servicecatalog/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("servicecatalog.repository",
	fx.Provide(repository.Provide),
)
