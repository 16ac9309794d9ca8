package domain

import (
	"errors"

	orderdomain "github.com/smallbiznis/fulfillment-billing/internal/order/domain"
	servicecatalogdomain "github.com/smallbiznis/fulfillment-billing/internal/servicecatalog/domain"
)

type Service interface {
	Compile(assignment servicecatalogdomain.Assignment) (Plan, error)
	CostFor(order orderdomain.Order, plan Plan) (Charge, error)
}

var (
	ErrUnknownChargeType    = errors.New("unknown_charge_type")
	ErrNegativeUnitPrice    = errors.New("negative_unit_price")
	ErrMissingQuantityField = errors.New("missing_quantity_field")
)
