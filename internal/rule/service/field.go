package service

import (
	"strings"

	"github.com/shopspring/decimal"
	orderdomain "github.com/smallbiznis/fulfillment-billing/internal/order/domain"
	ruledomain "github.com/smallbiznis/fulfillment-billing/internal/rule/domain"
	"github.com/smallbiznis/fulfillment-billing/pkg/coerce"
)

// Resolve reads a logical field from an order.
//
// Built-in fields win over same-named entries in Order.Fields. Unset
// built-ins, absent attributes, nulls and nested objects resolve to
// Missing.
func Resolve(order orderdomain.Order, field string) ruledomain.Value {
	switch ruledomain.CanonicalField(field) {
	case ruledomain.FieldID:
		if order.ID == 0 {
			return ruledomain.Missing()
		}
		return ruledomain.Number(decimal.NewFromInt(order.ID.Int64()))
	case ruledomain.FieldOrderNumber:
		if order.OrderNumber == "" {
			return ruledomain.Missing()
		}
		return ruledomain.Text(order.OrderNumber)
	case ruledomain.FieldStatus:
		if order.Status == "" {
			return ruledomain.Missing()
		}
		return ruledomain.Text(order.Status)
	case ruledomain.FieldOrderDate:
		if order.OrderDate.IsZero() {
			return ruledomain.Missing()
		}
		return ruledomain.Text(order.OrderDate.UTC().Format("2006-01-02"))
	case ruledomain.FieldWeight:
		if !order.Weight.Valid {
			return ruledomain.Missing()
		}
		return ruledomain.Number(order.Weight.Decimal)
	case ruledomain.FieldTotalQuantity:
		return ruledomain.Number(decimal.NewFromInt(order.TotalQuantity()))
	case ruledomain.FieldSKUQuantity:
		return ruledomain.SKUMap(order.SKUQuantities())
	}

	raw, ok := order.Field(strings.TrimSpace(field))
	if !ok {
		return ruledomain.Missing()
	}
	return scalar(raw)
}

func scalar(raw any) ruledomain.Value {
	switch raw.(type) {
	case map[string]any, []any:
		return ruledomain.Missing()
	}
	if d, ok := coerce.Decimal(raw); ok {
		if _, isString := raw.(string); !isString {
			return ruledomain.Number(d)
		}
	}
	s, ok := coerce.String(raw)
	if !ok {
		return ruledomain.Missing()
	}
	return ruledomain.Text(s)
}
