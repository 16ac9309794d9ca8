package service

import (
	"strings"

	orderdomain "github.com/smallbiznis/fulfillment-billing/internal/order/domain"
	ruledomain "github.com/smallbiznis/fulfillment-billing/internal/rule/domain"
	"github.com/smallbiznis/fulfillment-billing/pkg/coerce"
	"github.com/smallbiznis/fulfillment-billing/pkg/errs"
	"go.uber.org/zap"
)

// EvaluateRule evaluates one condition against an order.
//
// Negated operators are computed as the exact negation of their positive
// form, so ne, ncontains and not_in hold for a missing field. An unknown
// operator is a configuration error and never evaluates to false.
func (e *Evaluator) EvaluateRule(order orderdomain.Order, rule ruledomain.Rule) (bool, error) {
	op, err := ruledomain.ParseOperator(string(rule.Operator))
	if err != nil {
		return false, errs.Configuration("invalid rule", err).
			With("field", rule.Field).
			With("operator", string(rule.Operator))
	}

	value := Resolve(order, rule.Field)
	if value.IsMissing() {
		e.log.Debug("rule field missing on order",
			zap.String("order_id", order.ID.String()),
			zap.String("field", rule.Field),
			zap.String("operator", string(op)),
		)
	}

	var matched bool
	if value.Kind == ruledomain.KindSKUMap {
		if !op.AllowedOnSKUs() {
			return false, errs.Configuration("invalid rule", ruledomain.ErrUnsupportedOperatorOnSKU).
				With("field", rule.Field).
				With("operator", string(op))
		}
		matched = matchSKUs(op.Positive(), value.SKUs, rule.Value)
	} else {
		matched = matchScalar(op.Positive(), value, rule.Value)
	}

	if op.Negated() {
		return !matched, nil
	}
	return matched, nil
}

func matchScalar(op ruledomain.Operator, v ruledomain.Value, literal any) bool {
	if v.IsMissing() || literal == nil {
		return false
	}

	switch op {
	case ruledomain.OperatorEq:
		return equal(v, literal)
	case ruledomain.OperatorGt, ruledomain.OperatorGte, ruledomain.OperatorLt, ruledomain.OperatorLte:
		want, ok := coerce.Decimal(literal)
		if !ok || !v.IsNum {
			return false
		}
		cmp := v.Num.Cmp(want)
		switch op {
		case ruledomain.OperatorGt:
			return cmp > 0
		case ruledomain.OperatorGte:
			return cmp >= 0
		case ruledomain.OperatorLt:
			return cmp < 0
		default:
			return cmp <= 0
		}
	case ruledomain.OperatorIn:
		for _, item := range literalItems(literal, true) {
			if equal(v, item) {
				return true
			}
		}
		return false
	case ruledomain.OperatorContains:
		return anyString(v.Str, literal, strings.Contains)
	case ruledomain.OperatorStartsWith:
		return anyString(v.Str, literal, strings.HasPrefix)
	case ruledomain.OperatorEndsWith:
		return anyString(v.Str, literal, strings.HasSuffix)
	default:
		return false
	}
}

// equal compares numerically when both sides are numbers and falls back to
// the trimmed string forms otherwise.
func equal(v ruledomain.Value, literal any) bool {
	if v.IsNum {
		if want, ok := coerce.Decimal(literal); ok {
			return v.Num.Equal(want)
		}
	}
	want, ok := coerce.String(literal)
	if !ok {
		return false
	}
	return strings.TrimSpace(v.Str) == strings.TrimSpace(want)
}

// anyString applies a case-insensitive string test against each literal.
func anyString(have string, literal any, test func(s, substr string) bool) bool {
	have = strings.ToLower(have)
	for _, item := range literalItems(literal, false) {
		want, ok := coerce.String(item)
		if !ok {
			continue
		}
		if test(have, strings.ToLower(want)) {
			return true
		}
	}
	return false
}

// matchSKUs tests SKU membership. A listed SKU counts only when the order
// carries it with a positive quantity.
func matchSKUs(op ruledomain.Operator, skus map[string]int64, literal any) bool {
	for _, item := range literalItems(literal, op == ruledomain.OperatorIn) {
		s, ok := coerce.String(item)
		if !ok {
			continue
		}
		if skus[orderdomain.NormalizeSKU(s)] > 0 {
			return true
		}
	}
	return false
}

// literalItems flattens a rule value into a list. Comma separated strings
// are split only when splitCSV is set.
func literalItems(literal any, splitCSV bool) []any {
	switch x := literal.(type) {
	case nil:
		return nil
	case []any:
		return x
	case []string:
		out := make([]any, 0, len(x))
		for _, s := range x {
			out = append(out, s)
		}
		return out
	case string:
		if !splitCSV {
			return []any{x}
		}
		parts := strings.Split(x, ",")
		out := make([]any, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	default:
		return []any{x}
	}
}
