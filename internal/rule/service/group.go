package service

import (
	orderdomain "github.com/smallbiznis/fulfillment-billing/internal/order/domain"
	ruledomain "github.com/smallbiznis/fulfillment-billing/internal/rule/domain"
	"github.com/smallbiznis/fulfillment-billing/pkg/errs"
)

// Evaluate walks a rule tree. A nil node means the service is
// unconditional and always holds.
//
// AND over no children is true, OR over no children is false and NOT
// requires exactly one child.
func (e *Evaluator) Evaluate(order orderdomain.Order, node ruledomain.Node) (bool, error) {
	return e.evaluate(order, node, 1)
}

func (e *Evaluator) evaluate(order orderdomain.Order, node ruledomain.Node, depth int) (bool, error) {
	if depth > e.maxDepth {
		return false, errs.Configuration("invalid rule group", ruledomain.ErrMaxDepth).With("max_depth", e.maxDepth)
	}

	switch n := node.(type) {
	case nil:
		return true, nil
	case ruledomain.Rule:
		return e.EvaluateRule(order, n)
	case ruledomain.Group:
		return e.evaluateGroup(order, n, depth)
	default:
		return false, errs.Configuration("invalid rule group", ruledomain.ErrMalformedRule)
	}
}

func (e *Evaluator) evaluateGroup(order orderdomain.Order, group ruledomain.Group, depth int) (bool, error) {
	logic, err := ruledomain.ParseLogic(string(group.Logic))
	if err != nil {
		return false, errs.Configuration("invalid rule group", err).With("logic_operator", string(group.Logic))
	}

	switch logic {
	case ruledomain.LogicAnd:
		for _, child := range group.Children {
			ok, err := e.evaluate(order, child, depth+1)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case ruledomain.LogicOr:
		for _, child := range group.Children {
			ok, err := e.evaluate(order, child, depth+1)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	default:
		if len(group.Children) != 1 {
			return false, errs.Configuration("invalid rule group", ruledomain.ErrNotArity).With("children", len(group.Children))
		}
		ok, err := e.evaluate(order, group.Children[0], depth+1)
		if err != nil {
			return false, err
		}
		return !ok, nil
	}
}
