package domain

import "strings"

// Operator is a comparison applied by a Rule.
type Operator string

const (
	OperatorEq          Operator = "eq"
	OperatorNe          Operator = "ne"
	OperatorGt          Operator = "gt"
	OperatorGte         Operator = "gte"
	OperatorLt          Operator = "lt"
	OperatorLte         Operator = "lte"
	OperatorContains    Operator = "contains"
	OperatorNotContains Operator = "ncontains"
	OperatorIn          Operator = "in"
	OperatorNotIn       Operator = "not_in"
	OperatorStartsWith  Operator = "startswith"
	OperatorEndsWith    Operator = "endswith"
)

var operators = map[string]Operator{
	"eq":           OperatorEq,
	"ne":           OperatorNe,
	"neq":          OperatorNe,
	"gt":           OperatorGt,
	"gte":          OperatorGte,
	"lt":           OperatorLt,
	"lte":          OperatorLte,
	"contains":     OperatorContains,
	"ncontains":    OperatorNotContains,
	"not_contains": OperatorNotContains,
	"in":           OperatorIn,
	"not_in":       OperatorNotIn,
	"startswith":   OperatorStartsWith,
	"endswith":     OperatorEndsWith,
}

// ParseOperator maps an operator spelling, including the legacy aliases
// neq and not_contains, to its canonical Operator.
func ParseOperator(raw string) (Operator, error) {
	op, ok := operators[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", ErrUnknownOperator
	}
	return op, nil
}

// Negated reports whether the operator is the negation of another operator.
func (o Operator) Negated() bool {
	switch o {
	case OperatorNe, OperatorNotContains, OperatorNotIn:
		return true
	default:
		return false
	}
}

// Positive returns the operator a negated operator negates, or o itself.
func (o Operator) Positive() Operator {
	switch o {
	case OperatorNe:
		return OperatorEq
	case OperatorNotContains:
		return OperatorContains
	case OperatorNotIn:
		return OperatorIn
	default:
		return o
	}
}

// AllowedOnSKUs reports whether the operator is defined for the SKU-quantity
// field.
func (o Operator) AllowedOnSKUs() bool {
	switch o.Positive() {
	case OperatorContains, OperatorIn:
		return true
	default:
		return false
	}
}

// Logic combines the children of a Group.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
	LogicNot Logic = "NOT"
)

// ParseLogic accepts AND, OR and NOT in any case.
func ParseLogic(raw string) (Logic, error) {
	switch Logic(strings.ToUpper(strings.TrimSpace(raw))) {
	case LogicAnd:
		return LogicAnd, nil
	case LogicOr:
		return LogicOr, nil
	case LogicNot:
		return LogicNot, nil
	default:
		return "", ErrUnknownLogic
	}
}
