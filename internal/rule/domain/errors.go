package domain

import "errors"

var (
	ErrUnknownOperator          = errors.New("unknown_operator")
	ErrUnknownLogic             = errors.New("unknown_logic_operator")
	ErrNotArity                 = errors.New("not_requires_exactly_one_child")
	ErrMaxDepth                 = errors.New("rule_depth_exceeded")
	ErrEmptyField               = errors.New("empty_field")
	ErrUnsupportedOperatorOnSKU = errors.New("unsupported_operator_for_sku_field")
	ErrInvalidValue             = errors.New("invalid_rule_value")
	ErrMalformedRule            = errors.New("malformed_rule")
)
