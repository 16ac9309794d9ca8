package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/smallbiznis/fulfillment-billing/pkg/errs"
)

// DefaultMaxDepth bounds rule trees when no limit is configured.
const DefaultMaxDepth = 32

// Parse decodes a stored rule tree. Empty input, null and {} mean "no rule
// group" and yield a nil Node.
//
// Accepted shapes are a rule {"field","operator"|"op","value"}, a group
// {"logic_operator"|"logic","children"|"rules"|"conditions"}, the compact
// group {"AND":[...]} and a bare list, which is read as AND.
func Parse(raw []byte, maxDepth int) (Node, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errs.Configuration("rule group is not valid json", err)
	}
	return FromValue(v, maxDepth)
}

// FromValue builds a rule tree from an already decoded JSON value.
func FromValue(v any, maxDepth int) (Node, error) {
	if v == nil {
		return nil, nil
	}
	if m, ok := v.(map[string]any); ok && len(m) == 0 {
		return nil, nil
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return decodeNode(v, "$", 1, maxDepth)
}

// Validate checks a rule tree built in code the same way Parse checks a
// stored one.
func Validate(node Node, maxDepth int) error {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return validateNode(node, "$", 1, maxDepth)
}

func validateNode(node Node, path string, depth, maxDepth int) error {
	if depth > maxDepth {
		return configError(ErrMaxDepth, path).With("max_depth", maxDepth)
	}
	switch n := node.(type) {
	case nil:
		return nil
	case Rule:
		_, err := checkRule(n, path)
		return err
	case Group:
		if _, err := ParseLogic(string(n.Logic)); err != nil {
			return configError(err, path).With("logic_operator", string(n.Logic))
		}
		if err := checkArity(n, path); err != nil {
			return err
		}
		for i, child := range n.Children {
			if child == nil {
				return configError(ErrMalformedRule, childPath(path, i))
			}
			if err := validateNode(child, childPath(path, i), depth+1, maxDepth); err != nil {
				return err
			}
		}
		return nil
	default:
		return configError(ErrMalformedRule, path)
	}
}

func decodeNode(v any, path string, depth, maxDepth int) (Node, error) {
	if depth > maxDepth {
		return nil, configError(ErrMaxDepth, path).With("max_depth", maxDepth)
	}

	switch x := v.(type) {
	case []any:
		return decodeGroup(LogicAnd, x, path, depth, maxDepth)
	case map[string]any:
		if field, ok := lookup(x, "field"); ok {
			return decodeRule(x, field, path)
		}
		if rawLogic, ok := lookup(x, "logic_operator", "logic"); ok {
			logic, err := parseLogicValue(rawLogic)
			if err != nil {
				return nil, configError(err, path).With("logic_operator", rawLogic)
			}
			children, _ := lookup(x, "children", "rules", "conditions")
			list, err := childList(children, path)
			if err != nil {
				return nil, err
			}
			return decodeGroup(logic, list, path, depth, maxDepth)
		}
		if len(x) == 1 {
			for key, children := range x {
				logic, err := ParseLogic(key)
				if err != nil {
					return nil, configError(ErrMalformedRule, path).With("key", key)
				}
				list, err := childList(children, path)
				if err != nil {
					return nil, err
				}
				return decodeGroup(logic, list, path, depth, maxDepth)
			}
		}
		return nil, configError(ErrMalformedRule, path)
	default:
		return nil, configError(ErrMalformedRule, path)
	}
}

func decodeGroup(logic Logic, list []any, path string, depth, maxDepth int) (Node, error) {
	group := Group{Logic: logic, Children: make([]Node, 0, len(list))}
	for i, item := range list {
		child, err := decodeNode(item, childPath(path, i), depth+1, maxDepth)
		if err != nil {
			return nil, err
		}
		if child == nil {
			return nil, configError(ErrMalformedRule, childPath(path, i))
		}
		group.Children = append(group.Children, child)
	}
	if err := checkArity(group, path); err != nil {
		return nil, err
	}
	return group, nil
}

func decodeRule(x map[string]any, rawField any, path string) (Node, error) {
	field, ok := rawField.(string)
	if !ok {
		return nil, configError(ErrEmptyField, path)
	}
	rawOp, _ := lookup(x, "operator", "op")
	opName, _ := rawOp.(string)
	value, _ := lookup(x, "value")

	return checkRule(Rule{Field: field, Operator: Operator(opName), Value: value}, path)
}

// checkRule validates r and returns it with its operator canonicalized.
func checkRule(r Rule, path string) (Rule, error) {
	r.Field = strings.TrimSpace(r.Field)
	if r.Field == "" {
		return r, configError(ErrEmptyField, path)
	}

	op, err := ParseOperator(string(r.Operator))
	if err != nil {
		return r, configError(err, path).With("operator", string(r.Operator)).With("field", r.Field)
	}
	r.Operator = op

	if IsSKUField(r.Field) && !op.AllowedOnSKUs() {
		return r, configError(ErrUnsupportedOperatorOnSKU, path).With("operator", string(op)).With("field", r.Field)
	}
	if r.Value == nil && (op.Positive() == OperatorIn || IsSKUField(r.Field)) {
		return r, configError(ErrInvalidValue, path).With("operator", string(op)).With("field", r.Field)
	}
	switch r.Value.(type) {
	case map[string]any:
		return r, configError(ErrInvalidValue, path).With("field", r.Field)
	}
	return r, nil
}

func checkArity(g Group, path string) error {
	if g.Logic == LogicNot && len(g.Children) != 1 {
		return configError(ErrNotArity, path).With("children", len(g.Children))
	}
	return nil
}

func parseLogicValue(v any) (Logic, error) {
	s, ok := v.(string)
	if !ok {
		return "", ErrUnknownLogic
	}
	return ParseLogic(s)
}

func childList(v any, path string) ([]any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return x, nil
	case map[string]any:
		return []any{x}, nil
	default:
		return nil, configError(ErrMalformedRule, path)
	}
}

// lookup returns the first present key, matching case-insensitively.
func lookup(m map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := m[key]; ok {
			return v, true
		}
	}
	for _, key := range keys {
		for k, v := range m {
			if strings.EqualFold(k, key) {
				return v, true
			}
		}
	}
	return nil, false
}

func childPath(path string, i int) string {
	return fmt.Sprintf("%s.children[%d]", path, i)
}

func configError(cause error, path string) *errs.Error {
	return errs.Configuration("invalid rule group", cause).With("path", path)
}
